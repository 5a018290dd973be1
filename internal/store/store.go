// Package store persists runs, phases, and enriched assets behind a dual
// SQLite/Postgres implementation.
package store

import (
	"context"
	"time"

	"github.com/shortreel/acquire-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// StoreResult summarizes one StoreAssets call. Errors count assets that
// failed to persist; the in-memory run result is still returned to the
// caller regardless.
type StoreResult struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Store defines the persistence interface for the acquisition pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Assets
	StoreAssets(ctx context.Context, runID string, assets []model.Asset, embeddings map[string][]float32) (StoreResult, error)
	CountAssets(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
