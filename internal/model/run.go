package model

import "time"

// RunStatus tracks where a pipeline run is in its lifecycle.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusFetching  RunStatus = "fetching"
	RunStatusDeduping  RunStatus = "deduping"
	RunStatusEnriching RunStatus = "enriching"
	RunStatusStoring   RunStatus = "storing"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// PhaseStatus tracks an individual phase within a run.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// Run is a persisted record of one pipeline invocation.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunPhase is a persisted record of one phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseResult captures the outcome of a single phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RunStatistics is the per-run summary returned to the caller. It is purely
// derived: counters are computed once from the run's in-memory results, never
// accumulated in process-wide state.
type RunStatistics struct {
	TotalFetched      int      `json:"total_fetched"`
	TotalUnique       int      `json:"total_unique"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	TaggedCount       int      `json:"tagged_count"`
	FailedSources     []string `json:"failed_sources,omitempty"`
}

// RunResult is the durable summary stored alongside a completed run.
type RunResult struct {
	Statistics      RunStatistics `json:"statistics"`
	Phases          []PhaseResult `json:"phases,omitempty"`
	Stored          int           `json:"stored"`
	StoreDuplicates int           `json:"store_duplicates"`
	StoreErrors     int           `json:"store_errors"`
}
