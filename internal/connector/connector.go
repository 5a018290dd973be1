// Package connector defines the source connector capability and its
// reference implementations. A connector turns one (source, category) query
// into a list of candidate assets; the orchestrator owns fan-out, throttling,
// and failure isolation above it.
package connector

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/model"
)

// ErrUnknownFamily is returned when no connector serves a source's family.
var ErrUnknownFamily = eris.New("connector: unknown family")

// Connector fetches assets from sources of one connector family.
// Implementations must treat maxItems as an upper bound, not a target.
type Connector interface {
	// Family returns the connector family this implementation serves.
	Family() model.ConnectorFamily

	// Fetch retrieves up to maxItems assets for one source/category pair.
	Fetch(ctx context.Context, src model.SourceDescriptor, category string, maxItems int) ([]model.Asset, error)
}

// Registry maps connector families to implementations.
type Registry struct {
	mu         sync.RWMutex
	connectors map[model.ConnectorFamily]Connector
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[model.ConnectorFamily]Connector)}
}

// Register adds a connector, replacing any previous one for its family.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Family()] = c
}

// For returns the connector serving the given family.
func (r *Registry) For(family model.ConnectorFamily) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[family]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownFamily, "family %q", family)
	}
	return c, nil
}

// expandEndpoint substitutes {category} and {max} placeholders in a source's
// endpoint template.
func expandEndpoint(template, category string, maxItems int) string {
	out := strings.ReplaceAll(template, "{category}", category)
	return strings.ReplaceAll(out, "{max}", strconv.Itoa(maxItems))
}

// qualifyID builds the source-qualified asset id.
func qualifyID(source, itemID string) string {
	return source + ":" + itemID
}
