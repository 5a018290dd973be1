// Package registry loads the static source catalog and resolves credentials
// from the environment. Sources that require auth but have no credential are
// kept in the catalog and marked unusable rather than removed.
package registry

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shortreel/acquire-cli/internal/model"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Sources []model.SourceDescriptor `yaml:"sources"`
}

// Registry holds the immutable source catalog for one run.
type Registry struct {
	sources []model.SourceDescriptor
}

// Load parses the embedded catalog, applies an optional overlay file, and
// resolves credentials from the environment.
func Load(overlayPath string) (*Registry, error) {
	sources, err := parseCatalog(embeddedCatalog)
	if err != nil {
		return nil, eris.Wrap(err, "registry: parse embedded catalog")
	}

	if overlayPath != "" {
		data, err := os.ReadFile(overlayPath)
		if err != nil {
			return nil, eris.Wrapf(err, "registry: read overlay %s", overlayPath)
		}
		overlay, err := parseCatalog(data)
		if err != nil {
			return nil, eris.Wrapf(err, "registry: parse overlay %s", overlayPath)
		}
		sources = merge(sources, overlay)
	}

	resolveCredentials(sources)
	return &Registry{sources: sources}, nil
}

// LoadFrom builds a registry from an explicit descriptor list, resolving
// credentials the same way Load does. Intended for tests and library callers.
func LoadFrom(sources []model.SourceDescriptor) *Registry {
	out := make([]model.SourceDescriptor, len(sources))
	copy(out, sources)
	resolveCredentials(out)
	return &Registry{sources: out}
}

func parseCatalog(data []byte) ([]model.SourceDescriptor, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	for i := range file.Sources {
		s := &file.Sources[i]
		if s.Name == "" {
			return nil, eris.New("registry: source with empty name")
		}
		if !s.MediaKind.Valid() {
			return nil, eris.Errorf("registry: source %s has invalid media kind %q", s.Name, s.MediaKind)
		}
	}
	return file.Sources, nil
}

// merge overrides base entries by name and appends new ones, preserving the
// base ordering for overridden entries.
func merge(base, overlay []model.SourceDescriptor) []model.SourceDescriptor {
	byName := make(map[string]int, len(base))
	for i, s := range base {
		byName[s.Name] = i
	}
	out := make([]model.SourceDescriptor, len(base))
	copy(out, base)
	for _, s := range overlay {
		if i, ok := byName[s.Name]; ok {
			out[i] = s
		} else {
			out = append(out, s)
		}
	}
	return out
}

func resolveCredentials(sources []model.SourceDescriptor) {
	for i := range sources {
		s := &sources[i]
		if !s.RequiresAuth {
			continue
		}
		if s.CredentialEnv != "" {
			s.Credential = os.Getenv(s.CredentialEnv)
		}
		if s.Credential == "" {
			zap.L().Warn("registry: source missing credential, marked unusable",
				zap.String("source", s.Name),
				zap.String("env", s.CredentialEnv),
			)
		}
	}
}

// All returns every source in the catalog, usable or not.
func (r *Registry) All() []model.SourceDescriptor {
	out := make([]model.SourceDescriptor, len(r.sources))
	copy(out, r.sources)
	return out
}

// Usable returns the sources eligible for fetching this run.
func (r *Registry) Usable() []model.SourceDescriptor {
	var out []model.SourceDescriptor
	for _, s := range r.sources {
		if s.Usable() {
			out = append(out, s)
		}
	}
	return out
}

// ByName looks up a source descriptor, or nil if absent.
func (r *Registry) ByName(name string) *model.SourceDescriptor {
	for i := range r.sources {
		if r.sources[i].Name == name {
			s := r.sources[i]
			return &s
		}
	}
	return nil
}

// Len returns the catalog size.
func (r *Registry) Len() int {
	return len(r.sources)
}
