package model

// ConnectorFamily selects which connector implementation serves a source.
type ConnectorFamily string

const (
	FamilyAPI     ConnectorFamily = "api"
	FamilyScrape  ConnectorFamily = "scrape"
	FamilyArchive ConnectorFamily = "archive"
)

// SourceDescriptor describes one external media provider in the catalog.
// Descriptors are built once at registry-load time and never mutated after.
type SourceDescriptor struct {
	Name                  string          `json:"name" yaml:"name"`
	MediaKind             MediaKind       `json:"media_kind" yaml:"media_kind"`
	Family                ConnectorFamily `json:"family" yaml:"family"`
	Endpoint              string          `json:"endpoint" yaml:"endpoint"`
	Categories            []string        `json:"categories" yaml:"categories"`
	MaxItemsPerCategory   int             `json:"max_items_per_category" yaml:"max_items_per_category"`
	RateLimitDelaySeconds float64         `json:"rate_limit_delay_seconds" yaml:"rate_limit_delay_seconds"`
	RequiresAuth          bool            `json:"requires_auth" yaml:"requires_auth"`
	CredentialEnv         string          `json:"credential_env,omitempty" yaml:"credential_env,omitempty"`

	// Credential is resolved from the environment at registry-load time.
	// Never serialized.
	Credential string `json:"-" yaml:"-"`
}

// Usable reports whether the source can be fetched this run. Sources that
// require auth but have no resolved credential stay in the catalog but are
// skipped at fetch time.
func (s *SourceDescriptor) Usable() bool {
	return !s.RequiresAuth || s.Credential != ""
}
