package models

// SortField selects the key used to order account listings.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByEmail     SortField = "email"
	SortByStatus    SortField = "status"
	SortByManual    SortField = "manual"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig is the persisted listing order preference.
type SortConfig struct {
	Field     SortField     `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// Settings is the single process-wide configuration value of a store.
// Updates replace it wholesale.
type Settings struct {
	ProxyEnabled bool   `json:"proxy_enabled"`
	ProxyURL     string `json:"proxy_url,omitempty"`
	// UseLightweightAPI selects cheaper remote endpoint variants.
	UseLightweightAPI bool       `json:"use_lightweight_api"`
	PrivacyMode       bool       `json:"privacy_mode"`
	Sort              SortConfig `json:"sort_config"`
}

// DefaultSettings is the value a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		Sort: SortConfig{Field: SortByManual, Direction: SortAsc},
	}
}

// Valid reports whether the sort preference names a known field and direction.
func (c SortConfig) Valid() bool {
	switch c.Field {
	case SortByCreatedAt, SortByEmail, SortByStatus, SortByManual:
	default:
		return false
	}
	return c.Direction == SortAsc || c.Direction == SortDesc
}
