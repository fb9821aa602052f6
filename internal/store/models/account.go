package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of a managed account.
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusDisabled AccountStatus = "disabled"
)

// Account is one managed credential set for the remote service.
type Account struct {
	ID       uuid.UUID     `json:"id"`
	Email    string        `json:"email"`
	Nickname string        `json:"nickname,omitempty"`
	Status   AccountStatus `json:"status"`

	// Token is the short-lived bearer token. TokenExpiresAt is only known
	// when the last refresh exchange reported a lifetime.
	Token          string    `json:"token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitempty"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	// APIKey is the long-lived key used by calls that take no bearer token.
	APIKey string `json:"api_key,omitempty"`

	Group     string   `json:"group,omitempty"`
	Tags      []string `json:"tags"`
	SortOrder int      `json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanAuthenticate reports whether any credential material is present.
func (a Account) CanAuthenticate() bool {
	return a.Token != "" || a.RefreshToken != "" || a.APIKey != ""
}

// HasTag reports whether the account carries the named tag.
func (a Account) HasTag(name string) bool {
	return slices.Contains(a.Tags, name)
}

// Clone returns a copy that shares no slices with a.
func (a Account) Clone() Account {
	a.Tags = slices.Clone(a.Tags)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}
