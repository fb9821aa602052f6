package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/util"
)

// AccountView is an account as listed by the API. Secrets never leave the
// process; only their presence is reported.
type AccountView struct {
	ID              uuid.UUID            `json:"id"`
	Email           string               `json:"email"`
	Nickname        string               `json:"nickname,omitempty"`
	Status          models.AccountStatus `json:"status"`
	Group           string               `json:"group,omitempty"`
	Tags            []string             `json:"tags"`
	SortOrder       int                  `json:"sort_order"`
	HasToken        bool                 `json:"has_token"`
	HasRefreshToken bool                 `json:"has_refresh_token"`
	APIKey          string               `json:"api_key,omitempty"`
	TokenExpiresAt  *time.Time           `json:"token_expires_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func newAccountView(acc models.Account, privacy bool) AccountView {
	v := AccountView{
		ID:              acc.ID,
		Email:           acc.Email,
		Nickname:        acc.Nickname,
		Status:          acc.Status,
		Group:           acc.Group,
		Tags:            acc.Clone().Tags,
		SortOrder:       acc.SortOrder,
		HasToken:        acc.Token != "",
		HasRefreshToken: acc.RefreshToken != "",
		APIKey:          util.MaskSecret(acc.APIKey),
		CreatedAt:       acc.CreatedAt,
		UpdatedAt:       acc.UpdatedAt,
	}
	if !acc.TokenExpiresAt.IsZero() {
		exp := acc.TokenExpiresAt
		v.TokenExpiresAt = &exp
	}
	if privacy {
		v.Email = util.MaskEmail(acc.Email)
	}
	return v
}

func newAccountViews(accounts []models.Account, privacy bool) []AccountView {
	views := make([]AccountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, newAccountView(acc, privacy))
	}
	return views
}
