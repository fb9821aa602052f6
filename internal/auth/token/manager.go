package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/logging"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrAuthFailed means no usable token could be obtained.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrNoCredential means the account carries nothing to authenticate with.
	ErrNoCredential = fmt.Errorf("%w: account has no credentials", ErrAuthFailed)
)

// expirySkew refreshes a token slightly before its reported expiry.
const expirySkew = time.Minute

// Refresher exchanges an account's stored credential for a new bearer token.
type Refresher interface {
	Refresh(ctx context.Context, acc models.Account) (store.TokenUpdate, error)
}

// Manager keeps account tokens valid. Refreshes for one account are
// collapsed so concurrent callers share a single exchange.
type Manager struct {
	store     *store.Store
	refresher Refresher
	flight    singleflight.Group
	now       func() time.Time
}

// NewManager creates a new token manager
func NewManager(s *store.Store, r Refresher) *Manager {
	return &Manager{store: s, refresher: r, now: time.Now}
}

// Store exposes the repository the manager writes tokens back to.
func (m *Manager) Store() *store.Store { return m.store }

// looksValid is optimistic: a present token is assumed good unless the last
// exchange reported an expiry that has passed.
func (m *Manager) looksValid(acc models.Account) bool {
	if acc.Token == "" {
		return false
	}
	if acc.TokenExpiresAt.IsZero() {
		return true
	}
	return m.now().Add(expirySkew).Before(acc.TokenExpiresAt)
}

// EnsureValidToken makes sure acc holds a token, refreshing when it has none.
func (m *Manager) EnsureValidToken(ctx context.Context, acc *models.Account) error {
	return m.EnsureValidTokenWithForce(ctx, acc, false)
}

// EnsureValidTokenWithForce is EnsureValidToken that, with force set, always
// performs a fresh exchange. The refreshed token is written to the store and
// copied into acc.
func (m *Manager) EnsureValidTokenWithForce(ctx context.Context, acc *models.Account, force bool) error {
	if !acc.CanAuthenticate() {
		return fmt.Errorf("%w: %s", ErrNoCredential, acc.Email)
	}
	if !force && m.looksValid(*acc) {
		return nil
	}
	if acc.RefreshToken == "" {
		return fmt.Errorf("%w: %s has no refresh token", ErrAuthFailed, acc.Email)
	}

	v, err, shared := m.flight.Do(acc.ID.String(), func() (any, error) {
		return m.refresh(ctx, *acc)
	})
	if err != nil {
		return err
	}
	if shared {
		log.Printf("%s🔁 Shared in-flight refresh for %s", logging.Prefix(ctx), acc.Email)
	}
	*acc = v.(models.Account).Clone()
	return nil
}

func (m *Manager) refresh(ctx context.Context, acc models.Account) (models.Account, error) {
	upd, err := m.refresher.Refresh(ctx, acc)
	if err != nil {
		log.Printf("%s❌ Refresh token failed for %s: %v", logging.Prefix(ctx), acc.Email, err)
		if isPermanentRefreshError(err) {
			if serr := m.store.SetAccountStatus(acc.ID, models.StatusDisabled); serr != nil {
				log.Printf("⚠️ Failed to disable %s: %v", acc.Email, serr)
			} else {
				log.Printf("🔒 Account %s marked as disabled. Please re-login.", acc.Email)
			}
		} else {
			log.Printf("⏳ Transient refresh failure for %s, account remains active", acc.Email)
		}
		return models.Account{}, fmt.Errorf("%w: refresh %s: %v", ErrAuthFailed, acc.Email, err)
	}
	if upd.Token == "" {
		return models.Account{}, fmt.Errorf("%w: refresh %s returned no token", ErrAuthFailed, acc.Email)
	}
	if upd.RefreshToken == acc.RefreshToken {
		upd.RefreshToken = ""
	} else if upd.RefreshToken != "" {
		log.Printf("🔄 Rotating refresh token for: %s", acc.Email)
	}

	updated, err := m.store.UpdateAccountToken(acc.ID, upd)
	if err != nil {
		return models.Account{}, fmt.Errorf("save refreshed token for %s: %w", acc.Email, err)
	}
	if upd.ExpiresAt.IsZero() {
		log.Printf("✅ Refreshed token for: %s", acc.Email)
	} else {
		log.Printf("✅ Refreshed token for: %s (expires: %s)", acc.Email, upd.ExpiresAt.Format(time.RFC3339))
	}
	return updated, nil
}

// RefreshAccount force-refreshes one account by id.
func (m *Manager) RefreshAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	acc, err := m.store.GetAccount(id)
	if err != nil {
		return models.Account{}, err
	}
	if err := m.EnsureValidTokenWithForce(ctx, &acc, true); err != nil {
		return models.Account{}, err
	}
	return acc, nil
}

func maskToken(t string) string {
	if len(t) < 20 {
		return t
	}
	return "..." + t[len(t)-12:]
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"invalid_refresh_token",
		"token_expired",
		"user_disabled",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
