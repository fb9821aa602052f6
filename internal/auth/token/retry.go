package token

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/logging"
	"github.com/pysugar/surfvault/internal/store/models"
)

// ErrRetriesExhausted is returned when a call still reports an auth failure
// after a forced refresh.
var ErrRetriesExhausted = errors.New("retries exhausted")

// maxAttempts is one normal attempt plus one after a forced refresh.
const maxAttempts = 2

// Call is a remote operation made with an account holding a valid token.
type Call[T any] func(ctx context.Context, acc models.Account) (T, error)

// Do runs call for the account with a valid token. When isAuthFailure
// reports that the remote side rejected the token, the token is force
// refreshed and call runs once more. A second rejection yields
// ErrRetriesExhausted without a third attempt. The account is re-read from
// the store before each attempt.
func Do[T any](ctx context.Context, m *Manager, id uuid.UUID, call Call[T], isAuthFailure func(error) bool) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		acc, err := m.store.GetAccount(id)
		if err != nil {
			return zero, err
		}
		if err := m.EnsureValidTokenWithForce(ctx, &acc, attempt > 0); err != nil {
			return zero, err
		}

		result, err := call(ctx, acc)
		if err == nil || !isAuthFailure(err) {
			return result, err
		}
		lastErr = err
		if attempt+1 < maxAttempts {
			log.Printf("%s🔑 Auth failure for %s (token %s), forcing refresh and retrying",
				logging.Prefix(ctx), acc.Email, maskToken(acc.Token))
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}
