// Package workflow composes remote operations on managed accounts. Every
// call that carries a bearer token goes through token.Do so a stale token is
// refreshed and the call repeated once.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/auth/token"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/upstream"
)

// Options tunes workflow behaviour.
type Options struct {
	// PollAttempts bounds the membership poll of a transfer.
	PollAttempts int
	PollDelay    time.Duration
	// TimeZone is the default zone of analytics queries.
	TimeZone string
}

// Service runs workflows against one store and one remote client.
type Service struct {
	store  *store.Store
	tokens *token.Manager
	client *upstream.Client
	opts   Options
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewService creates a workflow service
func NewService(tokens *token.Manager, client *upstream.Client, opts Options) *Service {
	if opts.PollAttempts < 1 {
		opts.PollAttempts = 3
	}
	if opts.PollDelay < 0 {
		opts.PollDelay = 0
	}
	if opts.TimeZone == "" {
		opts.TimeZone = "UTC"
	}
	return &Service{
		store:  tokens.Store(),
		tokens: tokens,
		client: client,
		opts:   opts,
		sleep:  sleepContext,
	}
}

// Store returns the repository the service operates on.
func (s *Service) Store() *store.Store { return s.store }

// Tokens returns the token manager.
func (s *Service) Tokens() *token.Manager { return s.tokens }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// call runs fn for account id through the single-retry protocol.
func call[T any](ctx context.Context, s *Service, id uuid.UUID, fn token.Call[T]) (T, error) {
	return token.Do(ctx, s.tokens, id, fn, upstream.IsAuthFailure)
}

func (s *Service) record(op models.OperationType, acc models.Account, err error, okMsg string, details any) {
	entry := models.NewOperationLog(op, models.OpSuccess, okMsg)
	if err != nil {
		entry = models.NewOperationLog(op, models.OpFailed, err.Error())
	}
	entry = entry.WithAccount(acc.ID, acc.Email)
	if details != nil {
		entry = entry.WithDetails(details)
	}
	_ = s.store.AddLog(entry)
}

// RefreshToken force-refreshes an account's token and logs the outcome.
func (s *Service) RefreshToken(ctx context.Context, id uuid.UUID) (models.Account, error) {
	acc, err := s.store.GetAccount(id)
	if err != nil {
		return models.Account{}, err
	}
	updated, err := s.tokens.RefreshAccount(ctx, id)
	s.record(models.OpRefreshToken, acc, err, "token refreshed", nil)
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}
