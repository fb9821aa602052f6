package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/surfvault/internal/auth/token"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/wire"
)

// AnalyticsParams selects what GetAnalytics asks for.
type AnalyticsParams struct {
	Start time.Time
	End   time.Time
	// TimeZone defaults to the service time zone.
	TimeZone string
	Team     bool
	Queries  []string
}

// AnalyticsResult is the undecoded analytics reply.
type AnalyticsResult struct {
	AccountID uuid.UUID `json:"account_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Payload   []byte    `json:"payload"`
}

// Analytics queries usage analytics with the account's API key.
func (s *Service) Analytics(ctx context.Context, id uuid.UUID, p AnalyticsParams) (*AnalyticsResult, error) {
	acc, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}
	if !acc.CanAuthenticate() {
		return nil, fmt.Errorf("%w: %s", token.ErrNoCredential, acc.Email)
	}
	if acc.APIKey == "" {
		if _, err := s.AccountInfo(ctx, id); err != nil {
			return nil, fmt.Errorf("resolve api key: %w", err)
		}
		if acc, err = s.store.GetAccount(id); err != nil {
			return nil, err
		}
		if acc.APIKey == "" {
			return nil, fmt.Errorf("%w: %s has no api key", token.ErrAuthFailed, acc.Email)
		}
	}

	if p.End.IsZero() {
		p.End = time.Now().UTC()
	}
	if p.Start.IsZero() {
		p.Start = p.End.AddDate(0, 0, -30)
	}
	if !p.Start.Before(p.End) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", store.ErrValidation, p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
	}
	if p.TimeZone == "" {
		p.TimeZone = s.opts.TimeZone
	}

	payload, err := wire.BuildAnalyticsRequest(wire.AnalyticsRequest{
		APIKey:   acc.APIKey,
		Start:    p.Start,
		End:      p.End,
		TimeZone: p.TimeZone,
		Team:     p.Team,
		Queries:  p.Queries,
	})
	if err != nil {
		return nil, err
	}
	reply, err := s.client.GetAnalytics(ctx, acc.APIKey, payload)
	s.record(models.OpGetAnalytics, acc, err, "analytics fetched", map[string]any{
		"start": p.Start,
		"end":   p.End,
		"team":  p.Team,
		"bytes": len(reply),
	})
	if err != nil {
		return nil, err
	}
	return &AnalyticsResult{AccountID: acc.ID, Start: p.Start, End: p.End, Payload: reply}, nil
}
