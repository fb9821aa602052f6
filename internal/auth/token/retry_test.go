package token

import (
	"context"
	"errors"
	"testing"

	"github.com/pysugar/surfvault/internal/store/models"
)

var errUnauthenticated = errors.New("unauthenticated")

func isUnauthenticated(err error) bool { return errors.Is(err, errUnauthenticated) }

func TestDo_RetriesOnceWithForcedRefresh(t *testing.T) {
	s := newTestStore(t)
	ref := &fakeRefresher{}
	mgr := NewManager(s, ref)
	acc := addAccount(t, s, models.Account{Email: "a@example.com", Token: "stale", RefreshToken: "rt"})

	var seen []string
	got, err := Do(context.Background(), mgr, acc.ID, func(ctx context.Context, a models.Account) (string, error) {
		seen = append(seen, a.Token)
		if a.Token == "stale" {
			return "", errUnauthenticated
		}
		return "ok:" + a.Token, nil
	}, isUnauthenticated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok:fresh-1" {
		t.Fatalf("unexpected result %q", got)
	}
	if len(seen) != 2 || seen[0] != "stale" || seen[1] != "fresh-1" {
		t.Fatalf("unexpected attempts: %v", seen)
	}
	if ref.calls.Load() != 1 {
		t.Fatalf("expected exactly one forced refresh, got %d", ref.calls.Load())
	}
}

func TestDo_SecondFailureExhaustsWithoutThirdAttempt(t *testing.T) {
	s := newTestStore(t)
	ref := &fakeRefresher{}
	mgr := NewManager(s, ref)
	acc := addAccount(t, s, models.Account{Email: "a@example.com", Token: "stale", RefreshToken: "rt"})

	attempts := 0
	_, err := Do(context.Background(), mgr, acc.ID, func(ctx context.Context, a models.Account) (int, error) {
		attempts++
		return 0, errUnauthenticated
	}, isUnauthenticated)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestDo_OtherErrorsAreNotRetried(t *testing.T) {
	s := newTestStore(t)
	ref := &fakeRefresher{}
	mgr := NewManager(s, ref)
	acc := addAccount(t, s, models.Account{Email: "a@example.com", Token: "tok", RefreshToken: "rt"})

	boom := errors.New("boom")
	attempts := 0
	_, err := Do(context.Background(), mgr, acc.ID, func(ctx context.Context, a models.Account) (int, error) {
		attempts++
		return 0, boom
	}, isUnauthenticated)
	if !errors.Is(err, boom) || attempts != 1 {
		t.Fatalf("expected boom after 1 attempt, got %v after %d", err, attempts)
	}
	if ref.calls.Load() != 0 {
		t.Fatalf("no refresh expected")
	}
}

func TestDo_NoCredentialNeverCallsRemote(t *testing.T) {
	s := newTestStore(t)
	mgr := NewManager(s, &fakeRefresher{})
	acc := addAccount(t, s, models.Account{Email: "a@example.com"})

	called := false
	_, err := Do(context.Background(), mgr, acc.ID, func(ctx context.Context, a models.Account) (int, error) {
		called = true
		return 0, nil
	}, isUnauthenticated)
	if !errors.Is(err, ErrNoCredential) || called {
		t.Fatalf("expected fast failure, got err=%v called=%v", err, called)
	}
}
