package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (f *fakeRefresher) Refresh(ctx context.Context, acc models.Account) (store.TokenUpdate, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return store.TokenUpdate{}, f.err
	}
	return store.TokenUpdate{Token: "fresh-" + string(rune('0'+n)), RefreshToken: "rt-rotated"}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), store.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func addAccount(t *testing.T, s *store.Store, acc models.Account) models.Account {
	t.Helper()
	created, err := s.AddAccount(acc)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return created
}

func TestEnsureValidToken_NoCredentialFailsFast(t *testing.T) {
	s := newTestStore(t)
	ref := &fakeRefresher{}
	mgr := NewManager(s, ref)
	acc := addAccount(t, s, models.Account{Email: "empty@example.com"})

	err := mgr.EnsureValidToken(context.Background(), &acc)
	if !errors.Is(err, ErrNoCredential) || !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if ref.calls.Load() != 0 {
		t.Fatalf("refresher must not be called without credentials")
	}
}

func TestEnsureValidToken_States(t *testing.T) {
	tests := []struct {
		name        string
		account     models.Account
		force       bool
		wantRefresh bool
		wantErr     error
	}{
		{name: "present token is trusted", account: models.Account{Email: "a@x", Token: "tok", RefreshToken: "rt"}},
		{name: "force refreshes", account: models.Account{Email: "b@x", Token: "tok", RefreshToken: "rt"}, force: true, wantRefresh: true},
		{name: "unrefreshed", account: models.Account{Email: "c@x", RefreshToken: "rt"}, wantRefresh: true},
		{name: "expired hint", account: models.Account{Email: "d@x", Token: "tok", RefreshToken: "rt", TokenExpiresAt: time.Now().Add(-time.Hour)}, wantRefresh: true},
		{name: "api key only", account: models.Account{Email: "e@x", APIKey: "key"}, wantErr: ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ref := &fakeRefresher{}
			mgr := NewManager(s, ref)
			acc := addAccount(t, s, tt.account)

			err := mgr.EnsureValidTokenWithForce(context.Background(), &acc, tt.force)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ref.calls.Load() == 1; got != tt.wantRefresh {
				t.Fatalf("refresh called = %v, want %v", got, tt.wantRefresh)
			}
			if !tt.wantRefresh {
				return
			}
			if acc.Token != "fresh-1" || acc.RefreshToken != "rt-rotated" {
				t.Fatalf("in-hand copy not updated: %+v", acc)
			}
			stored, _ := s.GetAccount(acc.ID)
			if stored.Token != "fresh-1" || stored.RefreshToken != "rt-rotated" {
				t.Fatalf("token not written back: %+v", stored)
			}
		})
	}
}

func TestEnsureValidToken_ConcurrentForceRefreshSharesExchange(t *testing.T) {
	s := newTestStore(t)
	ref := &fakeRefresher{delay: 50 * time.Millisecond}
	mgr := NewManager(s, ref)
	acc := addAccount(t, s, models.Account{Email: "a@example.com", Token: "old", RefreshToken: "rt"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := acc
			if err := mgr.EnsureValidTokenWithForce(context.Background(), &local, true); err != nil {
				t.Errorf("refresh: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := ref.calls.Load(); n >= 8 {
		t.Fatalf("expected concurrent refreshes to be collapsed, got %d exchanges", n)
	}
}

func TestEnsureValidToken_PermanentFailureDisablesAccount(t *testing.T) {
	s := newTestStore(t)
	mgr := NewManager(s, &fakeRefresher{err: assertErr(`oauth2: "invalid_grant"`)})
	acc := addAccount(t, s, models.Account{Email: "a@example.com", RefreshToken: "rt"})

	if err := mgr.EnsureValidToken(context.Background(), &acc); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	stored, _ := s.GetAccount(acc.ID)
	if stored.Status != models.StatusDisabled {
		t.Fatalf("expected account disabled, got %s", stored.Status)
	}
}

func TestEnsureValidToken_TransientFailureKeepsAccount(t *testing.T) {
	s := newTestStore(t)
	mgr := NewManager(s, &fakeRefresher{err: assertErr("context deadline exceeded")})
	acc := addAccount(t, s, models.Account{Email: "a@example.com", RefreshToken: "rt"})

	if err := mgr.EnsureValidToken(context.Background(), &acc); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	stored, _ := s.GetAccount(acc.ID)
	if stored.Status != models.StatusActive {
		t.Fatalf("expected account to stay active, got %s", stored.Status)
	}
}

func TestOAuth2Refresher_PrefersIDToken(t *testing.T) {
	var gotGrant, gotRefresh, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotGrant = r.PostForm.Get("grant_type")
		gotRefresh = r.PostForm.Get("refresh_token")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","id_token":"id-1","refresh_token":"rt-2","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	ref := NewOAuth2Refresher(OAuthConfig(OAuthSettings{TokenURL: srv.URL, APIKey: "web-key"}), srv.Client())
	upd, err := ref.Refresh(context.Background(), models.Account{Email: "a@example.com", RefreshToken: "rt-1"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if gotGrant != "refresh_token" || gotRefresh != "rt-1" || gotKey != "web-key" {
		t.Fatalf("unexpected request: grant=%q refresh=%q key=%q", gotGrant, gotRefresh, gotKey)
	}
	if upd.Token != "id-1" || upd.RefreshToken != "rt-2" {
		t.Fatalf("unexpected update: %+v", upd)
	}
	if upd.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry from expires_in")
	}
}

func TestOAuth2Refresher_RejectedGrantIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"INVALID_REFRESH_TOKEN"}`))
	}))
	defer srv.Close()

	ref := NewOAuth2Refresher(OAuthConfig(OAuthSettings{TokenURL: srv.URL}), srv.Client())
	_, err := ref.Refresh(context.Background(), models.Account{Email: "a@example.com", RefreshToken: "rt-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isPermanentRefreshError(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestIsPermanentRefreshError(t *testing.T) {
	tests := []struct {
		name      string
		errText   string
		permanent bool
	}{
		{name: "invalid grant", errText: "oauth2: cannot fetch token: 400 Bad Request {\"error\":\"invalid_grant\"}", permanent: true},
		{name: "revoked", errText: "token has been expired or revoked", permanent: true},
		{name: "firebase", errText: "INVALID_REFRESH_TOKEN", permanent: true},
		{name: "timeout", errText: "context deadline exceeded", permanent: false},
		{name: "temporary", errText: "temporarily_unavailable", permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isPermanentRefreshError(assertErr(tt.errText))
			if got != tt.permanent {
				t.Fatalf("expected %v, got %v", tt.permanent, got)
			}
		})
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
