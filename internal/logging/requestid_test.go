package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	if len(id) != 8 {
		t.Errorf("GenerateRequestID() length = %d, want 8", len(id))
	}

	// Verify uniqueness
	id2 := GenerateRequestID()
	if id == id2 {
		t.Errorf("GenerateRequestID() generated duplicate IDs: %s", id)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	id := "test1234"

	// Without ID
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID(empty context) = %q, want empty string", got)
	}

	// With ID
	ctx = WithRequestID(ctx, id)
	if got := GetRequestID(ctx); got != id {
		t.Errorf("GetRequestID() = %q, want %q", got, id)
	}
}

func TestGenerateAndRetrieveRoundTrip(t *testing.T) {
	ctx := context.Background()
	id := GenerateRequestID()
	ctx = WithRequestID(ctx, id)

	if got := GetRequestID(ctx); got != id {
		t.Errorf("RoundTrip failed: generated %q, retrieved %q", id, got)
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix(context.Background()); got != "" {
		t.Errorf("Prefix(empty context) = %q, want empty string", got)
	}
	if got := Prefix(WithRequestID(context.Background(), "abcd1234")); got != "[abcd1234] " {
		t.Errorf("Prefix() = %q, want %q", got, "[abcd1234] ")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	// Incoming header is reused
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "caller-id" || rec.Header().Get(HeaderRequestID) != "caller-id" {
		t.Errorf("expected caller id to propagate, got ctx=%q header=%q", seen, rec.Header().Get(HeaderRequestID))
	}

	// Missing header gets a generated id
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 8 || rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("expected generated id, got ctx=%q header=%q", seen, rec.Header().Get(HeaderRequestID))
	}
}
