package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
)

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	var gotCtxID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtxID = reqctx.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderXRequestID, "client-supplied")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if gotCtxID != "client-supplied" {
		t.Fatalf("expected ctx id client-supplied, got %q", gotCtxID)
	}
	if got := rr.Header().Get(HeaderXRequestID); got != "client-supplied" {
		t.Fatalf("expected response header client-supplied, got %q", got)
	}
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var gotCtxID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtxID = reqctx.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if gotCtxID == "" {
		t.Fatalf("expected generated request id in context")
	}
	if got := rr.Header().Get(HeaderXRequestID); got != gotCtxID {
		t.Fatalf("expected response header to match ctx id %q, got %q", gotCtxID, got)
	}
}

func TestSecurityHeaders_SetsBaseline(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for k, want := range checks {
		if got := rr.Header().Get(k); got != want {
			t.Fatalf("expected %s=%q, got %q", k, want, got)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("expected CSP header")
	}
}
