package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAuthedMux(t *testing.T, cfg AuthConfig) http.Handler {
	t.Helper()

	g, _ := newTestGateway(t, "reply", "Topic", nil)
	g.config.Auth = cfg
	return g.buildRouter()
}

func TestAuthMiddleware_Bearer(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux(t, AuthConfig{BearerToken: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no credentials: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware_Basic(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux(t, AuthConfig{BasicUser: "admin", BasicPass: "pass"})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.SetBasicAuth("admin", "pass")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid credentials: status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware_HealthStaysPublic(t *testing.T) {
	t.Parallel()

	mux := newAuthedMux(t, AuthConfig{BearerToken: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health behind auth: status = %d, want 200", rec.Code)
	}
}
