package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parleyhq/parley/internal/directory"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/namer"
	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/provider/providertest"
	"github.com/parleyhq/parley/internal/runner"
)

// newTestGateway wires a gateway over a real store, directory, and runner,
// backed by a scripted provider. reply answers conversation turns; topic
// answers the naming side-call (distinguished by its token cap).
func newTestGateway(t *testing.T, reply, topic string, completeErr error) (*Gateway, http.Handler) {
	t.Helper()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
			if completeErr != nil {
				return provider.CompletionResponse{}, completeErr
			}
			if req.MaxTokens > 0 {
				return provider.CompletionResponse{Content: topic}, nil
			}
			return provider.CompletionResponse{Content: reply}, nil
		},
	}

	store := history.NewInMemoryStore()
	dir := directory.New(namer.New(mock), store)
	run := runner.New(store, mock, dir, runner.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	g := &Gateway{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:  NewMetrics(),
		runner:   run,
		sessions: dir,
		history:  store,
	}
	g.config.defaults()

	return g, g.buildRouter()
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
