package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parleyhq/parley/internal/provider"
)

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Provider{
		config: Config{
			APIKey:  "sk-test",
			Model:   "gpt-4o-mini",
			BaseURL: srv.URL,
		},
		client: srv.Client(),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readRequestBody(t *testing.T, r *http.Request) chatRequest {
	t.Helper()
	body, _ := io.ReadAll(r.Body)
	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	return req
}

func TestComplete_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("missing authorization header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("missing content-type header")
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}

		req := readRequestBody(t, r)
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(req.Messages))
		}

		writeJSON(t, w, chatResponse{
			Choices: []chatChoice{
				{Message: chatMessage{Role: "assistant", Content: "hello back"}},
			},
			Usage: chatUsage{PromptTokens: 10, CompletionTokens: 3, TotalTokens: 13},
		})
	})

	p := newTestProvider(t, handler)

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			provider.SystemMessage("be brief"),
			provider.UserMessage("hello"),
		},
	})
	if err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if resp.Content != "hello back" {
		t.Errorf("Content = %q, want %q", resp.Content, "hello back")
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("TotalTokens = %d, want 13", resp.Usage.TotalTokens)
	}
}

func TestComplete_MaxTokensOverride(t *testing.T) {
	var got chatRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = readRequestBody(t, r)
		writeJSON(t, w, chatResponse{})
	})

	p := newTestProvider(t, handler)
	p.config.MaxTokens = 256

	// Request-level cap overrides the config default.
	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages:  []provider.Message{provider.UserMessage("hi")},
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if got.MaxTokens != 32 {
		t.Errorf("max_tokens = %d, want 32", got.MaxTokens)
	}

	// No request-level value falls back to config.
	_, err = p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}
	if got.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, want 256", got.MaxTokens)
	}
}

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{
			name:       "rate limit",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error":{"message":"slow down"}}`,
			wantErr:    provider.ErrRateLimit,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			body:       `{"error":{"message":"boom"}}`,
			wantErr:    provider.ErrProviderDown,
		},
		{
			name:       "context length",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"message":"context_length_exceeded"}}`,
			wantErr:    provider.ErrContextLength,
		},
		{
			name:       "auth",
			statusCode: http.StatusUnauthorized,
			body:       `{"error":{"message":"bad key"}}`,
			wantErr:    errAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			})
			p := newTestProvider(t, handler)

			_, err := p.Complete(context.Background(), provider.CompletionRequest{
				Messages: []provider.Message{provider.UserMessage("hi")},
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Complete error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplete_MalformedResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	p := newTestProvider(t, handler)

	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("Complete: expected error for malformed response, got nil")
	}
}

func TestHealthCheck(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := readRequestBody(t, r)
		if req.MaxTokens != 1 {
			t.Errorf("health check max_tokens = %d, want 1", req.MaxTokens)
		}
		writeJSON(t, w, chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}},
		})
	})
	p := newTestProvider(t, handler)

	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{APIKey: "sk", Model: "gpt-4o-mini", Timeout: "30s"}},
		{name: "missing api key", config: Config{Model: "gpt-4o-mini", Timeout: "30s"}, wantErr: true},
		{name: "missing model", config: Config{APIKey: "sk", Timeout: "30s"}, wantErr: true},
		{name: "bad timeout", config: Config{APIKey: "sk", Model: "m", Timeout: "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Provider{config: tt.config}
			err := p.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate: expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate: unexpected error: %v", err)
			}
		})
	}
}
