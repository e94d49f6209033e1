// Package runner drives one conversation turn: read the session's history,
// call the completion provider, and append the completed exchange. A failed
// call leaves the session exactly as it was, so history only ever reflects
// turns that completed.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/provider"
)

// ErrCompletion indicates the provider call for a conversation turn failed.
// The session history is untouched; the caller may retry the same turn.
var ErrCompletion = errors.New("completion failed")

// Registrar binds a session key to a display name on its first turn.
// *directory.Directory satisfies this.
type Registrar interface {
	Create(ctx context.Context, key, firstUserText string) string
}

// Config holds runner settings fixed per deployment.
type Config struct {
	// SystemPrompt, when non-empty, is prepended to every outbound request.
	// It is never stored in session history.
	SystemPrompt string
}

// Runner executes conversation turns against a provider, one session key
// at a time. Safe for concurrent use; turns on different keys proceed
// independently.
type Runner struct {
	store     history.Store
	provider  provider.Provider
	registrar Registrar // nil disables first-turn naming
	config    Config
	logger    *slog.Logger
	tracer    trace.Tracer
	locks     *keyLocks
}

// New creates a Runner. registrar may be nil to skip session naming.
func New(store history.Store, p provider.Provider, registrar Registrar, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:     store,
		provider:  p,
		registrar: registrar,
		config:    cfg,
		logger:    logger.With("component", "runner"),
		tracer:    otel.Tracer("github.com/parleyhq/parley/internal/runner"),
		locks:     newKeyLocks(),
	}
}

// Send runs one full turn for the session key: resolve history, call the
// provider with system prompt + history + the new user message, and append
// the (user, assistant) pair atomically. On provider failure nothing is
// appended and the error wraps ErrCompletion.
//
// The per-key lock brackets the whole turn, including the provider call, so
// two concurrent messages to the same session cannot interleave appends or
// race on naming. Unrelated sessions are never blocked.
func (r *Runner) Send(ctx context.Context, key, userText string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "chat.turn",
		trace.WithAttributes(attribute.String("session.key", key)))
	defer span.End()

	lock := r.locks.get(key)
	lock.Lock()
	defer lock.Unlock()

	existing := r.store.GetOrCreate(key)
	firstTurn := len(existing) == 0

	userMsg := provider.UserMessage(userText)
	outbound := make([]provider.Message, 0, len(existing)+2)
	if r.config.SystemPrompt != "" {
		outbound = append(outbound, provider.SystemMessage(r.config.SystemPrompt))
	}
	outbound = append(outbound, existing...)
	outbound = append(outbound, userMsg)

	start := time.Now()
	resp, err := r.provider.Complete(ctx, provider.CompletionRequest{Messages: outbound})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		r.logger.Error("turn failed", "session", key, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	assistantMsg := provider.AssistantMessage(resp.Content)
	if err := r.store.AppendExchange(key, history.Exchange{
		User:      userMsg,
		Assistant: assistantMsg,
		Timestamp: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("runner: append exchange: %w", err)
	}

	r.logger.Info("turn completed",
		"session", key,
		"latency", time.Since(start),
		"tokens", resp.Usage.TotalTokens)

	// Name the session on its first completed turn. The naming side-call
	// has its own degrade path and must never fail the turn itself.
	if firstTurn && r.registrar != nil {
		name := r.registrar.Create(ctx, key, userText)
		span.SetAttributes(attribute.String("session.name", name))
		r.logger.Info("session named", "session", key, "name", name)
	}

	return resp.Content, nil
}

// History returns a copy of the session's stored messages, creating the
// session if absent.
func (r *Runner) History(key string) []provider.Message {
	return r.store.GetOrCreate(key)
}
