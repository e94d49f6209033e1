// Package provider defines the interface for communicating with a
// chat-completion backend, along with the message types shared by the
// conversation core.
package provider

import "context"

// Provider is the interface for a stateless chat-completion backend.
// Concrete implementations live in separate packages (e.g. provider.openai)
// and typically also implement core.Module for lifecycle management.
//
// The same Provider serves both conversation replies and session-name
// generation; the two uses never share message histories.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support active health probing.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
