// Package namer derives human-readable session names from the first user
// message of a conversation, via an independent completion call.
package namer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/provider"
)

// MaxNameLength is the cap applied to a normalized base name, before any
// collision suffix is appended.
const MaxNameLength = 50

// ErrEmptyInput indicates the first user message was blank, so no naming
// call was made. The directory consumes this internally via the numbered
// fallback; it is never surfaced to conversation callers.
var ErrEmptyInput = errors.New("namer: empty first message")

// topicPrompt asks the model to reduce a question to a short topic phrase.
// Output format is pinned hard because the result feeds straight into
// normalization.
const topicPrompt = `Based on the following question, generate a short, descriptive session name (2-4 words max) that captures the main topic or context.

Question: %s

Return ONLY the session name, nothing else. Make it lowercase with underscores instead of spaces.
Examples:
- "What is Python?" -> "python_question"
- "How do I cook pasta?" -> "cooking_pasta"
- "Explain machine learning" -> "machine_learning"
- "Tell me about the weather" -> "weather_inquiry"

Session name:`

// namingMaxTokens bounds the naming side-call; a topic phrase is a few words.
const namingMaxTokens = 32

// Namer proposes session names by asking the provider to summarize the
// first user message. The naming call is fully independent of the
// conversation call: it carries its own single-message history.
type Namer struct {
	provider provider.Provider
	maxLen   int
}

// New creates a Namer backed by the given provider.
func New(p provider.Provider) *Namer {
	return &Namer{provider: p, maxLen: MaxNameLength}
}

// Propose asks the provider to reduce firstUserText to a topic phrase and
// normalizes it into a candidate name. It returns ErrEmptyInput without
// calling the provider when the input is blank, and a wrapped provider
// error when the naming call fails. An empty result after normalization is
// reported as an error so the caller can fall back to a numbered default.
func (n *Namer) Propose(ctx context.Context, firstUserText string) (string, error) {
	if strings.TrimSpace(firstUserText) == "" {
		return "", ErrEmptyInput
	}

	resp, err := n.provider.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{
			provider.UserMessage(fmt.Sprintf(topicPrompt, firstUserText)),
		},
		MaxTokens: namingMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("namer: topic call: %w", err)
	}

	name := Normalize(resp.Content, n.maxLen)
	if name == "" {
		return "", errors.New("namer: topic phrase normalized to empty")
	}
	return name, nil
}

// Normalize reduces a raw topic phrase to a session name: lowercase, runs
// of non-alphanumerics collapsed to single underscores, leading/trailing
// underscores stripped, and truncated to maxLen preferring a word boundary.
func Normalize(phrase string, maxLen int) string {
	lower := strings.ToLower(strings.TrimSpace(phrase))

	var b strings.Builder
	b.Grow(len(lower))
	lastUnderscore := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	name := strings.Trim(b.String(), "_")
	if maxLen > 0 && len(name) > maxLen {
		name = truncateAtWord(name, maxLen)
	}
	return strings.Trim(name, "_")
}

// truncateAtWord cuts name to at most maxLen bytes, backing up to the last
// underscore when one exists so words are not split mid-way. The string is
// pure ASCII after normalization, so byte slicing is safe.
func truncateAtWord(name string, maxLen int) string {
	cut := name[:maxLen]
	if i := strings.LastIndexByte(cut, '_'); i > 0 {
		return cut[:i]
	}
	return cut
}
