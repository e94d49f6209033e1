// Package gateway provides the HTTP front end: the chat endpoint, session
// management, health, and metrics. It binds to loopback by default and
// follows the module system pattern.
package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parleyhq/parley/internal/directory"
	"github.com/parleyhq/parley/internal/runner"
)

// newSessionKey returns a fresh opaque session key.
func newSessionKey() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// messageRequest is the body for POST /api/messages. Session is optional:
// when absent a new session is started and named after the first reply.
type messageRequest struct {
	Session string `json:"session,omitempty"`
	Content string `json:"content"`
}

// messageResponse is the reply for POST /api/messages.
type messageResponse struct {
	Session string `json:"session"`
	Reply   string `json:"reply"`
}

// handleSendMessage runs one conversation turn. An unknown session name is
// a 404; a provider failure is a 502 and leaves the session unchanged.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.runner == nil || g.sessions == nil {
			http.Error(w, "chat backend not ready", http.StatusServiceUnavailable)
			return
		}

		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, "content is required", http.StatusBadRequest)
			return
		}

		var key string
		if req.Session != "" {
			k, err := g.sessions.Switch(req.Session)
			if err != nil {
				http.Error(w, "unknown session: "+req.Session, http.StatusNotFound)
				return
			}
			key = k
		} else {
			key = newSessionKey()
			g.metrics.RecordSessionCreated()
		}

		start := time.Now()
		reply, err := g.runner.Send(r.Context(), key, req.Content)
		if err != nil {
			g.metrics.RecordTurnError()
			g.logger.Error("turn failed", "session", key, "error", err)
			if errors.Is(err, runner.ErrCompletion) {
				http.Error(w, "completion failed", http.StatusBadGateway)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		g.metrics.RecordTurn(time.Since(start))

		// The runner registers the name on the first completed turn.
		name, ok := g.sessions.Name(key)
		if !ok {
			name = req.Session
		}

		writeJSON(w, http.StatusOK, messageResponse{Session: name, Reply: reply})
	}
}

// sessionJSON is a serializable session snapshot.
type sessionJSON struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

// handleListSessions returns all sessions in creation order.
func (g *Gateway) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sessions := []sessionJSON{}

		if g.sessions != nil {
			for _, e := range g.sessions.List() {
				s := sessionJSON{Name: e.Name}
				if g.history != nil {
					s.Messages = g.history.Len(e.Key)
				}
				sessions = append(sessions, s)
			}
		}

		writeJSON(w, http.StatusOK, sessions)
	}
}

// messageJSON is one stored message in a session transcript.
type messageJSON struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// sessionDetailJSON is the full transcript for GET /api/sessions/{name}.
type sessionDetailJSON struct {
	Name     string        `json:"name"`
	Messages []messageJSON `json:"messages"`
}

// handleGetSession returns a session's transcript.
func (g *Gateway) handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.sessions == nil || g.history == nil {
			http.Error(w, "chat backend not ready", http.StatusServiceUnavailable)
			return
		}

		name := chi.URLParam(r, "name")
		key, err := g.sessions.Switch(name)
		if err != nil {
			http.Error(w, "unknown session: "+name, http.StatusNotFound)
			return
		}

		stored := g.history.GetOrCreate(key)
		messages := make([]messageJSON, 0, len(stored))
		for _, m := range stored {
			messages = append(messages, messageJSON{Role: string(m.Role), Content: m.Content})
		}

		writeJSON(w, http.StatusOK, sessionDetailJSON{Name: name, Messages: messages})
	}
}

// renameRequest is the body for PATCH /api/sessions/{name}.
type renameRequest struct {
	Name string `json:"name"`
}

// handleRenameSession rebinds a session to a caller-chosen name. A name
// already held by another session is a 409; the directory is unchanged.
func (g *Gateway) handleRenameSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.sessions == nil {
			http.Error(w, "chat backend not ready", http.StatusServiceUnavailable)
			return
		}

		name := chi.URLParam(r, "name")
		key, err := g.sessions.Switch(name)
		if err != nil {
			http.Error(w, "unknown session: "+name, http.StatusNotFound)
			return
		}

		var req renameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		if err := g.sessions.Rename(key, req.Name); err != nil {
			if errors.Is(err, directory.ErrNameCollision) {
				http.Error(w, "name already in use: "+req.Name, http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, sessionJSON{Name: req.Name})
	}
}

// handleClearSession empties a session's history. The session keeps its
// name and stays listed.
func (g *Gateway) handleClearSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.sessions == nil || g.history == nil {
			http.Error(w, "chat backend not ready", http.StatusServiceUnavailable)
			return
		}

		name := chi.URLParam(r, "name")
		key, err := g.sessions.Switch(name)
		if err != nil {
			http.Error(w, "unknown session: "+name, http.StatusNotFound)
			return
		}

		if err := g.history.Clear(key); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleDeleteSession removes a session and its history entirely.
func (g *Gateway) handleDeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.sessions == nil {
			http.Error(w, "chat backend not ready", http.StatusServiceUnavailable)
			return
		}

		name := chi.URLParam(r, "name")
		key, err := g.sessions.Switch(name)
		if err != nil {
			http.Error(w, "unknown session: "+name, http.StatusNotFound)
			return
		}

		if err := g.sessions.Delete(key); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
