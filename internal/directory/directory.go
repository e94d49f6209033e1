// Package directory maintains the bijection between human-facing session
// names and underlying session keys: creation with AI-derived names,
// listing in creation order, renaming, switching, and deletion.
package directory

import (
	"context"
	"fmt"
	"sync"
)

// Proposer produces a candidate session name from the first user message.
// *namer.Namer satisfies this; the indirection keeps the directory testable
// without a completion backend.
type Proposer interface {
	Propose(ctx context.Context, firstUserText string) (string, error)
}

// Purger removes all stored state for a session key. history.Store
// satisfies this; Delete uses it to forget the session's messages.
type Purger interface {
	Delete(key string) error
}

// Entry is one directory binding.
type Entry struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Directory maps display names to session keys. Every key maps to exactly
// one name and vice versa. Safe for concurrent use.
type Directory struct {
	mu       sync.Mutex
	proposer Proposer // nil disables AI naming; numbered defaults only
	purger   Purger

	byName map[string]string
	byKey  map[string]string
	order  []string // keys in creation order
}

// New creates an empty Directory. proposer may be nil to disable AI naming;
// purger may be nil if no history store cleanup is wanted on Delete.
func New(proposer Proposer, purger Purger) *Directory {
	return &Directory{
		proposer: proposer,
		purger:   purger,
		byName:   make(map[string]string),
		byKey:    make(map[string]string),
	}
}

// Create derives a name for the session key and registers the binding.
// The binding is permanent for the session's lifetime unless renamed.
// Calling Create for an already-registered key returns the existing name.
//
// Name derivation never fails the caller: a failed or unusable naming call
// degrades to the numbered default, and collisions are resolved by suffix.
func (d *Directory) Create(ctx context.Context, key, firstUserText string) string {
	d.mu.Lock()
	if name, ok := d.byKey[key]; ok {
		d.mu.Unlock()
		return name
	}
	d.mu.Unlock()

	// The naming call is a network round trip; it must not hold the
	// directory lock and block unrelated sessions.
	var candidate string
	if d.proposer != nil {
		if proposed, err := d.proposer.Propose(ctx, firstUserText); err == nil {
			candidate = proposed
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Re-check: another caller may have registered the key meanwhile.
	if name, ok := d.byKey[key]; ok {
		return name
	}

	if candidate == "" {
		candidate = d.nextNumberedLocked()
	}
	name := d.resolveCollisionLocked(candidate)
	d.registerLocked(name, key)
	return name
}

// List returns all bindings in creation order.
func (d *Directory) List() []Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]Entry, 0, len(d.order))
	for _, key := range d.order {
		entries = append(entries, Entry{Name: d.byKey[key], Key: key})
	}
	return entries
}

// Switch returns the session key bound to name.
func (d *Directory) Switch(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key, ok := d.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSession, name)
	}
	return key, nil
}

// Name returns the display name bound to key, if any.
func (d *Directory) Name(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, ok := d.byKey[key]
	return name, ok
}

// Rename rebinds the session key to newName. It fails with ErrNameCollision
// when newName is already bound to a different key, and ErrUnknownSession
// when the key is not registered. The directory is unchanged on failure.
func (d *Directory) Rename(key, newName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	oldName, ok := d.byKey[key]
	if !ok {
		return fmt.Errorf("%w: key %q", ErrUnknownSession, key)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := d.byName[newName]; taken {
		return fmt.Errorf("%w: %q", ErrNameCollision, newName)
	}

	delete(d.byName, oldName)
	d.byName[newName] = key
	d.byKey[key] = newName
	return nil
}

// Delete removes the binding for key and instructs the history store to
// forget the session.
func (d *Directory) Delete(key string) error {
	d.mu.Lock()
	name, ok := d.byKey[key]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: key %q", ErrUnknownSession, key)
	}
	delete(d.byKey, key)
	delete(d.byName, name)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	if d.purger != nil {
		return d.purger.Delete(key)
	}
	return nil
}

// Len returns the number of registered sessions.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// nextNumberedLocked returns session_<n> for the smallest unused n.
func (d *Directory) nextNumberedLocked() string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("session_%d", n)
		if _, taken := d.byName[candidate]; !taken {
			return candidate
		}
	}
}

// resolveCollisionLocked appends _2, _3, ... (smallest unused suffix) until
// the candidate is free. The length cap applies to the base name only, so a
// suffixed name may exceed it.
func (d *Directory) resolveCollisionLocked(candidate string) string {
	if _, taken := d.byName[candidate]; !taken {
		return candidate
	}
	for n := 2; ; n++ {
		suffixed := fmt.Sprintf("%s_%d", candidate, n)
		if _, taken := d.byName[suffixed]; !taken {
			return suffixed
		}
	}
}

func (d *Directory) registerLocked(name, key string) {
	d.byName[name] = key
	d.byKey[key] = name
	d.order = append(d.order, key)
}
