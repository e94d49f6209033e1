package core

import "strings"

// ModuleID identifies a module, namespaced with dots
// (e.g. "provider.openai", "gateway.http").
type ModuleID string

// Namespace returns the portion of the ID before the last dot.
func (id ModuleID) Namespace() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return ""
}

// Name returns the portion of the ID after the last dot.
func (id ModuleID) Name() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface all modules implement.
// Optional lifecycle behavior comes from the interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
