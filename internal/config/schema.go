// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for parley.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Chat holds settings for the conversation core.
	Chat ChatConfig `yaml:"chat"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "provider.openai").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// ChatConfig configures the conversation runner and session naming.
type ChatConfig struct {
	// SystemPrompt, when set, is prepended to every completion request.
	// It is fixed per deployment and never stored in session history.
	SystemPrompt string `yaml:"system_prompt"`

	// Naming controls AI-derived session names.
	Naming NamingConfig `yaml:"naming"`
}

// NamingConfig controls the session-naming side-call.
type NamingConfig struct {
	// Disabled turns off AI naming; sessions get numbered default names.
	Disabled bool `yaml:"disabled"`
}
