package app

import (
	"errors"
	"log/slog"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/directory"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/namer"
	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/runner"
)

// wireChat builds the conversation core — history store, session directory,
// and runner — on top of the loaded provider module, and registers the
// results as services for the gateway to pick up.
func wireChat(appCtx *core.AppContext, cfg *config.Config, logger *slog.Logger) error {
	svc, ok := appCtx.Service("provider.openai")
	if !ok {
		return errors.New("app: no provider service registered; configure a provider module")
	}
	p, ok := svc.(provider.Provider)
	if !ok {
		return errors.New("app: provider service does not implement provider.Provider")
	}

	store := history.NewInMemoryStore()

	// A disabled namer still yields session_<n> names via the directory.
	var proposer directory.Proposer
	if !cfg.Chat.Naming.Disabled {
		proposer = namer.New(p)
	}
	dir := directory.New(proposer, store)

	run := runner.New(store, p, dir, runner.Config{
		SystemPrompt: cfg.Chat.SystemPrompt,
	}, logger)

	appCtx.RegisterService("chat.history", store)
	appCtx.RegisterService("chat.directory", dir)
	appCtx.RegisterService("chat.runner", run)

	return nil
}
