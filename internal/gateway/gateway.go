package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/directory"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/provider"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Sender runs one conversation turn for a session key. *runner.Runner
// satisfies this.
type Sender interface {
	Send(ctx context.Context, key, userText string) (string, error)
}

// SessionDirectory is the subset of *directory.Directory the gateway needs.
type SessionDirectory interface {
	List() []directory.Entry
	Switch(name string) (string, error)
	Name(key string) (string, bool)
	Rename(key, newName string) error
	Delete(key string) error
	Len() int
}

// Gateway is the HTTP gateway module. It exposes the chat and session
// management API plus health and metrics endpoints. It is a leaf module,
// nothing imports it.
type Gateway struct {
	config  Config
	appCtx  *core.AppContext
	logger  *slog.Logger
	server  *http.Server
	metrics *Metrics

	// Resolved lazily at Start() via service registry.
	runner   Sender
	sessions SessionDirectory
	history  history.Store
	provider provider.Provider
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = NewMetrics()

	ctx.RegisterService("gateway.metrics", g.metrics)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	// Resolve optional services. Handlers answer 503 for anything missing,
	// so a gateway without a chat backend still serves /health and /metrics.
	if svc, ok := g.appCtx.Service("chat.runner"); ok {
		if r, ok := svc.(Sender); ok {
			g.runner = r
		}
	}
	if svc, ok := g.appCtx.Service("chat.directory"); ok {
		if d, ok := svc.(SessionDirectory); ok {
			g.sessions = d
		}
	}
	if svc, ok := g.appCtx.Service("chat.history"); ok {
		if s, ok := svc.(history.Store); ok {
			g.history = s
		}
	}
	if svc, ok := g.appCtx.Service("provider.openai"); ok {
		if p, ok := svc.(provider.Provider); ok {
			g.provider = p
		}
	}

	mux := g.buildRouter()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      mux,
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
