// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hyprtext/internal/api"
	"github.com/starford/hyprtext/internal/controller"
	"github.com/starford/hyprtext/internal/history"
	"github.com/starford/hyprtext/internal/mcpserver"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/sse"
	"github.com/starford/hyprtext/internal/storage"
	"github.com/starford/hyprtext/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// core is the session controller and everything attached to it, shared by
// the HTTP and MCP front ends.
type core struct {
	logger  *slog.Logger
	loop    *controller.Loop
	ctrl    *controller.Controller
	exec    *controller.Serial
	broker  *sse.Broker
	watcher *watcher.Watcher
	history *history.DB
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// start builds the core, restores the previous session and opens the
// requested files. The loop goroutine is running when start returns.
func (app *application) start(ctx context.Context) (*core, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("session_path", cfg.Session.Path),
		slog.String("history_path", cfg.History.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c := &core{logger: logger}
	files := storage.NewDisk()

	if cfg.History.Enabled() {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("init history: %w", err)
		}
		c.history = db
	}

	if cfg.Watch.Enabled {
		w, err := watcher.New(logger, cfg.Watch.Delay)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("init watcher: %w", err)
		}
		c.watcher = w
	}

	c.broker = sse.NewBroker(time.Second)
	c.loop = controller.NewLoop()

	ctrlOpts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithSnapshots(snapshot.NewStore(cfg.Session.Path, files, logger)),
		controller.WithDispatch(func(fn func()) { c.loop.Post(fn) }),
		controller.WithSortDelay(cfg.Editor.SortDelay),
		controller.WithSortOnLoad(cfg.Editor.SortOnLoad),
		controller.WithFontSize(cfg.Editor.FontSize),
		controller.WithEvents(func(ev controller.Event) {
			c.broker.PublishChange(ev.Kind, ev)
		}),
	}
	if c.history != nil {
		ctrlOpts = append(ctrlOpts, controller.WithHistory(c.history))
	}
	if c.watcher != nil {
		ctrlOpts = append(ctrlOpts, controller.WithPathsChanged(func(paths []string) {
			if err := c.watcher.Sync(paths); err != nil {
				logger.Warn("watch sync failed", slog.String("error", err.Error()))
			}
		}))
	}
	c.ctrl = controller.New(files, ctrlOpts...)
	c.exec = controller.NewSerial(c.loop, c.ctrl)

	go c.loop.Run(context.Background())

	err := c.exec.Exec(ctx, func(ctrl *controller.Controller) error {
		ctrl.Restore()
		for _, p := range app.files {
			if _, err := ctrl.Open(p); err != nil {
				logger.Warn("open failed", slog.String("path", p), slog.String("error", err.Error()))
			}
		}
		return nil
	})
	if err != nil {
		c.close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return c, nil
}

// watch forwards external file changes to the controller until ctx ends.
func (c *core) watch(ctx context.Context) error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Run(ctx, func(path string) {
		c.loop.Post(func() { c.ctrl.ExternalChange(path) })
	})
}

// shutdown cancels pending sorts and persists the session.
func (c *core) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := c.exec.Exec(ctx, func(ctrl *controller.Controller) error {
		return ctrl.Shutdown()
	})
	if err != nil {
		c.logger.Error("Session persist failed", slog.String("error", err.Error()))
	}
}

func (c *core) close() {
	if c.loop != nil {
		c.loop.Close()
	}
	if c.broker != nil {
		c.broker.Close()
	}
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	if c.history != nil {
		_ = c.history.Close()
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the session with the local control API and blocks until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.start(ctx)
	if err != nil {
		return err
	}
	defer c.close()
	logger := c.logger

	apiRouter := api.NewRouter(c.exec, cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.watch(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		c.shutdown()
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the session over MCP on stdin/stdout until the client
// disconnects. Logs go to the configured log output, never stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	c, err := app.start(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := c.watch(watchCtx); err != nil {
			c.logger.Error("watcher failed", slog.String("error", err.Error()))
		}
	}()

	c.logger.Info("MCP server starting on stdio")
	srv := mcpserver.New(c.exec, app.version)
	err = srv.ServeStdio()
	c.shutdown()
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
