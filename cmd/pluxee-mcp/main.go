package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/pluxee-mcp/internal/adapter/driven/browser"
	"github.com/ericfisherdev/pluxee-mcp/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/pluxee-mcp/internal/adapter/driven/pluxee"
	sqliteadapter "github.com/ericfisherdev/pluxee-mcp/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/pluxee-mcp/internal/adapter/driving/cli"
	httphandler "github.com/ericfisherdev/pluxee-mcp/internal/adapter/driving/http"
	mcphandler "github.com/ericfisherdev/pluxee-mcp/internal/adapter/driving/mcp"
	"github.com/ericfisherdev/pluxee-mcp/internal/application"
	"github.com/ericfisherdev/pluxee-mcp/internal/config"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Log to stderr; stdout carries the stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &wiring{cfg: cfg, logger: logger}
	defer w.close()

	root := cli.NewRootCmd(cli.Dependencies{
		Session: func(ctx context.Context) (driving.SessionAdmin, error) {
			return w.sessionManager(ctx)
		},
		Serve: w.serve,
	}, version)

	return root.ExecuteContext(ctx)
}

// wiring builds the object graph on first use so that commands which never
// touch the store do not open it.
type wiring struct {
	cfg    *config.Config
	logger *slog.Logger

	// migrate defaults to sqliteadapter.RunMigrations.
	migrate func(*sql.DB) error

	db      *sqliteadapter.DB
	session *application.SessionManager
}

func (w *wiring) records(ctx context.Context) (driven.RecordStore, error) {
	switch w.cfg.Store {
	case config.StoreSQLite:
		db, err := sqliteadapter.NewDB(ctx, w.cfg.DBPath)
		if err != nil {
			return nil, err
		}
		w.logger.Info("database opened", "path", db.Path())

		migrate := w.migrate
		if migrate == nil {
			migrate = sqliteadapter.RunMigrations
		}
		if err := migrate(db.Writer); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				w.logger.Error("error closing database", "error", closeErr)
			}
			return nil, err
		}
		w.db = db
		w.logger.Info("migrations complete")

		return sqliteadapter.NewRecordRepo(db, w.cfg.SecretKey), nil
	default:
		w.logger.Info("using file store", "dir", w.cfg.ProfileDir)
		return filestore.New(nil, w.cfg.ProfileDir), nil
	}
}

func (w *wiring) sessionManager(ctx context.Context) (*application.SessionManager, error) {
	if w.session != nil {
		return w.session, nil
	}

	records, err := w.records(ctx)
	if err != nil {
		return nil, err
	}
	store := application.NewCredentialStore(records, nil, w.logger)

	provider := browser.NewProvider(browser.Options{
		UserDataDir:  filepath.Join(w.cfg.ProfileDir, "browser"),
		CookieURLs:   w.cfg.CookieURLs,
		PollInterval: w.cfg.LoginPollInterval,
		Headless:     w.cfg.BrowserHeadless,
		ExecPath:     w.cfg.BrowserPath,
	}, w.logger)

	w.session = application.NewSessionManager(store, provider, w.cfg.SiteURL, w.cfg.LoginTimeout, w.logger)
	return w.session, nil
}

func (w *wiring) service(ctx context.Context) (*application.PluxeeService, error) {
	session, err := w.sessionManager(ctx)
	if err != nil {
		return nil, err
	}

	transport, err := pluxee.NewTransport(pluxee.Options{
		BaseURL:       w.cfg.BaseURL,
		ApplicationID: w.cfg.ApplicationID,
		SiteURL:       w.cfg.SiteURL,
		Timeout:       w.cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	exec := application.NewExecutor(transport, session, w.logger)
	resolver := application.NewAreaHashResolver(session, exec, w.cfg.DefaultLang, w.logger)
	return application.NewPluxeeService(session, exec, resolver, w.cfg.DefaultLang, w.logger), nil
}

func (w *wiring) serve(ctx context.Context) error {
	svc, err := w.service(ctx)
	if err != nil {
		return err
	}

	mcpServer := mcphandler.NewServer(mcphandler.NewHandler(svc, w.logger), version)

	slog.Info("pluxee-mcp started",
		"transport", w.cfg.Transport,
		"store", w.cfg.Store,
		"base_url", w.cfg.BaseURL,
		"version", version,
	)

	if w.cfg.Transport == config.TransportHTTP {
		return w.serveHTTP(ctx, svc, mcpServer)
	}

	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(w.logger.Handler(), slog.LevelError))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

func (w *wiring) serveHTTP(ctx context.Context, svc *application.PluxeeService, mcpServer *server.MCPServer) error {
	handler := httphandler.NewServeMux(
		httphandler.NewHandler(svc, w.logger),
		server.NewStreamableHTTPServer(mcpServer),
		w.logger,
	)

	// WriteTimeout is left unset: a login call blocks for up to the login
	// timeout and MCP streams stay open.
	srv := &http.Server{
		Addr:              w.cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", w.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func (w *wiring) close() {
	if w.db == nil {
		return
	}
	if err := w.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
