// Package server assembles the vcalc service: it loads the client database,
// builds the logger, and runs the TCP dispatcher until a signal arrives or
// the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/vcalc/internal/auth"
	"github.com/dmitrijs2005/vcalc/internal/logging"
	"github.com/dmitrijs2005/vcalc/internal/server/config"
	"github.com/dmitrijs2005/vcalc/internal/server/credentials"
	"github.com/dmitrijs2005/vcalc/internal/server/session"
	"github.com/dmitrijs2005/vcalc/internal/server/tcp"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	logFile io.Closer
	store   credentials.Repository
	server  *tcp.Server
}

// NewApp builds the App for c, logging to stderr and, when configured, to
// the log file.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stderr)
}

func newApp(ctx context.Context, c *config.Config, stderr io.Writer) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	app := &App{config: c}

	out := stderr
	if c.LogFile != "" {
		f, err := logging.OpenFile(c.LogFile)
		if err != nil {
			return nil, err
		}
		app.logFile = f
		out = io.MultiWriter(stderr, f)
	}
	app.logger = logging.NewJSONLogger(out, level)

	app.store = app.loadCredentials(ctx)

	issuer := auth.NewGenerator(nil)
	opts := session.Options{
		HandshakeTimeout: c.HandshakeTimeout,
		VectorTimeout:    c.VectorTimeout,
		MaxLoginLength:   c.MaxLoginLength,
	}
	handler := tcp.HandlerFunc(func(ctx context.Context, conn net.Conn) error {
		return session.New(conn, app.store, issuer, app.logger, opts).Run(ctx)
	})

	app.server = tcp.NewServer(c.EndpointAddr, handler, app.logger, tcp.Options{
		MaxSessions:      c.MaxSessions,
		MaxSessionsPerIP: c.MaxSessionsPerIP,
		ShutdownTimeout:  c.ShutdownTimeout,
	})
	return app, nil
}

// loadCredentials reads the client database. When it cannot be read the
// service still starts: with the seeded credential if one is configured,
// otherwise with no clients at all.
func (app *App) loadCredentials(ctx context.Context) credentials.Repository {
	store := credentials.NewFileStore(app.config.ClientDBPath)
	err := store.Load(ctx)
	if err == nil {
		if n := store.Skipped(); n > 0 {
			app.logger.Warn(ctx, "malformed client database lines skipped", "path", store.Path(), "count", n)
		}
		app.logger.Info(ctx, "client database loaded", "path", store.Path(), "clients", store.Len())
		return store
	}

	app.logger.Warn(ctx, "client database not loaded", "path", store.Path(), "error", err)
	if app.config.Seed == "" {
		return store
	}
	seed, err := credentials.ParseCredential(app.config.Seed)
	if err != nil {
		app.logger.Error(ctx, "seed credential ignored", "error", err)
		return store
	}
	app.logger.Warn(ctx, "using seed credential", "login", seed.Login)
	return credentials.NewMemoryStore(seed)
}

// Addr returns the listening address once Run has started.
func (app *App) Addr() net.Addr {
	return app.server.Addr()
}

// ActiveSessions returns the number of connected clients.
func (app *App) ActiveSessions() int {
	return app.server.ActiveSessions()
}

func (app *App) waitForSignal(ctx context.Context, cancelFunc context.CancelFunc) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		app.logger.Info(ctx, "Signal received, shutting down...", "signal", sig.String())
		cancelFunc()
	case <-ctx.Done():
	}
	return nil
}

// Run serves until ctx is cancelled, a termination signal arrives, or the
// listener fails. It returns the listener error, if any.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.waitForSignal(gctx, cancelFunc)
	})
	g.Go(func() error {
		err := app.server.Run(gctx)
		if err != nil {
			app.logger.Error(gctx, "TCP server failed", "error", err)
		}
		return err
	})

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")

	if app.logFile != nil {
		if cerr := app.logFile.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close log file: %w", cerr))
		}
	}
	return err
}
