// Package server wires the eBet auth service together: configuration,
// logging, the account store, the authentication core and the HTTP and gRPC
// transports.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ebet/internal/dbx"
	"github.com/dmitrijs2005/ebet/internal/logging"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/config"
	"github.com/dmitrijs2005/ebet/internal/server/metrics"
	"github.com/dmitrijs2005/ebet/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ebet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ebet/internal/server/services"

	gs "github.com/dmitrijs2005/ebet/internal/server/grpc"
	hs "github.com/dmitrijs2005/ebet/internal/server/http"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *hs.Server
	grpcServer *gs.GRPCServer
}

// NewApp builds every component from c. With an empty DatabaseDSN accounts
// live in memory; otherwise the database is pinged and migrated first.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New("ebet", c.LogFormat, c.SlogLevel(), os.Stdout)
	return newApp(ctx, c, logger, repomanager.NewPostgresRepositoryManager())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	app := &App{config: c, logger: logger}

	var repo accounts.Repository
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, accounts are kept in memory")
		repo = accounts.NewMemoryRepository()
	} else {
		db, err := openDB(ctx, c.DatabaseDSN, rm)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		repo = rm.Accounts(db)
	}

	hasher := auth.NewArgon2idHasher(auth.DefaultArgon2Params)
	tokens := auth.NewTokenManager([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	var gateOpts []auth.GateOption
	if c.ResolveAccounts {
		gateOpts = append(gateOpts, auth.WithAccountResolver(repo))
	}
	gate := auth.NewGate(tokens, gateOpts...)

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	as, err := services.NewAuthService(repo, hasher, tokens, m, logger.With("module", "auth_service"))
	if err != nil {
		app.Close()
		return nil, err
	}

	httpOpts := []hs.Option{hs.WithMetricsHandler(metrics.Handler(registry))}
	if app.db != nil {
		httpOpts = append(httpOpts, hs.WithHealthCheck(app.db))
	}
	app.httpServer = hs.NewServer(c.EndpointAddrHTTP, logger, as, gate, m, httpOpts...)

	app.grpcServer, err = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, as, gate, m, c.ProtectedMethods)
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

func openDB(ctx context.Context, dsn string, rm repomanager.RepositoryManager) (*sql.DB, error) {
	db, err := sql.Open(repomanager.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := dbx.WaitReady(ctx, db, dbx.DefaultBackoff()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database not reachable: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives, or either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		runErrs []error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, name+" server failed", "error", err)
				mu.Lock()
				runErrs = append(runErrs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	run("http", app.httpServer.Run)
	run("grpc", app.grpcServer.Run)

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")

	if len(runErrs) > 0 {
		return runErrs[0]
	}
	return nil
}

// Close releases the database handle, if any.
func (app *App) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "closing database", "error", err)
		}
		app.db = nil
	}
}
