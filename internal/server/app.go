// Package server wires the signup server together: database, migrations,
// signup policy, services, the gRPC transport and the admin listener.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authsignup/internal/logging"
	"github.com/dmitrijs2005/authsignup/internal/server/admin"
	"github.com/dmitrijs2005/authsignup/internal/server/config"
	"github.com/dmitrijs2005/authsignup/internal/server/metrics"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authsignup/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/authsignup/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	params *services.ParameterService
	grpc   *gs.GRPCServer
	admin  *admin.Server
}

// NewApp connects to the database, applies migrations and resolves the
// signup policy.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*App, error) {
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	params := services.NewParameterService(db, m, c)
	policy, err := params.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy error: %w", err)
	}
	if policy.TemplateAccountID == "" {
		logger.Warn(ctx, "no template account configured, token signups will fail")
	}
	logger.Info(ctx, "signup policy loaded",
		"tenant_id", policy.TenantID,
		"base_url", policy.BaseURL,
		"allow_uninvited", policy.AllowUninvited,
		"template_account_id", policy.TemplateAccountID)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mt := metrics.NewPrometheus(reg)

	tokens := services.NewTokenManager(db, m, params, logger.With("module", "tokens"), mt)
	credentials := services.NewCredentialService(db, m, policy.TenantID)
	signup := services.NewSignupService(db, m, tokens, credentials, params, logger.With("module", "signup"), mt)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		params: params,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, mt, tokens, signup, params, c.SecretKey, c.SignupTokenValidity),
	}
	if c.AdminAddr != "" {
		app.admin = admin.NewServer(c.AdminAddr, reg, db, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startAdminServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.admin.Run(ctx); err != nil {
		app.logger.Error(ctx, "admin server error", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.admin != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startAdminServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
