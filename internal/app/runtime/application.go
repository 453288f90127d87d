// Package runtime wires configuration, storage, services and the HTTP server
// into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/campusworks/workstudy/internal/app"
	"github.com/campusworks/workstudy/internal/app/httpapi"
	"github.com/campusworks/workstudy/internal/app/metrics"
	"github.com/campusworks/workstudy/internal/app/storage/postgres"
	"github.com/campusworks/workstudy/internal/auth"
	"github.com/campusworks/workstudy/internal/config"
	"github.com/campusworks/workstudy/internal/middleware"
	"github.com/campusworks/workstudy/pkg/logger"
)

// Paths served without a session token.
var publicPaths = []string{
	"/api/auth/login",
	"/api/auth/register/student",
	"/api/auth/register/admin",
	"/health",
	"/metrics",
}

// Job listings are browseable without an account.
var publicReadPrefixes = []string{"/api/jobs"}

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	core       *app.Application
	httpServer *http.Server
	db         *sql.DB
}

// NewApplication constructs a new application instance with default wiring.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging)

	var (
		stores app.Stores
		db     *sql.DB
	)
	if cfg.Database.Enabled {
		db, err = openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		store := postgres.New(db)
		stores = app.Stores{
			Users:        store,
			Jobs:         store,
			Applications: store,
			WorkHours:    store,
			Feedback:     store,
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("database disabled; using in-memory storage")
	}

	core, err := app.New(stores, app.Options{KeepAlive: cfg.KeepAlive}, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	tokens := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", httpapi.NewHandler(core, tokens))

	authMW := middleware.NewAuthMiddleware(tokens, log, publicPaths, publicReadPrefixes)
	rateMW := middleware.NewRateLimiter(cfg.RateLimit, log)
	corsMW := middleware.CORS(cfg.CORS)

	var handler http.Handler = mux
	handler = authMW.Handler(handler)
	handler = rateMW.Handler(handler)
	handler = metrics.InstrumentHandler(handler)
	handler = corsMW(handler)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		core:       core,
		httpServer: httpSrv,
		db:         db,
	}, nil
}

// Run starts the managed services and the HTTP server, blocking until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.core.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.cfg.Server.Addr())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, the managed services and the
// database connection.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.core.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
