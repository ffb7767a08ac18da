// Package server wires configuration, storage, services and the HTTP API
// together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/logging"
	"github.com/dmitrijs2005/activitydash/internal/server/config"
	"github.com/dmitrijs2005/activitydash/internal/server/httpserver"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/activitydash/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-retry"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	tokenService    *services.TokenService
	userService     *services.UserService
	activityService *services.ActivityService
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// dbBackoff bounds how long startup waits for the database to come up.
var dbBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
}

func waitForDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return retry.Do(ctx, dbBackoff(), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, parseLevel(c.LogLevel))

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := waitForDB(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db connect error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ts := services.NewTokenService(rm, c)
	us := services.NewUserService(db, rm, ts)
	as := services.NewActivityService(db, rm, c)

	if c.AllActivityVisible() {
		logger.Warn(ctx, "activity chart shows every user's activity to any authenticated caller", "scope", c.ActivityScope)
	} else {
		logger.Info(ctx, "activity chart limited to the caller's own activity (superusers see all)", "scope", c.ActivityScope)
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		tokenService:    ts,
		userService:     us,
		activityService: as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if strings.EqualFold(app.config.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.tokenService, app.activityService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
