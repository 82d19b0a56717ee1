package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendWatch/internal/domain/repository"
	"TrendWatch/internal/service/ratelimit"
	pkgcache "TrendWatch/pkg/cache"
	"TrendWatch/pkg/config"
	"TrendWatch/pkg/database"
	xhttp "TrendWatch/pkg/http"
	applogger "TrendWatch/pkg/logger"
)

const limiterPruneInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	db         *database.Client
	cache      pkgcache.Service
	events     repository.EventPublisher
	limiter    *ratelimit.Limiter
	log        *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	srv *xhttp.Server,
	db *database.Client,
	c pkgcache.Service,
	events repository.EventPublisher,
	limiter *ratelimit.Limiter,
	l *applogger.Logger,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         db,
		cache:      c,
		events:     events,
		limiter:    limiter,
		log:        l,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("trendwatch started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("db_driver", a.cfg.Database.Driver),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	done := make(chan struct{})
	go a.pruneLimiter(done)

	<-ctx.Done()
	close(done)

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(done <-chan struct{}) {
	if a.limiter == nil {
		return
	}
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if n := a.limiter.Prune(); n > 0 {
				a.log.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown stops the HTTP server first so no request sees a closed store.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	// Flushes pending error logs through the producer before it closes.
	a.log.RemoveCollector()

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("database close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
