package di

import (
	"context"
	"fmt"
	"time"

	"TrendWatch/internal/domain/repository"
	"TrendWatch/internal/handler/api"
	"TrendWatch/internal/handler/web"
	mid "TrendWatch/internal/middleware"
	internalrepo "TrendWatch/internal/repository"
	icache "TrendWatch/internal/service/cache"
	"TrendWatch/internal/service/ratelimit"
	"TrendWatch/internal/service/yahoo"
	"TrendWatch/internal/services/forecast"
	"TrendWatch/internal/usecase"
	pkgcache "TrendWatch/pkg/cache"
	"TrendWatch/pkg/config"
	"TrendWatch/pkg/database"
	xhttp "TrendWatch/pkg/http"
	pkgkafka "TrendWatch/pkg/kafka"
	applogger "TrendWatch/pkg/logger"
	"TrendWatch/pkg/metrics"
	"TrendWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideDatabase opens the user/watchlist database and applies its schema.
func ProvideDatabase(cfg *config.Config) (*database.Client, error) {
	client, err := database.NewClient(
		database.WithDriver(cfg.Database.Driver),
		database.WithDSN(cfg.Database.DSN),
		database.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
		database.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("database client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, client.Schema()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("database schema: %w", err)
	}
	return client, nil
}

// ProvideCache creates the cache backing sessions and market data.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Cache.Backend == "memory" {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return pkgcache.NewLayeredCache(rc,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			pkgcache.WithLayeredL1TTL(cfg.Cache.L1TTL),
		), nil
	}
	return rc, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes watchlist events to Kafka when a producer exists.
// It also routes aggregated error logs to the collector topic if one is configured.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopEventPublisher{}
	}
	if cfg.Logger.CollectorTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Logger.CollectorInterval,
			Publisher:    internalrepo.NewKafkaLogPublisher(producer, cfg.Logger.CollectorTopic),
		})
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketData creates the Yahoo chart client behind a read-through cache.
func ProvideMarketData(cfg *config.Config, c pkgcache.Service, l *applogger.Logger) repository.MarketData {
	client := yahoo.New(cfg.MarketData.BaseURL,
		xhttp.WithTimeout(cfg.MarketData.Timeout),
		xhttp.WithHeader("User-Agent", cfg.MarketData.UserAgent),
	)
	return icache.NewMarketData(client, c, cfg.Cache.PriceTTL, l)
}

func ProvideEngine(cfg *config.Config) *forecast.Engine {
	return forecast.NewEngine(
		forecast.WithMinPoints(cfg.Forecast.MinPoints),
		forecast.WithHorizonDays(cfg.Forecast.HorizonDays),
	)
}

func ProvideUserRepository(db *database.Client) repository.UserRepository {
	return internalrepo.NewSQLUserRepository(db)
}

func ProvideWatchlistStore(db *database.Client) repository.WatchlistStore {
	return internalrepo.NewSQLWatchlistStore(db)
}

func ProvideSessionStore(c pkgcache.Service, cfg *config.Config) repository.SessionStore {
	return internalrepo.NewCacheSessionStore(c, cfg.Session.TTL)
}

func ProvideAuthUseCase(users repository.UserRepository, sessions repository.SessionStore, l *applogger.Logger) *usecase.AuthUseCase {
	return usecase.NewAuthUseCase(users, sessions, l)
}

func ProvideForecastUseCase(
	market repository.MarketData,
	engine *forecast.Engine,
	store repository.WatchlistStore,
	events repository.EventPublisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(market, engine, store, events, m, cfg.MarketData.PeriodMonths, l)
}

func ProvideWatchlistUseCase(store repository.WatchlistStore, events repository.EventPublisher, l *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(store, events, l)
}

// ProvideRateLimiter creates the login attempt limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideCookieConfig(cfg *config.Config) mid.CookieConfig {
	return mid.CookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}
}

func ProvideWebHandler(
	auth *usecase.AuthUseCase,
	forecasts *usecase.ForecastUseCase,
	watchlist *usecase.WatchlistUseCase,
	limiter *ratelimit.Limiter,
	cookie mid.CookieConfig,
	l *applogger.Logger,
) *web.Handler {
	return web.NewHandler(auth, forecasts, watchlist, limiter, cookie, l)
}

func ProvideAPIHandler(
	auth *usecase.AuthUseCase,
	forecasts *usecase.ForecastUseCase,
	watchlist *usecase.WatchlistUseCase,
	cookie mid.CookieConfig,
	l *applogger.Logger,
) *api.Handler {
	return api.NewHandler(auth, forecasts, watchlist, cookie, l)
}

func ProvideHealthHandler(db *database.Client, l *applogger.Logger) *api.HealthHandler {
	return api.NewHealthHandler(db, l)
}

// ProvideHTTPServer builds the echo server with every route group registered.
func ProvideHTTPServer(
	cfg *config.Config,
	webHandler *web.Handler,
	apiHandler *api.Handler,
	health *api.HealthHandler,
	l *applogger.Logger,
) (*xhttp.Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithRenderer(renderer),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}

	handlers := xhttp.Handlers{health, apiHandler, webHandler}
	return xhttp.NewServer(handlers, opts...), nil
}

// ProvideApp creates the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	srv *xhttp.Server,
	db *database.Client,
	c pkgcache.Service,
	events repository.EventPublisher,
	limiter *ratelimit.Limiter,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, srv, db, c, events, limiter, l)
}
