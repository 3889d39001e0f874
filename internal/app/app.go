package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/score-predictor/external/footballapi"
	"github.com/riskibarqy/score-predictor/external/sportmonks"
	"github.com/riskibarqy/score-predictor/internal/config"
	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/relay"
	cacherepo "github.com/riskibarqy/score-predictor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/score-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	idgen "github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/platform/resilience"
	"github.com/riskibarqy/score-predictor/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const smartStartBootTimeout = 30 * time.Second

// App owns the long-lived components behind the HTTP server.
type App struct {
	Server *http.Server

	cfg         config.Config
	logger      *logging.Logger
	poller      *usecase.PollService
	broadcaster *broadcast.Broadcaster
	relay       *relay.RedisRelay
	db          *sqlx.DB
	redis       *redis.Client
	stopRelay   context.CancelFunc
}

type repositories struct {
	fixtures    fixture.Repository
	predictions prediction.Repository
	stats       userstats.Repository
	runs        pollrun.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	repos, err := a.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	a.broadcaster = broadcast.NewBroadcaster(logger.Named("broadcast"))

	var publisher usecase.EventPublisher = a.broadcaster
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		instanceID, err := ids.NewID()
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("generate instance id: %w", err)
		}
		a.relay = relay.NewRedisRelay(a.redis, cfg.Redis.Channel, a.broadcaster, instanceID, logger.Named("relay"))
		publisher = a.relay
		logger.Info("live event relay enabled", "channel", cfg.Redis.Channel, "instance_id", instanceID)
	}

	scoring := usecase.NewScoringService(repos.fixtures, repos.predictions, repos.stats, cfg.Poll.ScoringWorkers, logger)
	a.poller = usecase.NewPollService(
		repos.fixtures,
		repos.runs,
		newLiveScoreProvider(cfg, logger),
		scoring,
		publisher,
		ids,
		usecase.PollServiceConfig{
			Interval:        cfg.Poll.Interval,
			FetchTimeout:    cfg.Poll.FetchTimeout,
			Workers:         cfg.Poll.Workers,
			FixtureCacheTTL: cfg.Poll.FixtureCacheTTL,
			LookBehind:      cfg.Poll.LookBehind,
			LookAhead:       cfg.Poll.LookAhead,
			Location:        cfg.Timezone,
		},
		logger,
	)
	cronSvc := usecase.NewCronTriggerService(repos.fixtures, a.poller, logger)
	statsSvc := usecase.NewUserStatsService(repos.stats)

	handler := httpapi.NewHandler(a.poller, cronSvc, scoring, statsSvc, a.broadcaster, ids, httpapi.StreamConfig{
		PingInterval: cfg.LiveStream.PingInterval,
		BufferSize:   cfg.LiveStream.BufferSize,
	}, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, httpapi.CronAuthConfig{
		Production:   cfg.IsProduction(),
		Secret:       cfg.Cron.Secret,
		MarkerHeader: cfg.Cron.MarkerHeader,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	// Open streams would otherwise hold Shutdown until its deadline.
	a.Server.RegisterOnShutdown(a.broadcaster.Close)
	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	var repos repositories
	if a.cfg.DBURL == "" {
		now := time.Now()
		repos = repositories{
			fixtures:    memory.NewFixtureRepository(memory.SeedFixtures(now)),
			predictions: memory.NewPredictionRepository(memory.SeedPredictions()),
			stats:       memory.NewUserStatsRepository(),
			runs:        memory.NewPollRunRepository(),
		}
		a.logger.Warn("DB_URL empty, using in-memory repositories with seed data")
	} else {
		db, err := openDB(a.cfg)
		if err != nil {
			return repositories{}, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("ping database: %w", err)
		}
		a.db = db

		if !a.cfg.IsProduction() {
			if err := postgres.BootstrapSeed(ctx, db, time.Now()); err != nil {
				a.logger.Warn("bootstrap seed failed", "error", err)
			}
		}
		repos = repositories{
			fixtures:    postgres.NewFixtureRepository(db),
			predictions: postgres.NewPredictionRepository(db),
			stats:       postgres.NewUserStatsRepository(db),
			runs:        postgres.NewPollRunRepository(db),
		}
		a.logger.Info("postgres repositories enabled", "db_name", dbNameFromURL(a.cfg.DBURL))
	}

	repos.fixtures = cacherepo.NewFixtureRepository(repos.fixtures, a.cfg.Poll.FixtureCacheTTL)
	repos.stats = cacherepo.NewUserStatsRepository(repos.stats, a.cfg.Poll.FixtureCacheTTL)
	return repos, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func newLiveScoreProvider(cfg config.Config, logger *logging.Logger) usecase.LiveScoreProvider {
	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.FootballAPI.CircuitEnabled,
		FailureThreshold: cfg.FootballAPI.CircuitFailureCount,
		OpenTimeout:      cfg.FootballAPI.CircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.FootballAPI.CircuitHalfOpenMaxReq,
	}

	if cfg.LiveScoreProvider == config.ProviderSportMonks && cfg.FootballAPI.Enabled && cfg.SportMonks.Token != "" {
		return sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:        cfg.SportMonks.BaseURL,
			Token:          cfg.SportMonks.Token,
			Timeout:        cfg.FootballAPI.Timeout,
			MaxRetries:     cfg.FootballAPI.MaxRetries,
			Logger:         logger.Named("sportmonks"),
			CircuitBreaker: breaker,
		})
	}
	if cfg.LiveScoreProvider == config.ProviderAPIFootball && cfg.FootballAPI.Enabled && cfg.FootballAPI.APIKey != "" {
		return footballapi.NewClient(footballapi.ClientConfig{
			BaseURL:           cfg.FootballAPI.BaseURL,
			APIKey:            cfg.FootballAPI.APIKey,
			Timeout:           cfg.FootballAPI.Timeout,
			MaxRetries:        cfg.FootballAPI.MaxRetries,
			RequestsPerMinute: cfg.FootballAPI.RequestsPerMinute,
			Logger:            logger.Named("footballapi"),
			CircuitBreaker:    breaker,
		})
	}

	logger.Warn("live score provider not configured, live scores come from stored fixtures only",
		"provider", cfg.LiveScoreProvider,
		"enabled", cfg.FootballAPI.Enabled,
	)
	return footballapi.NewFallbackProvider(logger)
}

// Start launches background work: the cross-instance relay and, when enabled,
// a boot-time smart start of the poll scheduler.
func (a *App) Start(ctx context.Context) {
	if a.relay != nil {
		relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.stopRelay = cancel
		go func() {
			if err := a.relay.Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("live event relay stopped", "error", err)
			}
		}()
	}

	if !a.cfg.Poll.AutoStart {
		return
	}
	bootCtx, cancel := context.WithTimeout(ctx, smartStartBootTimeout)
	defer cancel()
	result, err := a.poller.SmartStart(bootCtx)
	if err != nil {
		a.logger.Warn("boot smart start failed", "error", err)
		return
	}
	a.logger.Info("boot smart start", "should_poll", result.ShouldPoll, "reason", result.Reason, "action", result.Action)
}

// Close stops polling and releases stores. The HTTP server is shut down by the caller.
func (a *App) Close() error {
	a.poller.Stop()
	if a.stopRelay != nil {
		a.stopRelay()
	}
	a.broadcaster.Close()
	return a.closeStores()
}

func (a *App) closeStores() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
