package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/tournament-engine/internal/config"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/archive"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/events"
	cacherepo "github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tournament-engine/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
	"github.com/riskibarqy/tournament-engine/internal/platform/resilience"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

// App owns the HTTP server and everything that has to be released on shutdown.
type App struct {
	Server *http.Server

	logger     *logging.Logger
	db         *sqlx.DB
	dispatcher *events.Dispatcher
	hub        *events.Hub
	nats       *events.NATSSink
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close(ctx, time.Second)
		}
	}()

	repo, seasons, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		seasons = cacherepo.NewSeasonRepository(seasons, cfg.CacheTTL)
	}

	publisher, err := a.buildEventPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	tournaments := usecase.NewTournamentService(repo, seasons, publisher, ids, logger, cfg.DefaultSeatsPerTable)
	handler := httpapi.NewHandler(httpapi.Services{
		Seasons:     usecase.NewSeasonService(seasons, ids),
		Tournaments: tournaments,
		Clocks:      usecase.NewClockService(repo, seasons, publisher, ids, logger),
		Ledger:      usecase.NewLedgerService(repo, seasons, publisher, ids, logger),
		Tables:      usecase.NewTableService(repo, seasons, publisher, ids, logger, cfg.MinPlayersToBreak),
		Boards:      usecase.NewLeaderboardService(repo, seasons, ids, logger),
	}, a.hub, logger)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectURL,
			AdminKey:       cfg.AnubisAdminKey,
			Timeout:        cfg.AnubisTimeout,
			CacheTTL:       cfg.AnubisCacheTTL,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnubisCircuitEnabled,
				FailureThreshold: cfg.AnubisCircuitFailureCount,
				OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	router := httpapi.NewRouter(handler, anubisClient, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ok = true
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Config) (tournament.Repository, season.Repository, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		a.logger.Info("using in-memory storage")
		return memory.NewTournamentRepository(), memory.NewSeasonRepository(memory.SeedSeasons()), nil
	}

	dbURL := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	a.db = db

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	seasons := postgres.NewSeasonRepository(db)
	if err := seedDefaultSeason(ctx, seasons); err != nil {
		return nil, nil, err
	}

	a.logger.Info("using postgres storage", "db_name", dbNameFromURL(dbURL))
	return postgres.NewTournamentRepository(db), seasons, nil
}

// seedDefaultSeason makes sure tournaments created without an explicit season have one
// to attach to.
func seedDefaultSeason(ctx context.Context, repo season.Repository) error {
	for _, item := range memory.SeedSeasons() {
		_, exists, err := repo.GetByID(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("lookup seed season %s: %w", item.ID, err)
		}
		if exists {
			continue
		}
		if err := repo.Create(ctx, item); err != nil {
			return fmt.Errorf("seed season %s: %w", item.ID, err)
		}
	}
	return nil
}

func (a *App) buildEventPipeline(ctx context.Context, cfg config.Config) (tournament.EventPublisher, error) {
	a.hub = events.NewHub(cfg.CORSAllowedOrigins, a.logger)
	sinks := []events.Sink{a.hub}

	if cfg.NATSEnabled {
		sink, err := events.NewNATSSink(events.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
			ClientName:    cfg.ServiceName,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.nats = sink
		sinks = append(sinks, sink)
	}

	if cfg.WebhookEnabled {
		sink, err := events.NewWebhookSink(events.WebhookConfig{
			URL:     cfg.WebhookURL,
			Secret:  cfg.WebhookSecret,
			Timeout: cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMaxRq,
			},
		}, a.logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if cfg.ArchiveEnabled {
		sink, err := archive.NewS3Sink(ctx, archive.Config{
			Bucket:    cfg.ArchiveBucket,
			Endpoint:  cfg.ArchiveEndpoint,
			Region:    cfg.ArchiveRegion,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
			Prefix:    cfg.ArchivePrefix,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	dispatcher, err := events.NewDispatcher(events.DispatcherConfig{
		Workers:         cfg.EventWorkers,
		DeliveryTimeout: cfg.EventDeliveryTimeout,
	}, a.logger, sinks...)
	if err != nil {
		return nil, err
	}
	a.dispatcher = dispatcher

	names := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		names = append(names, sink.Name())
	}
	a.logger.Info("event pipeline ready", "sinks", names, "workers", cfg.EventWorkers)

	return dispatcher, nil
}

// Close drains pending event deliveries before tearing down sinks and the database.
func (a *App) Close(_ context.Context, timeout time.Duration) error {
	var firstErr error
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(timeout); err != nil {
			a.logger.Warn("event dispatcher did not drain in time", "error", err)
			firstErr = err
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.nats != nil {
		a.nats.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
