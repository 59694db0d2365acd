package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/event"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/infrastructure/pubsub"
	repocache "github.com/riskibarqy/matchday/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchday/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday/internal/platform/dburl"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App owns the HTTP server and every resource it depends on.
type App struct {
	Server  *http.Server
	Metrics *metrics.Manager

	logger  *logging.Logger
	closers []func() error
}

type repositories struct {
	players player.Repository
	matches match.Repository
	squads  squad.Repository
	ballots rating.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{logger: logger}
	a.Metrics = metrics.NewManager(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
	)

	repos, err := a.openStorage(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		repos = withCache(repos, cfg.CacheTTL)
	}

	publisher, err := a.openPublisher(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	idGen := id.NewUUIDGenerator()
	playerService := usecase.NewPlayerService(repos.players, idGen, cfg.Rating.Bounds)
	matchService := usecase.NewMatchService(repos.matches, repos.players, idGen, cfg.SquadDefaultFormation)
	if cfg.Rating.Mode == rating.ModeSurvey {
		matchService.WithSquadVoters(repos.squads)
	}
	squadService := usecase.NewSquadService(
		repos.matches,
		repos.players,
		repos.squads,
		publisher,
		a.Metrics,
		idGen,
		usecase.SquadConfig{
			DefaultFormation: cfg.SquadDefaultFormation,
			ShuffleAttempts:  cfg.SquadShuffleAttempts,
			WorkerPoolSize:   cfg.SquadWorkerPoolSize,
		},
		logger,
	)
	ballotService, err := usecase.NewBallotService(
		repos.matches,
		repos.players,
		repos.squads,
		repos.ballots,
		cfg.Rating,
		publisher,
		a.Metrics,
		logger,
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build ballot service: %w", err)
	}

	handler := httpapi.NewHandler(playerService, matchService, squadService, ballotService, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            a.Metrics,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("application wired",
		"storage", cfg.StorageDriver,
		"rating_mode", string(cfg.Rating.Mode),
		"nats_enabled", cfg.NATSEnabled,
		"metrics_enabled", a.Metrics.Enabled(),
		"cache_enabled", cfg.CacheEnabled,
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, db.Close)
		return repositories{
			players: postgres.NewPlayerRepository(db),
			matches: postgres.NewMatchRepository(db),
			squads:  postgres.NewSquadRepository(db),
			ballots: postgres.NewBallotRepository(db),
		}, nil
	default:
		store := memory.NewStore()
		if cfg.SeedDemoData {
			players := memory.SeedPlayers(time.Now().UTC())
			store.Seed(players)
			a.logger.Info("seeded demo players", "count", len(players))
		}
		return repositories{
			players: store.Players(),
			matches: store.Matches(),
			squads:  store.Squads(),
			ballots: store.Ballots(),
		}, nil
	}
}

// withCache wraps profile and squad reads. Only safe when this process is the single writer
// or when CacheTTL bounds the staleness operators accept.
func withCache(repos repositories, ttl time.Duration) repositories {
	stores := repocache.NewStores(ttl)
	return repositories{
		players: repocache.NewPlayerRepository(repos.players, stores),
		matches: repos.matches,
		squads:  repocache.NewSquadRepository(repos.squads, stores),
		ballots: repocache.NewBallotRepository(repos.ballots, stores),
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres",
		dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dburl.Name(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", dburl.Redact(cfg.DBURL), err)
	}
	return db, nil
}

func (a *App) openPublisher(cfg config.Config) (event.Publisher, error) {
	if !cfg.NATSEnabled {
		return event.Nop{}, nil
	}

	publisher, err := pubsub.NewNATSPublisher(pubsub.Config{
		URL:              cfg.NATSURL,
		SubjectPrefix:    cfg.NATSSubjectPrefix,
		StreamName:       cfg.NATSStream,
		FailureThreshold: 5,
		CoolDown:         30 * time.Second,
		PublishTimeout:   cfg.NATSPublishTimeout,
	}, a.Metrics, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init nats publisher: %w", err)
	}
	a.closers = append(a.closers, func() error {
		publisher.Close()
		return nil
	})
	return publisher, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
