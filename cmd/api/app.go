package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habit-hero/internal/adapters/cache"
	"github.com/comitanigiacomo/habit-hero/internal/adapters/events"
	adapterHTTP "github.com/comitanigiacomo/habit-hero/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-hero/internal/adapters/repository"
	"github.com/comitanigiacomo/habit-hero/internal/config"
	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/services"
	"github.com/comitanigiacomo/habit-hero/internal/core/workers"
)

// app owns everything main starts and has to stop again.
type app struct {
	router     *gin.Engine
	worker     *workers.StreakWorker
	scheduler  *workers.StreakScheduler
	stopWorker context.CancelFunc
	log        *zap.Logger
	closers    []func()
}

type stores struct {
	users    domain.UserRepository
	habits   domain.HabitRepository
	checkins domain.CheckInRepository
	db       adapterHTTP.Pinger
}

func newApp(ctx context.Context, cfg *config.Config, clock domain.Clock, log *zap.Logger) (*app, error) {
	a := &app{log: log}

	st, err := a.openStorage(ctx, cfg, log)
	if err != nil {
		a.close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			st.habits = repository.NewCachedHabitRepository(st.habits, rdb, log)
			log.Info("redis connected", zap.String("host", cfg.Redis.Host))
		}
	}

	var publisher domain.EventPublisher
	if cfg.AMQP.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, clock)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, amqpPub.Close)
		publisher = amqpPub
		log.Info("publishing streak events", zap.String("exchange", cfg.AMQP.Exchange))
	} else {
		publisher = events.NewLogPublisher(log)
	}

	a.worker = workers.NewStreakWorker(st.habits, st.checkins, publisher, clock, log, cfg.App.WorkerQueue)
	a.scheduler = workers.NewStreakScheduler(st.habits, a.worker, log)

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, st.users, clock)
	authService := services.NewAuthService(st.users, tokenService, clock)
	habitService := services.NewHabitService(st.habits, clock)
	checkinService := services.NewCheckInService(st.checkins, st.habits, clock, a.worker)
	statusService := services.NewStatusService(st.habits, st.checkins, clock)
	statsService := services.NewStatsService(st.habits, st.checkins, clock)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService),
		HabitHandler:   adapterHTTP.NewHabitHandler(habitService),
		StatusHandler:  adapterHTTP.NewStatusHandler(statusService),
		CheckInHandler: adapterHTTP.NewCheckInHandler(checkinService),
		StatsHandler:   adapterHTTP.NewStatsHandler(statsService, clock),
		TokenService:   tokenService,
		DB:             st.db,
		Redis:          rdb,
		Logger:         log.Named("http"),
		RateLimit:      cfg.Server.RateLimit,
		StartTime:      clock.Now(),
	})

	return a, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	switch cfg.App.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{users: mem.Users(), habits: mem.Habits(), checkins: mem.CheckIns()}, nil

	case config.StoragePostgres:
		log.Info("connecting to database", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := repository.OpenPostgres(connectCtx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		log.Info("database connected")

		return &stores{
			users:    repository.NewPostgresUserRepository(db.DB),
			habits:   repository.NewPostgresHabitRepository(db),
			checkins: repository.NewPostgresCheckInRepository(db),
			db:       db,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, cfg.App.Storage)
}

// start launches the background streak evaluation. The worker stops when
// ctx is canceled or shutdown runs, whichever comes first.
func (a *app) start(ctx context.Context, schedule string) error {
	workerCtx, cancel := context.WithCancel(ctx)
	a.stopWorker = cancel
	a.worker.Start(workerCtx)
	if schedule == "" {
		return nil
	}
	return a.scheduler.Start(schedule)
}

// shutdown stops the producers before the worker and the worker before the
// connections it uses.
func (a *app) shutdown(ctx context.Context) {
	a.scheduler.Stop(ctx)
	if a.stopWorker != nil {
		a.stopWorker()
	}
	if err := a.worker.Wait(ctx); err != nil {
		a.log.Warn("streak worker did not stop in time", zap.Error(err))
	}
	a.close()
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
