// Command server runs the wellness platform API: the check-in event
// processor, survey and journal services, analytics, the word-frequency
// index, the notification dispatcher, and the maintenance scheduler, all
// behind one Gin HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/harborwell/wellness-backend/internal/adapters"
	"github.com/harborwell/wellness-backend/internal/analytics"
	"github.com/harborwell/wellness-backend/internal/config"
	httpapi "github.com/harborwell/wellness-backend/internal/http"
	"github.com/harborwell/wellness-backend/internal/index"
	"github.com/harborwell/wellness-backend/internal/notify"
	"github.com/harborwell/wellness-backend/internal/observability"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/scheduler"
	"github.com/harborwell/wellness-backend/internal/services"
	"github.com/harborwell/wellness-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op when disabled)
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(sctx)
	}()

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// Notification dispatcher
	var notifier services.Notifier
	var dispatcher *notify.Dispatcher
	if cfg.Notify.Enabled {
		dispatcher = notify.NewDispatcher(db, nil, log.Logger, cfg.Notify.QueueDepth)
		dispatcher.Start(cfg.Notify.Workers)
		defer dispatcher.Stop()
		notifier = dispatcher
	}

	// Word index
	words := index.NewWriter(db, log.Logger)

	// Services
	locks := services.NewUserLocks(0)
	checkins := &services.CheckinService{
		DB:                db,
		Locks:             locks,
		RewardBase:        cfg.Reward.Base,
		RewardBonus:       cfg.Reward.Bonus,
		AverageMoodWindow: cfg.AverageMoodWindow,
		RiskWindowDays:    cfg.RiskWindowDays,
		Index:             words,
		Notify:            notifier,
	}
	// Journal insights stay disabled until a client is configured; the
	// adapter is a no-op without one.
	insights := &adapters.LLMInsights{Log: log.Logger}
	journals := &services.JournalService{DB: db, Index: words, Insights: insights}
	surveys := &services.SurveyService{DB: db, Locks: locks, Index: words, Notify: notifier}
	quotes := &services.QuoteService{DB: db}
	wellness := &services.WellnessService{DB: db, RiskWindowDays: cfg.RiskWindowDays}
	analyticsSvc := &analytics.Service{DB: db, LeaderboardPageSize: cfg.LeaderboardPageSize, RiskWindowDays: cfg.RiskWindowDays}

	// Maintenance scheduler
	if cfg.Scheduler.Enabled {
		sched := &scheduler.Scheduler{
			Wellness:           wellness,
			Quotes:             quotes,
			DB:                 db,
			Notify:             notifier,
			Log:                log.Logger,
			QuoteRetentionDays: cfg.Scheduler.QuoteRetentionDays,
		}
		if sched.Notify == nil {
			sched.Notify = services.NopNotifier()
		}
		sched.Start()
		defer sched.Stop()
	}

	// HTTP
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{
		DB:        db,
		Checkins:  checkins,
		Journals:  journals,
		Surveys:   surveys,
		Quotes:    quotes,
		Wellness:  wellness,
		Analytics: analyticsSvc,
		Words:     words,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
