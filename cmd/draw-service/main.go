package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kelbrookafc/clubdraw/internal/api"
	"github.com/kelbrookafc/clubdraw/internal/api/handlers"
	"github.com/kelbrookafc/clubdraw/internal/api/middleware"
	"github.com/kelbrookafc/clubdraw/internal/cache"
	"github.com/kelbrookafc/clubdraw/internal/config"
	"github.com/kelbrookafc/clubdraw/internal/notify"
	"github.com/kelbrookafc/clubdraw/internal/random"
	"github.com/kelbrookafc/clubdraw/internal/repository"
	"github.com/kelbrookafc/clubdraw/internal/scheduler"
	"github.com/kelbrookafc/clubdraw/internal/service"
	"github.com/kelbrookafc/clubdraw/pkg/db"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	dbCfg := db.LoadPostgresConfig()

	conn, err := db.NewPostgresConnection(dbCfg)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer conn.Close()

	if err := db.RunMigrations(dbCfg, cfg.MigrationsDir); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	// repositories
	drawRepo := repository.NewDrawRepo(conn)
	entryRepo := repository.NewEntryRepo(conn)
	winnerRepo := repository.NewWinnerRepo(conn)
	subscriberRepo := repository.NewSubscriberRepo(conn)

	// external collaborators
	randomClient := random.NewClient(cfg.RandomAPIURL, cfg.RandomAPIKey)
	mailer := notify.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	dispatcher := notify.NewDispatcher(mailer, subscriberRepo, cfg.AdminEmail, cfg.SendInterval, log)

	// draw lifecycle
	engine := service.NewSettlementEngine(cfg.LuckyDipWinners, nil)
	orchestrator := service.NewOrchestrator(drawRepo, entryRepo, winnerRepo, randomClient, dispatcher, engine, service.Options{
		LuckyDipAmount: cfg.LuckyDipAmount,
		GuardCooldown:  cfg.GuardCooldown,
		Logger:         log,
	})

	drawCache := cache.NewDrawCache(time.Minute)

	// scheduled monthly draw; the server is the authoritative trigger
	sched := scheduler.New(orchestrator, drawCache, cfg.ScheduledJackpot, log)
	if err := sched.Start(cfg.DrawSchedule); err != nil {
		log.WithError(err).Fatal("start scheduler")
	}
	defer sched.Stop()

	// HTTP surface
	handler := handlers.NewDrawHandler(orchestrator, dispatcher, drawRepo, entryRepo, winnerRepo, drawCache, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Mount("/", api.NewRouter(handler))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("starting draw-service")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("listen")
	}

	<-idleConnsClosed
	log.Info("server stopped")
}
