package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"caseworks/internal/budget"
	budgetmetrics "caseworks/internal/budget/metrics"
	budgetservice "caseworks/internal/budget/service"
	budgetstore "caseworks/internal/budget/store"
	"caseworks/internal/directory"
	directorycache "caseworks/internal/directory/cache"
	directorystore "caseworks/internal/directory/store"
	"caseworks/internal/platform/config"
	"caseworks/internal/platform/httpserver"
	"caseworks/internal/platform/logger"
	"caseworks/internal/platform/metrics"
	"caseworks/internal/platform/postgres"
	platformredis "caseworks/internal/platform/redis"
	"caseworks/internal/platform/token"
	"caseworks/internal/stay"
	staymetrics "caseworks/internal/stay/metrics"
	stayservice "caseworks/internal/stay/service"
	staystore "caseworks/internal/stay/store"
	"caseworks/internal/timesession"
	sessionmetrics "caseworks/internal/timesession/metrics"
	sessionservice "caseworks/internal/timesession/service"
	sessionstore "caseworks/internal/timesession/store"
	httptransport "caseworks/internal/transport/http"
	"caseworks/pkg/platform/audit"
	auditpg "caseworks/pkg/platform/audit/store/postgres"
	auditworker "caseworks/pkg/platform/audit/worker"
)

// main wires dependencies and owns the process lifecycle. Business rules live
// in the internal module services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	httpMetrics := metrics.New()

	auditPublisher := audit.NewChannelPublisher(256, log)
	auditStore := auditpg.New(db)
	worker := auditworker.New(auditStore, auditPublisher.Inbox(), log)

	var dir directory.Directory = directorystore.NewPostgres(db)
	if redisClient != nil {
		dir = directorycache.NewRedis(dir, redisClient.Client, cfg.DirectoryCacheTTL, log)
	}

	stayService, err := stay.NewService(staystore.NewPostgres(db), dir,
		stayservice.WithLogger(log),
		stayservice.WithAuditPublisher(auditPublisher),
		stayservice.WithMetrics(staymetrics.New()),
	)
	if err != nil {
		log.Error("stay service init failed", "error", err)
		os.Exit(1)
	}

	budgetService, err := budget.NewService(budgetstore.NewPostgres(db),
		budgetservice.WithLogger(log),
		budgetservice.WithAuditPublisher(auditPublisher),
		budgetservice.WithMetrics(budgetmetrics.New()),
	)
	if err != nil {
		log.Error("budget service init failed", "error", err)
		os.Exit(1)
	}

	sessionService, err := timesession.NewService(sessionstore.NewPostgres(db), dir,
		sessionservice.WithLogger(log),
		sessionservice.WithAuditPublisher(auditPublisher),
		sessionservice.WithMetrics(sessionmetrics.New()),
		sessionservice.WithStaleAfter(cfg.SessionStaleAfter),
		sessionservice.WithStrictEnd(cfg.SessionStrictEnd),
	)
	if err != nil {
		log.Error("session service init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        httpMetrics,
		TokenValidator: token.NewValidator(cfg.JWTSigningKey),
		Stays:          stay.NewHandler(stayService, log),
		Budgets:        budget.NewHandler(budgetService, log),
		Sessions:       timesession.NewHandler(sessionService, log),
		DB:             db,
		Redis:          redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		log.Info("starting caseworks", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
