package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskmanager/internal/config"
	"github.com/geocoder89/taskmanager/internal/db"
	httpx "github.com/geocoder89/taskmanager/internal/http"
	"github.com/geocoder89/taskmanager/internal/http/handlers"
	"github.com/geocoder89/taskmanager/internal/http/middlewares"
	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/geocoder89/taskmanager/internal/redisclient"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/geocoder89/taskmanager/internal/repo/memory"
	"github.com/geocoder89/taskmanager/internal/repo/postgres"
	"github.com/geocoder89/taskmanager/internal/security"
	"github.com/geocoder89/taskmanager/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	ready := map[string]handlers.Pinger{}

	var store repo.Store

	switch cfg.Store {
	case "memory":
		mem := memory.NewStore()
		store = mem
		ready["db"] = mem
		log.Warn("using in-memory store, data is lost on restart")
	default:
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, log); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}

		pg := postgres.NewStore(pool, prom)
		store = pg
		ready["db"] = pg
	}

	var rateCounter middlewares.Counter

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pctx); err != nil {
			// the limiter fails open, keep serving
			log.Warn("redis not reachable at boot", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()

		rateCounter = rdb
		ready["redis"] = rdb
	}

	users := service.NewUserService(store, security.NewBcryptHasher(cfg.BcryptCost), log, prom)
	tasks := service.NewTaskService(store, log)

	created, err := db.EnsureSeedUser(ctx, users, cfg)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	if created {
		log.Info("seed user created", "email", cfg.SeedUserEmail)
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Cfg:         cfg,
		Log:         log,
		Users:       users,
		Tasks:       tasks,
		Prom:        prom,
		Gatherer:    reg,
		RateCounter: rateCounter,
		Ready:       ready,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	return nil
}
