package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/db"
	"github.com/Clark-Hu/gamestore-catalogue/internal/catalogue"
	"github.com/Clark-Hu/gamestore-catalogue/internal/config"
	httpserver "github.com/Clark-Hu/gamestore-catalogue/internal/http"
	"github.com/Clark-Hu/gamestore-catalogue/internal/logging"
	"github.com/Clark-Hu/gamestore-catalogue/internal/metrics"
	"github.com/Clark-Hu/gamestore-catalogue/internal/pkg/clock"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository/memory"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository/postgres"
	"github.com/Clark-Hu/gamestore-catalogue/internal/seed"
	"github.com/Clark-Hu/gamestore-catalogue/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, closeLog, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer closeLog()

	m := metrics.New()

	var (
		uows   repository.UnitOfWorkFactory
		health httpserver.HealthChecker
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("connect database")
		}
		defer st.Close()
		m.RegisterPoolStats(st.Stats)
		uows = postgres.NewUnitOfWorkFactory(st, logger)
		health = st
	default:
		logger.Warn("storage: using in-memory catalogue, data is lost on restart")
		mem := memory.NewStore()
		uows = mem
		health = mem
	}

	clk := clock.RealClock{}
	if cfg.SeedData {
		if _, err := seed.Run(ctx, uows, clk, logger); err != nil {
			logger.WithError(err).Fatal("seed catalogue")
		}
	}

	games := catalogue.NewService(uows, clk, logger)
	server := httpserver.New(cfg, games, health, m, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("graceful shutdown error")
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*store.Store, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := st.Migrate(dbCtx, db.Migrations, db.MigrationsGlob); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}
