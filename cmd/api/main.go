// @title Cold Chain Ledger API
// @version 1.0
// @description Ledger de custodia de lotes de vacunas con registro de temperaturas y detección de ruptura de cadena de frío.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eventsredis "cold-chain-ledger/internal/adapters/events/redis"
	"cold-chain-ledger/internal/adapters/participants/registry"
	pg "cold-chain-ledger/internal/adapters/storage/postgres"
	"cold-chain-ledger/internal/adapters/storage/sqlite"
	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"
	"cold-chain-ledger/internal/platform/config"
	"cold-chain-ledger/internal/platform/logger"
	"cold-chain-ledger/internal/platform/metrics"
	"cold-chain-ledger/internal/router"
	"cold-chain-ledger/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.App,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Store del ledger
	repo, db, err := openStore(ctx, cfg)
	if err != nil {
		fatal(log, "open store", err)
	}
	if db != nil {
		defer db.Close()
	}
	log.Info("ledger store ready", map[string]any{"driver": cfg.StoreDriver})

	// Directorio de participantes: registro externo si está configurado
	var dir participants.Directory
	if cfg.RegistryURL != "" {
		d, err := registry.NewDirectory(registry.Config{
			BaseURL: cfg.RegistryURL,
			APIKey:  cfg.RegistryAPIKey,
			Timeout: cfg.RegistryTimeout,
		})
		if err != nil {
			fatal(log, "participants registry", err)
		}
		dir = d
	}

	// Eventos + worker de alertas
	var pub lots.Publisher
	if cfg.RedisURL != "" {
		rdb, err := eventsredis.Open(ctx, cfg.RedisURL)
		if err != nil {
			fatal(log, "connect redis", err)
		}
		defer rdb.Close()

		p, err := eventsredis.NewPublisher(rdb, cfg.EventsQueue)
		if err != nil {
			fatal(log, "redis publisher", err)
		}
		pub = p

		if cfg.AlertWorkerEnabled {
			w := worker.NewAlertWorker(rdb, worker.Options{
				Queue:   p.Queue(),
				Logger:  log,
				Metrics: m,
			})
			go func() {
				if err := w.Run(ctx); err != nil {
					log.Error("alert worker stopped", map[string]any{"error": err.Error()})
				}
			}()
		}
	}

	r := router.NewRouter(router.Options{
		Lots:      repo,
		Directory: dir,
		Publisher: pub,
		Logger:    log,
		Registry:  reg,
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", nil)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", map[string]any{"error": err.Error()})
	}
	log.Info("server exited", nil)
}

// openStore devuelve el repositorio según STORE_DRIVER. db es nil para memory.
func openStore(ctx context.Context, cfg *config.Config) (lots.Repository, *sql.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory, "":
		// router usa memory cuando no recibe repo
		return nil, nil, nil
	case config.StorePostgres:
		if cfg.DBDSN == "" {
			return nil, nil, errors.New("DB_DSN is required for the postgres store")
		}
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg.NewLotsRepo(db), db, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewLotsRepo(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]any{"error": err.Error()})
	os.Exit(1)
}
