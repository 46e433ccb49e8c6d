// Command stockpilot runs the inventory agent server: the alert pipeline,
// the planner, the action queue lifecycle engine, and the audit trail
// behind an HTTP and WebSocket API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/api"
	"github.com/stockpilotai/stockpilot/internal/audit"
	"github.com/stockpilotai/stockpilot/internal/config"
	"github.com/stockpilotai/stockpilot/internal/db"
	"github.com/stockpilotai/stockpilot/internal/db/migrations"
	"github.com/stockpilotai/stockpilot/internal/dbpool"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/llm"
	"github.com/stockpilotai/stockpilot/internal/rules"
	"github.com/stockpilotai/stockpilot/internal/store"
	"github.com/stockpilotai/stockpilot/internal/ws"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		auditStore   domain.AuditStore
		historyStore domain.HistoryStore
		pool         *dbpool.Pool
	)

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		var err error
		pool, err = dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			return err
		}

		auditStore = store.NewAuditPostgres(pool, log)
		historyStore = store.NewHistoryPostgres(pool, log)

	default:
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return err
		}
		auditStore = store.NewAuditFile(filepath.Join(cfg.DataDir, store.AuditFileName))
		historyStore = store.NewHistoryFile(filepath.Join(cfg.DataDir, store.HistoryFileName))
	}

	worker := audit.NewWorker(auditStore, log, cfg.AuditQueueSize)
	auditLog := audit.NewLog(auditStore, worker, log)
	auditLog.LoadFromStore(ctx)

	executor := agent.NewExecutor(auditLog, nil, log)
	filter := agent.NewEligibilityFilter(historyStore, log)

	operatorRules, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return err
	}

	var proposer domain.Proposer
	if cfg.PlannerEnabled() {
		proposer = llm.NewProposer(cfg.OpenAIKey.Value(), cfg.PlannerModel, log)
		log.WithField("model", cfg.PlannerModel).Info("LLM proposer enabled")
	} else {
		log.Info("no OpenAI key configured, planning uses the deterministic fallback")
	}
	planner := agent.NewPlanner(proposer, auditLog, log)

	hub := ws.NewHub(log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:              log,
		Pool:             pool,
		Hub:              hub,
		Actions:          executor,
		Planner:          planner,
		Audit:            auditLog,
		Filter:           filter,
		Rules:            operatorRules,
		CORSOrigins:      cfg.CORSOrigins,
		Version:          version,
		RestaurantID:     cfg.RestaurantID,
		AutopilotEnabled: cfg.AutopilotEnabled,
		PlannerEnabled:   cfg.PlannerEnabled(),
		ClassifierOutput: cfg.ClassifierOutputPath,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"backend": cfg.StorageBackend,
			"version": version,
		}).Info("stockpilot server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
