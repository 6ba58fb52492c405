// Command server runs the fleet decision engine: fact ingestion, fact-set
// derivation, policy resolution, rollout previews and operator visibility
// behind one HTTP surface.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"muster/internal/audit"
	"muster/internal/facts"
	factshandler "muster/internal/facts/handler"
	"muster/internal/factset"
	factsethandler "muster/internal/factset/handler"
	httpapi "muster/internal/http"
	"muster/internal/platform/config"
	"muster/internal/platform/httpserver"
	"muster/internal/platform/logger"
	platmetrics "muster/internal/platform/metrics"
	platredis "muster/internal/platform/redis"
	"muster/internal/policy"
	policyhandler "muster/internal/policy/handler"
	policymetrics "muster/internal/policy/metrics"
	"muster/internal/rollout"
	rollouthandler "muster/internal/rollout/handler"
	"muster/internal/scope"
	scopehandler "muster/internal/scope/handler"
	"muster/internal/storage"
	"muster/pkg/platform/middleware/auth"
	"muster/pkg/platform/middleware/machineauth"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		factStore    facts.Store
		setStore     factset.Store
		policyStore  policy.Catalog
		rolloutStore rollout.Catalog
		scopeStore   scope.Catalog
		population   interface {
			Machines(context.Context) ([]facts.Machine, error)
		}
	)
	if cfg.DatabaseURL != "" {
		pg, err := storage.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		factStore, setStore, policyStore, rolloutStore, scopeStore = pg, pg, pg, pg, pg
		population = pg
		log.Info("using postgres storage")
	} else {
		mem := facts.NewMemoryStore()
		factStore = mem
		setStore = factset.NewMemoryStore()
		policyStore = policy.NewMemoryCatalog()
		rolloutStore = rollout.NewMemoryCatalog()
		scopeStore = scope.NewMemoryCatalog()
		population = mem
		log.Warn("no MUSTER_DATABASE_URL set, using in-memory stores")
	}

	// Audit pipeline: kafka when brokers are configured, else the logger.
	var sink audit.Publisher = audit.LogSink{Logger: log}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafka.Close(shutdownCtx)
		}()
		sink = kafka
		log.Info("audit events go to kafka", "topic", cfg.KafkaTopic)
	}
	auditor := audit.NewWorker(sink, 256)
	go func() {
		if err := auditor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	metrics := platmetrics.New()

	redisClient, err := platredis.New(cfg.RedisURL, cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Services.
	factService, err := facts.NewService(factStore, facts.WithLogger(log))
	if err != nil {
		log.Error("facts service", "error", err)
		os.Exit(1)
	}
	deriver, err := factset.NewResolver(setStore, factStore, factset.WithLogger(log))
	if err != nil {
		log.Error("factset resolver", "error", err)
		os.Exit(1)
	}
	policyService, err := policy.NewService(policyStore, factStore, deriver,
		policy.WithLogger(log),
		policy.WithMetrics(policymetrics.New()),
		policy.WithAuditPublisher(auditor),
	)
	if err != nil {
		log.Error("policy service", "error", err)
		os.Exit(1)
	}
	var timelineCache *rollout.Cache
	if redisClient != nil {
		timelineCache = rollout.NewCache(redisClient.Client, cfg.RolloutCacheTTL, log)
	}
	rolloutService, err := rollout.NewService(rolloutStore, population,
		rollout.WithLogger(log),
		rollout.WithCache(timelineCache),
		rollout.WithMetrics(metrics),
	)
	if err != nil {
		log.Error("rollout service", "error", err)
		os.Exit(1)
	}
	scopeResolver, err := scope.NewResolver(scopeStore, population,
		scope.WithLogger(log),
		scope.WithMetrics(metrics),
		scope.WithAuditPublisher(auditor),
		scope.WithActiveStatuses(cfg.ActiveStatuses),
	)
	if err != nil {
		log.Error("scope resolver", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Auth:        auth.New(cfg.JWTSigningKey),
		MachineAuth: machineauth.New(cfg.MachineTokenHash),
		Client: []httpapi.Registrar{
			factshandler.New(factService, log, metrics),
			policyhandler.New(policyService, log),
		},
		Operator: []httpapi.Registrar{
			factsethandler.New(deriver, log),
			rollouthandler.New(rolloutService, log),
			scopehandler.New(scopeResolver, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
