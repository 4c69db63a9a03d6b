// Command server wires the masterfile service: stores, conflict-resolution
// writer, evidence ingestion, audit relay, and the HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"masterfile/internal/audit"
	auditHandler "masterfile/internal/audit/handler"
	"masterfile/internal/evidence"
	"masterfile/internal/evidence/adapters"
	"masterfile/internal/evidence/cache"
	evidenceHandler "masterfile/internal/evidence/handler"
	evidenceMetrics "masterfile/internal/evidence/metrics"
	"masterfile/internal/normalize"
	"masterfile/internal/platform/config"
	"masterfile/internal/platform/httpserver"
	"masterfile/internal/platform/logger"
	"masterfile/internal/platform/middleware"
	redisclient "masterfile/internal/platform/redis"
	"masterfile/internal/reconcile"
	reconcileHandler "masterfile/internal/reconcile/handler"
	reconcileMetrics "masterfile/internal/reconcile/metrics"
	"masterfile/internal/record"
	httptransport "masterfile/internal/transport/http"
	"masterfile/internal/validate"
	validateHandler "masterfile/internal/validate/handler"
	id "masterfile/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores. Postgres when a DSN is configured, in-memory otherwise so the
	// service runs standalone in development.
	var (
		records       record.Store
		trail         audit.Store
		evidenceStore evidence.Store
		outbox        *audit.PostgresStore
		txRunner      reconcile.TxRunner = reconcile.NoopTxRunner{}
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		pgTrail := audit.NewPostgresStore(db)
		records = record.NewPostgresStore(db)
		trail = pgTrail
		outbox = pgTrail
		evidenceStore = evidence.NewPostgresStore(db)
		txRunner = reconcile.NewPostgresTxRunner(db)
		log.Info("using postgres stores")
	} else {
		records = record.NewMemoryStore()
		trail = audit.NewMemoryStore()
		evidenceStore = evidence.NewMemoryStore()
		log.Info("using in-memory stores")
	}

	reconcileSvc, err := reconcile.New(records, trail, txRunner,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(reconcileMetrics.New()),
	)
	if err != nil {
		return err
	}

	evidenceOpts := []evidence.Option{
		evidence.WithLogger(log),
		evidence.WithMetrics(evidenceMetrics.New()),
		evidence.WithFetcher(id.SourcePrimaryRegistry,
			adapters.NewGLEIFFetcher(cfg.GLEIFBaseURL, nil)),
	}
	if cfg.CompaniesHouseAPIKey != "" {
		evidenceOpts = append(evidenceOpts, evidence.WithFetcher(id.SourceSecondaryRegistry,
			adapters.NewCompaniesHouseFetcher(cfg.CompaniesHouseBaseURL, cfg.CompaniesHouseAPIKey, nil)))
	}

	rdb, err := redisclient.New(cfg.RedisConfig())
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		evidenceOpts = append(evidenceOpts,
			evidence.WithPayloadCache(cache.New(rdb.Client, cfg.PayloadCacheTTL)))
		log.Info("payload cache enabled")
	}

	evidenceSvc, err := evidence.New(evidenceStore, normalize.NewRegistry(), reconcileSvc, evidenceOpts...)
	if err != nil {
		return err
	}

	validateSvc, err := validate.New(records, validate.WithLogger(log))
	if err != nil {
		return err
	}

	// Audit relay: drain the transactional outbox to Kafka.
	if len(cfg.KafkaBrokers) > 0 && outbox != nil {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			return err
		}
		defer kafkaClient.Close()
		if err := audit.EnsureTopic(ctx, kadm.NewClient(kafkaClient), cfg.AuditTopic); err != nil {
			return err
		}
		relay, err := audit.NewRelay(outbox, kafkaClient, cfg.AuditTopic, audit.WithRelayLogger(log))
		if err != nil {
			return err
		}
		go func() { _ = relay.Run(ctx) }()
		log.Info("audit relay started", "topic", cfg.AuditTopic)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Reconcile: reconcileHandler.New(reconcileSvc, log),
		Evidence:  evidenceHandler.New(evidenceSvc, log),
		Audit:     auditHandler.New(trail, log),
		Validate:  validateHandler.New(validateSvc, log),
	}, middleware.NewActorResolver(cfg.JWTVerificationKey), log)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("masterfile listening", "addr", cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
