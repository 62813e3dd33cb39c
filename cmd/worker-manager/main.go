// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"loan-form-workers/internal/common/aws"
	"loan-form-workers/internal/common/camunda"
	"loan-form-workers/internal/common/config"
	"loan-form-workers/internal/common/database"
	"loan-form-workers/internal/common/logger"
	"loan-form-workers/internal/common/observability"
	"loan-form-workers/internal/formfill/filler"
	"loan-form-workers/internal/formfill/formlock"
	"loan-form-workers/internal/formfill/formstore"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/notify"
	"loan-form-workers/internal/formfill/report"
	"loan-form-workers/pkg/registry"

	gaf "loan-form-workers/internal/workers/application/generate-application-form"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = observability.NewTracerProvider(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			zapLog.Fatal("tracer provider failed", zap.Error(err))
		}
		defer func() {
			if err := observability.ShutdownTracer(tp); err != nil {
				zapLog.Error("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres connection failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis connection failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	// Reports are best effort, so an unreachable cluster only disables them.
	var reports gaf.ReportIndexer
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := esClient.Ping(); err != nil {
			return err
		}
		return esClient.EnsureReportIndex(ctx, cfg.Forms.ReportIndex)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, generation reports disabled", zap.Error(err))
	} else {
		reports = report.NewIndexer(esClient.Client, cfg.Forms.ReportIndex)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Notifications ---
	var events gaf.EventPublisher
	var alerts gaf.DriftAlerter
	if cfg.Notifications.SNS.Enabled || cfg.Notifications.SES.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		if cfg.Notifications.SNS.Enabled {
			events = notify.NewPublisher(aws.NewSNSClient(awsCfg), cfg.Notifications.SNS.TopicARN)
		}
		if cfg.Notifications.SES.Enabled && len(cfg.Notifications.SES.DriftRecipients) > 0 {
			alerts = notify.NewDriftAlerter(aws.NewSESClient(awsCfg), cfg.Notifications.SES.FromEmail, cfg.Notifications.SES.DriftRecipients)
		}
	}

	// --- Template registry ---
	reg, err := registry.LoadRegistry(afero.NewOsFs(), cfg.Forms.RegistryPath)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err), zap.String("path", cfg.Forms.RegistryPath))
	}
	if cfg.Forms.DefaultTemplate != "" {
		reg.DefaultTemplate = cfg.Forms.DefaultTemplate
	}
	if err := reg.Validate(func(v string) bool { _, ok := layout.Lookup(v); return ok }); err != nil {
		zapLog.Fatal("template registry invalid", zap.Error(err))
	}
	zapLog.Info("Template registry loaded",
		zap.Int("templates", len(reg.Templates)),
		zap.String("default", reg.DefaultTemplate),
	)

	// --- Workers ---
	handler := gaf.NewHandler(
		gaf.LoadConfig(cfg.Forms, config.GetWorkerConfig(cfg, gaf.TaskType)),
		gaf.Dependencies{
			Registry:  reg,
			Filler:    filler.New(filler.WithLogger(log)),
			Records:   formstore.NewApplicationStore(pg.DB),
			Documents: formstore.NewDocumentStore(pg.DB, log),
			Locker:    formlock.NewLocker(rdb.Client),
			Reports:   reports,
			Events:    events,
			Alerts:    alerts,
			Metrics:   obs,
		},
		log,
	)

	var workers []worker.JobWorker
	if jw := camunda.StartWorker(zeebe.GetClient(), gaf.TaskType, config.GetWorkerConfig(cfg, gaf.TaskType), handler.Handle, zapLog); jw != nil {
		workers = append(workers, jw)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		rctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(rctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", err)
			return
		}
		if err := pg.Ping(rctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
