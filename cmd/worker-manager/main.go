// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsx "finportal/internal/common/aws"
	"finportal/internal/common/camunda"
	"finportal/internal/common/config"
	"finportal/internal/common/database"
	"finportal/internal/common/logger"
	"finportal/internal/common/observability"
	"finportal/internal/common/zoho"
	"finportal/internal/leads"
	"finportal/pkg/registry"

	pcs "finportal/internal/workers/crm/partner-crm-sync"
	les "finportal/internal/workers/leads/lead-email-send"
	lss "finportal/internal/workers/leads/lead-sms-send"
	lsu "finportal/internal/workers/leads/lead-status-update"
)

const healthAddr = ":8081"

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
	bootLog := logger.New("info", "console", "stdout")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	if path := cfg.Camunda.ProcessFile; path != "" {
		key, err := zeebe.DeployResource(ctx, path)
		if err != nil {
			zapLog.Fatal("process deployment failed", zap.String("file", path), zap.Error(err))
		}
		zapLog.Info("Process deployed", zap.String("file", path), zap.Int64("deploymentKey", key))
	}

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := database.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	leadRepo := leads.NewRepository(pg.DB, log)

	// --- External clients ---
	var sesClient *awsx.SESClient
	if cfg.Integrations.AWS.SES.Enabled && cfg.Notifications.Email.Enabled {
		sesClient, err = awsx.NewSESClient(ctx, cfg.Integrations.AWS.Region, fromEmail(cfg))
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
	}

	var smsSender lss.SMSSender
	if cfg.Integrations.AWS.SNS.Enabled && cfg.Notifications.SMS.Enabled {
		snsClient, err := awsx.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = snsClient
	}

	crm := zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken, nil)

	zapLog.Info("All external service clients initialized",
		zap.Bool("ses", sesClient != nil),
		zap.Bool("sns", smsSender != nil),
	)

	// --- Workers ---
	group := camunda.NewWorkerGroup(zeebe.GetClient(), log)

	if sesClient != nil {
		handler, err := les.NewHandler(les.HandlerOptions{
			AppConfig:     cfg,
			Leads:         leadRepo,
			Sender:        sesClient,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			zapLog.Fatal("failed to create lead-email-send handler", zap.Error(err))
		}
		group.Start(les.TaskType, config.GetWorkerConfig(cfg, les.TaskType), handler.Handle)
	} else {
		zapLog.Warn("SES disabled, lead-email-send not started")
	}

	if handler, err := lss.NewHandler(lss.HandlerOptions{
		AppConfig:     cfg,
		Sender:        smsSender,
		Observability: obs,
		Logger:        log,
	}); err != nil {
		zapLog.Fatal("failed to create lead-sms-send handler", zap.Error(err))
	} else {
		group.Start(lss.TaskType, config.GetWorkerConfig(cfg, lss.TaskType), handler.Handle)
	}

	if cfg.Integrations.Zoho.AuthToken != "" {
		handler, err := pcs.NewHandler(pcs.HandlerOptions{
			AppConfig:     cfg,
			Leads:         leadRepo,
			CRM:           crm,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			zapLog.Fatal("failed to create partner-crm-sync handler", zap.Error(err))
		}
		group.Start(pcs.TaskType, config.GetWorkerConfig(cfg, pcs.TaskType), handler.Handle)
	} else {
		zapLog.Warn("Zoho token missing, partner-crm-sync not started")
	}

	if handler, err := lsu.NewHandler(lsu.HandlerOptions{
		AppConfig:     cfg,
		Leads:         leadRepo,
		Observability: obs,
		Logger:        log,
	}); err != nil {
		zapLog.Fatal("failed to create lead-status-update handler", zap.Error(err))
	} else {
		group.Start(lsu.TaskType, config.GetWorkerConfig(cfg, lsu.TaskType), handler.Handle)
	}

	running := group.TaskTypes()
	zapLog.Info("Workers registered", zap.Strings("taskTypes", running))
	checkRegistry(running, zapLog)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"workers": running,
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "zeebe": "ok"}
		status := http.StatusOK
		if err := pg.Ping(checkCtx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{
			"status": http.StatusText(status),
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", healthAddr))
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	group.Close()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func fromEmail(cfg *config.Config) string {
	if cfg.Notifications.Email.FromEmail != "" {
		return cfg.Notifications.Email.FromEmail
	}
	return cfg.Integrations.AWS.SES.FromEmail
}

// checkRegistry warns when the opened workers drift from the activity
// registry the workflow is modelled against.
func checkRegistry(running []string, log *zap.Logger) {
	reg, err := registry.LoadRegistry(registry.DefaultPath)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", registry.DefaultPath), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", zap.Error(err))
		return
	}

	unserved, unregistered := reg.Reconcile(running)
	if len(unserved) > 0 {
		log.Warn("registered activities without a worker", zap.Strings("taskTypes", unserved))
	}
	if len(unregistered) > 0 {
		log.Warn("workers missing from activity registry", zap.Strings("taskTypes", unregistered))
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
