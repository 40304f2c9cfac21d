// cmd/portal-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finportal/internal/cache"
	"finportal/internal/common/auth"
	awsx "finportal/internal/common/aws"
	"finportal/internal/common/camunda"
	"finportal/internal/common/config"
	"finportal/internal/common/database"
	"finportal/internal/common/logger"
	"finportal/internal/common/observability"
	"finportal/internal/content/materials"
	"finportal/internal/content/news"
	"finportal/internal/content/newsletter"
	"finportal/internal/content/partners"
	"finportal/internal/content/reports"
	"finportal/internal/gate"
	"finportal/internal/leads"
	"finportal/internal/server"
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
	bootLog := logger.New("info", "console", "stdout")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLog.Info("Starting portal server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New("portal-server")
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx := context.Background()
	checks := map[string]server.Check{}

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
	checks["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis list cache ---
	var listCache *cache.ListCache
	if cfg.Cache.Enabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = rdb.Ping(ctx)
		}
		if err != nil {
			zapLog.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			listCache = cache.New(rdb.Client, time.Duration(cfg.Cache.TTL)*time.Second, cfg.Cache.KeyPrefix, log)
			checks["redis"] = rdb.Ping
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Repositories ---
	newsRepo := news.NewRepository(pg.DB, log)
	newsletterRepo := newsletter.NewRepository(pg.DB, log)
	materialsRepo := materials.NewRepository(pg.DB, log)
	reportsRepo := reports.NewRepository(pg.DB, log)
	partnersRepo := partners.NewRepository(pg.DB, log)
	leadRepo := leads.NewRepository(pg.DB, log)

	// --- Elasticsearch report index ---
	var indexer reports.Indexer
	if cfg.Database.Elasticsearch.GetURL() != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = es.EnsureIndex(ctx, cfg.Database.Elasticsearch.ReportsIndex, reports.IndexMapping)
		}
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, report search uses postgres", zap.Error(err))
		} else {
			searchIndex := reports.NewSearchIndex(es.Client, cfg.Database.Elasticsearch.ReportsIndex, log)
			indexer = searchIndex
			checks["elasticsearch"] = es.Ping
			go func() {
				n, err := reports.Reindex(context.Background(), reportsRepo, searchIndex, log)
				if err != nil {
					zapLog.Warn("report reindex incomplete", zap.Int("indexed", n), zap.Error(err))
					return
				}
				zapLog.Info("Reports indexed", zap.Int("count", n))
			}()
		}
	}

	// --- Lead dispatch ---
	dispatcher, closeDispatch := newDispatcher(ctx, cfg, checks, log, zapLog)
	defer closeDispatch()

	// --- Auth ---
	keycloak := auth.NewKeycloakClient(cfg.Auth.Keycloak, nil)
	verifier, err := auth.NewVerifier(cfg.Auth.Keycloak, keycloak)
	if err != nil {
		zapLog.Fatal("token verifier init failed", zap.Error(err))
	}

	routeGate := gate.New(gate.Options{
		Verifier:      verifier,
		SessionCookie: cfg.Auth.SessionCookie,
		SignInPath:    cfg.Auth.SignInPath,
		AdminRole:     cfg.Auth.Keycloak.AdminRole,
		Logger:        log,
	})
	sessions := gate.NewSessionHandler(gate.SessionOptions{
		Provider:      keycloak,
		SessionCookie: cfg.Auth.SessionCookie,
		CookieDomain:  cfg.Server.CookieDomain,
		CookieSecure:  cfg.Server.CookieSecure,
		Logger:        log,
	})

	// --- Router ---
	router := server.NewRouter(server.Deps{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gate:           routeGate,
		Sessions:       sessions,
		Checks:         checks,
		Logger:         log,
		API: []server.Registrar{
			news.NewHandler(newsRepo, listCache, log),
			newsletter.NewHandler(newsletterRepo, listCache, log),
			materials.NewHandler(materialsRepo, listCache, log),
			reports.NewHandler(reportsRepo, indexer, listCache, log),
			partners.NewHandler(partnersRepo, log),
			leads.NewHandler(leads.Options{
				Leads:         leadRepo,
				Partners:      partnersRepo,
				Dispatcher:    dispatcher,
				Observability: obs,
				MaxUpload:     int64(cfg.Server.MaxUploadMB) << 20,
				Logger:        log,
			}),
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("Portal server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("portal server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping portal server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Portal server stopped gracefully")
}

// newDispatcher picks how accepted leads reach the operations team: the
// lead-capture workflow when Zeebe is enabled, a direct SES email when it is
// not, and a log line when neither is configured.
func newDispatcher(ctx context.Context, cfg *config.Config, checks map[string]server.Check, log logger.Logger, zapLog *zap.Logger) (leads.Dispatcher, func()) {
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err := retryWithBackoff(func() error {
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
		checks["camunda"] = zeebe.HealthCheck
		zapLog.Info("Leads dispatched through workflow", zap.String("processId", cfg.Camunda.LeadProcessID))
		return leads.NewWorkflowDispatcher(zeebe, cfg.Camunda.LeadProcessID, log), func() {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}
	}

	if cfg.Integrations.AWS.SES.Enabled && cfg.Notifications.Email.Enabled {
		from := cfg.Notifications.Email.FromEmail
		if from == "" {
			from = cfg.Integrations.AWS.SES.FromEmail
		}
		ses, err := awsx.NewSESClient(ctx, cfg.Integrations.AWS.Region, from)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		zapLog.Info("Leads dispatched by email", zap.String("inbox", cfg.Notifications.OpsInbox))
		return leads.NewMailDispatcher(ses, cfg.Notifications.OpsInbox, log), func() {}
	}

	zapLog.Warn("No lead dispatch configured, leads are only stored")
	return leads.NewLogDispatcher(log), func() {}
}
