package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripdesk/agency-api/docs"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/database"
	"github.com/tripdesk/agency-api/internal/document"
	"github.com/tripdesk/agency-api/internal/http/handler"
	"github.com/tripdesk/agency-api/internal/http/middleware"
	"github.com/tripdesk/agency-api/internal/http/router"
	"github.com/tripdesk/agency-api/internal/jobs"
	"github.com/tripdesk/agency-api/internal/logger"
	"github.com/tripdesk/agency-api/internal/realtime"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/storage"
	"go.uber.org/zap"
)

// @title TripDesk Agency API
// @version 1.0
// @description Travel agency backend: catalog, client trips, priced itineraries, sales follow-ups and operations hand-over
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tripdesk.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Basic configuration first, for logging
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.Documents.PublicBaseURL != "" && basicCfg.App.Environment != "development" {
		docs.SwaggerInfo.Host = trimScheme(basicCfg.Documents.PublicBaseURL)
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Development reads the environment; staging and production may use Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	broker, err := realtime.NewBroker(ctx, &cfg.Realtime, log)
	if err != nil {
		return fmt.Errorf("failed to initialize realtime broker: %w", err)
	}
	defer func() {
		if err := broker.Close(); err != nil {
			log.Warn("Error closing realtime broker", zap.Error(err))
		}
	}()
	log.Info("Realtime broker initialized", zap.String("mode", cfg.Realtime.Mode))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	clientRepo := repository.NewClientRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	documentRepo := repository.NewItineraryDocumentRepository(db)
	fixedRepo := repository.NewFixedItineraryRepository(db)
	salesClientRepo := repository.NewSalesClientRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	catalogRepos := service.NewCatalogRepositories(db)

	// Services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTLDuration())
	authService := service.NewAuthService(userRepo, resetRepo, tokens, cfg.Auth.PasswordResetTTLDuration(), log)
	userService := service.NewUserService(userRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	catalogService := service.NewCatalogService(db, catalogRepos, fileStorage, cfg.Storage.SnapshotPrefix, log)
	clientService := service.NewClientService(clientRepo, catalogRepos.Transportations, log)
	itineraryService := service.NewItineraryService(
		itineraryRepo,
		documentRepo,
		clientService,
		catalogService,
		fileStorage,
		document.NewItineraryPDF(cfg.Documents.CompanyName, cfg.Documents.PublicBaseURL),
		service.NewPricingSettings(&cfg.Pricing),
		cfg.Storage.DocumentPrefix,
		log,
	)
	fixedService := service.NewFixedItineraryService(fixedRepo, itineraryService, log)
	followUpService := service.NewFollowUpService(salesClientRepo, cfg.Jobs.Location(), log)
	assignmentService := service.NewAssignmentService(assignmentRepo, salesClientRepo, userRepo, itineraryService, catalogService, notificationService, log)
	chatService := service.NewChatService(chatRepo, assignmentRepo, broker, notificationService, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, userRepo, cfg.Auth.ApiKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, auditMiddleware, router.Handlers{
		Auth:           handler.NewAuthHandler(authService, log),
		Users:          handler.NewUserHandler(userService, log),
		Catalog:        handler.NewCatalogMounts(catalogService, log),
		Snapshots:      handler.NewSnapshotHandler(catalogService, log),
		Clients:        handler.NewClientHandler(clientService, log),
		Itineraries:    handler.NewItineraryHandler(itineraryService, log),
		FixedTemplates: handler.NewFixedItineraryHandler(fixedService, log),
		FollowUps:      handler.NewFollowUpHandler(followUpService, log),
		Assignments:    handler.NewAssignmentHandler(assignmentService, log),
		Chat:           handler.NewChatHandler(chatService, cfg.CORS.AllowedOrigins, log),
		Notifications:  handler.NewNotificationHandler(notificationService, log),
		Audit:          handler.NewAuditHandler(auditLogService, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(cfg.Jobs.Location(), log)
		timeout := cfg.Jobs.TimeoutDuration()
		reminders := jobs.NewFollowUpReminderJob(followUpService, notificationService, cfg.Jobs.Location(), timeout, log)
		snapshots := jobs.NewCatalogSnapshotJob(catalogService, timeout, log)
		purge := jobs.NewAuditPurgeJob(auditLogService, cfg.Jobs.AuditRetentionDays, timeout, log)

		for name, entry := range map[string]struct {
			expr string
			run  func()
		}{
			jobs.FollowUpReminderJobName: {cfg.Jobs.FollowUpReminderCron, reminders.Run},
			jobs.CatalogSnapshotJobName:  {cfg.Jobs.CatalogSnapshotCron, snapshots.Run},
			jobs.AuditPurgeJobName:       {cfg.Jobs.AuditPurgeCron, purge.Run},
		} {
			if err := scheduler.AddJob(name, entry.expr, entry.run); err != nil {
				log.Error("Failed to register job", zap.String("job_name", name), zap.Error(err))
			}
		}
		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown gracefully", zap.Error(err))
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped gracefully")
	return nil
}

func trimScheme(u string) string {
	for _, p := range []string{"https://", "http://"} {
		if len(u) > len(p) && u[:len(p)] == p {
			u = u[len(p):]
		}
	}
	for i := 0; i < len(u); i++ {
		if u[i] == '/' {
			return u[:i]
		}
	}
	return u
}
