package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fixdesk/maintenance-service/internal/access"
	httptransport "github.com/fixdesk/maintenance-service/internal/api/http"
	"github.com/fixdesk/maintenance-service/internal/api/http/handlers"
	"github.com/fixdesk/maintenance-service/internal/auth"
	"github.com/fixdesk/maintenance-service/internal/config"
	"github.com/fixdesk/maintenance-service/internal/events"
	"github.com/fixdesk/maintenance-service/internal/observability"
	"github.com/fixdesk/maintenance-service/internal/persistence"
	"github.com/fixdesk/maintenance-service/internal/repository"
	"github.com/fixdesk/maintenance-service/internal/service"
	"github.com/fixdesk/maintenance-service/internal/worker"
	"github.com/fixdesk/maintenance-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		mongo.Close(closeCtx)
	}()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := mongo.Database
	ticketRepo := repository.NewTicketRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	subAdminRepo := repository.NewSubAdminRepository(db)
	technicianRepo := repository.NewTechnicianRepository(db)

	guard := access.NewGuard(access.Policy{
		EmptyAssignmentGrantsAll: cfg.Access.EmptyAssignmentGrantsAll,
	})
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	engine := workflow.NewEngine(workflow.Dependencies{
		TicketRepo:   ticketRepo,
		VendorRepo:   vendorRepo,
		LocationRepo: locationRepo,
		SubAdminRepo: subAdminRepo,
		Guard:        guard,
		Dispatcher:   dispatcher,
	})

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		SubAdminRepo: subAdminRepo,
		VendorRepo:   vendorRepo,
	})
	directoryService := service.NewDirectoryService(*cfg, service.DirectoryDependencies{
		OrgRepo:        orgRepo,
		LocationRepo:   locationRepo,
		VendorRepo:     vendorRepo,
		SubAdminRepo:   subAdminRepo,
		TechnicianRepo: technicianRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if cfg.Escalation.Enabled {
		escalation := worker.NewEscalationWorker(engine, ticketRepo, redis.Client, logger, cfg.Escalation)
		go escalation.Run(ctx)
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(engine),
		Admin:          handlers.NewAdminHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
