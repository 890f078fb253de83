package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/mes-portal/internal/api/http"
	"github.com/spec-kit/mes-portal/internal/api/http/handlers"
	"github.com/spec-kit/mes-portal/internal/auth"
	"github.com/spec-kit/mes-portal/internal/config"
	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/modal"
	"github.com/spec-kit/mes-portal/internal/navigation"
	"github.com/spec-kit/mes-portal/internal/observability"
	"github.com/spec-kit/mes-portal/internal/persistence"
	"github.com/spec-kit/mes-portal/internal/repository"
	"github.com/spec-kit/mes-portal/internal/seed"
	"github.com/spec-kit/mes-portal/internal/service"
	"github.com/spec-kit/mes-portal/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, redis, cfg.Redis.EventsChannel, logger)

	store := repository.NewMemoryStore()
	todos := store.TodoView()
	history := repository.NewMemoryTicketHistoryRepository()
	if pool := pg.PoolHandle(); pool != nil {
		history = repository.NewTicketHistoryRepository(pool)
	}

	if cfg.Portal.SeedTodos {
		provider, err := seed.NewTodoProvider()
		if err != nil {
			logger.Fatal("failed to load seed todos", zap.Error(err))
		}
		if err := worker.SeedTodos(ctx, provider, todos, logger); err != nil {
			logger.Fatal("failed to seed todos", zap.Error(err))
		}
	}

	accounts, err := seed.Users()
	if err != nil {
		logger.Fatal("failed to load seed users", zap.Error(err))
	}
	authService, err := service.NewAuthService(cfg.Auth, accounts, logger)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		IDPrefix:    cfg.Portal.TicketIDPrefix,
	})
	todoService := service.NewTodoService(todos)
	dashboardService := service.NewDashboardService(todos)
	importService := service.NewImportService(todos, dispatcher, logger)

	menu, err := seed.Menu(cfg.Portal.MenuFile)
	if err != nil {
		logger.Fatal("failed to load menu", zap.Error(err))
	}
	nav := navigation.NewCoordinator(menu, seed.Pages(), logger)
	host := modal.NewHost(newViewRegistry(logger), logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Todos:          handlers.NewTodosHandler(todoService, host),
		Modal:          handlers.NewModalHandler(host, ticketService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Navigation:     handlers.NewNavigationHandler(nav),
		Imports:        handlers.NewImportsHandler(importService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// newViewRegistry registers the detail views todo items can open.
func newViewRegistry(logger *zap.Logger) *modal.Registry {
	registry := modal.NewRegistry(logger)
	registry.Register(domain.ComponentKeyTicketDetail, func() modal.Unit {
		return modal.Unit{Name: "AbnormalTicketDetail", Title: "异常处理单"}
	}, modal.Native)
	registry.Register(domain.ComponentKeyStandardImport, func() modal.Unit {
		return modal.Unit{Name: "StandardImport", Title: "标准导入"}
	}, modal.Wrapped)
	registry.Register("production-entry", func() modal.Unit {
		return modal.Unit{Name: "ProductionEntry", Title: "生产报工"}
	}, modal.Native)
	return registry
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
