package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/docs"
	"github.com/saqrcrm/sales-api/internal/ai"
	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/board"
	"github.com/saqrcrm/sales-api/internal/config"
	"github.com/saqrcrm/sales-api/internal/database"
	"github.com/saqrcrm/sales-api/internal/http/handler"
	"github.com/saqrcrm/sales-api/internal/http/middleware"
	"github.com/saqrcrm/sales-api/internal/http/router"
	"github.com/saqrcrm/sales-api/internal/jobs"
	"github.com/saqrcrm/sales-api/internal/logger"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/uistate"
)

// @title Saqr Sales API
// @version 1.0
// @description Sales operations API covering leads, deals, projects, quoting and invoicing

// @contact.name API Support
// @contact.email support@saqrcrm.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
		zap.Bool("demo_mode", cfg.App.DemoMode),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	// Connect to database (in-memory with seed data in demo mode)
	var db *gorm.DB
	if cfg.App.DemoMode {
		db, err = database.NewDemoDatabase(cfg.Auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to set up demo database: %w", err)
		}
		log.Info("Demo database ready, all demo passwords are demo1234")
	} else {
		db, err = database.NewDatabase(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	// Connect to Redis for sessions and UI state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	sessionStore := auth.NewSessionStore(redisClient, cfg.Auth.SessionTTLDuration())
	resetTokens := auth.NewResetTokenIssuer(cfg.Auth.ResetTokenSecret, cfg.Auth.ResetTokenTTLDuration())
	uiStateStore := uistate.NewStore(redisClient, cfg.Auth.SessionTTLDuration())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	dealRepo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionStore, resetTokens, cfg.Auth.BcryptCost, log)
	userService := service.NewUserService(userRepo, groupRepo, cfg.Auth.BcryptCost, log)
	groupService := service.NewGroupService(groupRepo, userRepo, db, log)
	leadService := service.NewLeadService(leadRepo, accountRepo, dealRepo, userRepo, activityRepo, activityLogRepo, notificationRepo, db, log)
	accountService := service.NewAccountService(accountRepo, userRepo, log)
	dealService := service.NewDealService(dealRepo, accountRepo, projectRepo, userRepo, historyRepo, activityRepo, activityLogRepo, notificationRepo, db, log)
	projectService := service.NewProjectService(projectRepo, dealRepo, taskRepo, userRepo, activityLogRepo, notificationRepo, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, notificationRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, dealRepo, projectRepo, userRepo, sequenceRepo, activityLogRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, invoiceRepo, dealRepo, userRepo, sequenceRepo, activityLogRepo, db, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	activityLogService := service.NewActivityLogService(activityLogRepo, log)
	dashboardService := service.NewDashboardService(leadRepo, dealRepo, projectRepo, invoiceRepo, log)
	scheduleService := service.NewScheduleService(dealRepo, log)
	bootstrapService := service.NewBootstrapService(userRepo, groupRepo, leadRepo, accountRepo, dealRepo, projectRepo, invoiceRepo, quoteRepo, notificationRepo)

	// Build the kanban board from the open pipeline
	dealBoard := board.New()
	boardService := service.NewBoardService(dealBoard, dealRepo, userRepo, historyRepo, activityLogRepo, log)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelLoad()
	if err := boardService.Refresh(loadCtx); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	// Assistant is optional and only mounted when configured
	var assistant *ai.Assistant
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		assistant = ai.NewAssistant(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens, log)
		log.Info("Assistant enabled", zap.String("model", cfg.AI.Model))
	} else {
		log.Info("Assistant disabled")
	}
	assistantService := service.NewAssistantService(assistant, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(sessionStore, log, cfg.Auth.SessionCookieName, cfg.Auth.CSRFCookieName)
	scopeFilterMiddleware := middleware.NewScopeFilterMiddleware(log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, userService, cfg.Auth.SessionCookieName, cfg.Auth.CSRFCookieName, cfg.Auth.CookieSecure, cfg.Auth.SessionTTLDuration(), log)
	userHandler := handler.NewUserHandler(userService, log)
	groupHandler := handler.NewGroupHandler(groupService, log)
	leadHandler := handler.NewLeadHandler(leadService, log)
	accountHandler := handler.NewAccountHandler(accountService, log)
	dealHandler := handler.NewDealHandler(dealService, log)
	boardHandler := handler.NewBoardHandler(boardService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	activityLogHandler := handler.NewActivityLogHandler(activityLogService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, log)
	bootstrapHandler := handler.NewBootstrapHandler(bootstrapService, log)
	assistantHandler := handler.NewAssistantHandler(assistantService, log)
	uiStateHandler := handler.NewUIStateHandler(uiStateStore, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		scopeFilterMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		groupHandler,
		leadHandler,
		accountHandler,
		dealHandler,
		boardHandler,
		projectHandler,
		taskHandler,
		invoiceHandler,
		quoteHandler,
		notificationHandler,
		activityLogHandler,
		dashboardHandler,
		scheduleHandler,
		bootstrapHandler,
		assistantHandler,
		uiStateHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		staleLeadsJob := jobs.NewStaleLeadsJob(leadRepo, notificationRepo, log, 5*time.Minute)
		if err := scheduler.AddJob(jobs.StaleLeadsJobName, cfg.Jobs.StaleLeadCron, staleLeadsJob.Run); err != nil {
			return fmt.Errorf("failed to register stale leads job: %w", err)
		}

		overdueJob := jobs.NewOverdueInvoicesJob(invoiceRepo, log, 5*time.Minute)
		if err := scheduler.AddJob(jobs.OverdueInvoicesJobName, cfg.Jobs.OverdueInvoiceCron, overdueJob.Run); err != nil {
			return fmt.Errorf("failed to register overdue invoices job: %w", err)
		}

		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := redisClient.Close(); err != nil {
			log.Warn("Error closing redis connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
