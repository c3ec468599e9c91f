package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/config"
	"github.com/saqrcrm/sales-api/internal/database"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/http/handler"
	"github.com/saqrcrm/sales-api/internal/http/middleware"
	"github.com/saqrcrm/sales-api/internal/metrics"

	_ "github.com/saqrcrm/sales-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                   *config.Config
	logger                *zap.Logger
	db                    *gorm.DB
	authMiddleware        *auth.Middleware
	scopeFilterMiddleware *middleware.ScopeFilterMiddleware
	rateLimiter           *middleware.RateLimiter
	authHandler           *handler.AuthHandler
	userHandler           *handler.UserHandler
	groupHandler          *handler.GroupHandler
	leadHandler           *handler.LeadHandler
	accountHandler        *handler.AccountHandler
	dealHandler           *handler.DealHandler
	boardHandler          *handler.BoardHandler
	projectHandler        *handler.ProjectHandler
	taskHandler           *handler.TaskHandler
	invoiceHandler        *handler.InvoiceHandler
	quoteHandler          *handler.QuoteHandler
	notificationHandler   *handler.NotificationHandler
	activityLogHandler    *handler.ActivityLogHandler
	dashboardHandler      *handler.DashboardHandler
	scheduleHandler       *handler.ScheduleHandler
	bootstrapHandler      *handler.BootstrapHandler
	assistantHandler      *handler.AssistantHandler
	uiStateHandler        *handler.UIStateHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	scopeFilterMiddleware *middleware.ScopeFilterMiddleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	groupHandler *handler.GroupHandler,
	leadHandler *handler.LeadHandler,
	accountHandler *handler.AccountHandler,
	dealHandler *handler.DealHandler,
	boardHandler *handler.BoardHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	invoiceHandler *handler.InvoiceHandler,
	quoteHandler *handler.QuoteHandler,
	notificationHandler *handler.NotificationHandler,
	activityLogHandler *handler.ActivityLogHandler,
	dashboardHandler *handler.DashboardHandler,
	scheduleHandler *handler.ScheduleHandler,
	bootstrapHandler *handler.BootstrapHandler,
	assistantHandler *handler.AssistantHandler,
	uiStateHandler *handler.UIStateHandler,
) *Router {
	return &Router{
		cfg:                   cfg,
		logger:                logger,
		db:                    db,
		authMiddleware:        authMiddleware,
		scopeFilterMiddleware: scopeFilterMiddleware,
		rateLimiter:           rateLimiter,
		authHandler:           authHandler,
		userHandler:           userHandler,
		groupHandler:          groupHandler,
		leadHandler:           leadHandler,
		accountHandler:        accountHandler,
		dealHandler:           dealHandler,
		boardHandler:          boardHandler,
		projectHandler:        projectHandler,
		taskHandler:           taskHandler,
		invoiceHandler:        invoiceHandler,
		quoteHandler:          quoteHandler,
		notificationHandler:   notificationHandler,
		activityLogHandler:    activityLogHandler,
		dashboardHandler:      dashboardHandler,
		scheduleHandler:       scheduleHandler,
		bootstrapHandler:      bootstrapHandler,
		assistantHandler:      assistantHandler,
		uiStateHandler:        uiStateHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Prometheus metrics
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/forgot-password", rt.authHandler.ForgotPassword)
		r.Post("/auth/reset-password", rt.authHandler.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireSession)
			r.Use(rt.authMiddleware.CSRF)
			r.Use(rt.scopeFilterMiddleware.Filter)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Post("/auth/logout", rt.authHandler.Logout)
			r.Get("/auth/me", rt.authHandler.Me)

			// Bootstrap
			r.Get("/bootstrap", rt.bootstrapHandler.Load)

			// Users and groups (admin only for mutations)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Get("/{id}", rt.userHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin))
					r.Post("/", rt.userHandler.Create)
					r.Put("/{id}", rt.userHandler.Update)
					r.Delete("/{id}", rt.userHandler.Delete)
				})
			})
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", rt.groupHandler.List)
				r.Get("/{id}", rt.groupHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin))
					r.Post("/", rt.groupHandler.Create)
					r.Put("/{id}", rt.groupHandler.Update)
					r.Delete("/{id}", rt.groupHandler.Delete)
				})
			})

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Get("/{id}", rt.leadHandler.GetByID)
				r.Put("/{id}", rt.leadHandler.Update)
				r.Delete("/{id}", rt.leadHandler.Delete)
				r.Put("/{id}/status", rt.leadHandler.UpdateStatus)
				r.Post("/{id}/convert", rt.leadHandler.Convert)
				r.Post("/{id}/activities", rt.leadHandler.AddActivity)
			})

			// Accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", rt.accountHandler.List)
				r.Post("/", rt.accountHandler.Create)
				r.Get("/{id}", rt.accountHandler.GetByID)
				r.Put("/{id}", rt.accountHandler.Update)
				r.Delete("/{id}", rt.accountHandler.Delete)
			})

			// Deals
			r.Route("/deals", func(r chi.Router) {
				r.Get("/", rt.dealHandler.List)
				r.Post("/", rt.dealHandler.Create)
				r.Get("/{id}", rt.dealHandler.GetByID)
				r.Put("/{id}", rt.dealHandler.Update)
				r.Delete("/{id}", rt.dealHandler.Delete)
				r.Put("/{id}/stage", rt.dealHandler.UpdateStage)
				r.Post("/{id}/win", rt.dealHandler.Win)
				r.Post("/{id}/lose", rt.dealHandler.Lose)
				r.Post("/{id}/meeting", rt.dealHandler.ScheduleMeeting)
				r.Get("/{id}/history", rt.dealHandler.GetStageHistory)
				r.Post("/{id}/activities", rt.dealHandler.AddActivity)
			})

			// Kanban board
			r.Get("/board", rt.boardHandler.View)
			r.Post("/board/cards/{id}/move", rt.boardHandler.Move)

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Delete("/{id}", rt.projectHandler.Delete)
				r.Put("/{id}/status", rt.projectHandler.UpdateStatus)
				r.Post("/{id}/follow-up", rt.projectHandler.CreateFollowUpTask)
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.List)
				r.Post("/", rt.taskHandler.Create)
				r.Get("/{id}", rt.taskHandler.GetByID)
				r.Put("/{id}", rt.taskHandler.Update)
				r.Delete("/{id}", rt.taskHandler.Delete)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Put("/{id}", rt.invoiceHandler.Update)
				r.Delete("/{id}", rt.invoiceHandler.Delete)
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Delete("/{id}", rt.quoteHandler.Delete)
				r.Put("/{id}/status", rt.quoteHandler.UpdateStatus)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Post("/read-all", rt.notificationHandler.MarkAllRead)
				r.Post("/{id}/read", rt.notificationHandler.MarkRead)
			})

			// Activity log (admin only)
			r.Route("/activity-log", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/", rt.activityLogHandler.List)
				r.Get("/users/{id}", rt.activityLogHandler.ListByUser)
			})

			// Dashboard & schedule
			r.With(rt.authMiddleware.RequireRead(domain.ResourceDashboard)).
				Get("/dashboard/stats", rt.dashboardHandler.Stats)
			r.Get("/schedule/slots", rt.scheduleHandler.Slots)
			r.Get("/schedule/meetings", rt.scheduleHandler.Meetings)

			// Assistant
			r.Route("/assistant", func(r chi.Router) {
				r.Post("/summarize", rt.assistantHandler.Summarize)
				r.Post("/draft-email", rt.assistantHandler.DraftEmail)
				r.Post("/chat", rt.assistantHandler.Chat)
			})

			// Session UI state
			r.Route("/ui-state", func(r chi.Router) {
				r.Get("/", rt.uiStateHandler.Get)
				r.Put("/", rt.uiStateHandler.Save)
				r.Delete("/", rt.uiStateHandler.Clear)
				r.Put("/navigation", rt.uiStateHandler.SetNavigation)
				r.Post("/navigation", rt.uiStateHandler.ConsumeNavigation)
			})
		})
	})

	return r
}
