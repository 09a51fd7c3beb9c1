package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/database"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/http/handler"
	"github.com/tripdesk/agency-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/tripdesk/agency-api/docs" // Import generated swagger docs
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Catalog        []handler.CatalogMount
	Snapshots      *handler.SnapshotHandler
	Clients        *handler.ClientHandler
	Itineraries    *handler.ItineraryHandler
	FixedTemplates *handler.FixedItineraryHandler
	FollowUps      *handler.FollowUpHandler
	Assignments    *handler.AssignmentHandler
	Chat           *handler.ChatHandler
	Notifications  *handler.NotificationHandler
	Audit          *handler.AuditHandler
}

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	auditMiddleware *middleware.AuditMiddleware
	h               Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		auditMiddleware: auditMiddleware,
		h:               handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database readiness with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		writeHealth(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		status := http.StatusOK
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}
		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		writeHealth(w, status, map[string]interface{}{"status": overall, "checks": checks})
	})

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/auth/shell", rt.h.Auth.Shell)
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitCredentials)
			r.Use(rt.auditMiddleware.Audit)
			r.Post("/auth/signup", rt.h.Auth.SignUp)
			r.Post("/auth/signin", rt.h.Auth.SignIn)
			r.Post("/auth/password-reset", rt.h.Auth.RequestPasswordReset)
			r.Post("/auth/password-reset/confirm", rt.h.Auth.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)
			r.Use(rt.auditMiddleware.Audit)

			r.Get("/auth/me", rt.h.Auth.Me)
			r.Post("/auth/signout", rt.h.Auth.SignOut)

			r.Route("/users", func(r chi.Router) {
				r.With(rt.authMiddleware.RequirePermission(domain.PermissionAssignmentsCreate)).
					Get("/operations", rt.h.Users.ListOperations)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionUsersManage))
					r.Get("/", rt.h.Users.List)
					r.Post("/", rt.h.Users.Create)
					r.Put("/{id}/role", rt.h.Users.UpdateRole)
				})
			})

			r.Route("/catalog", func(r chi.Router) {
				for _, m := range rt.h.Catalog {
					r.Route(m.Path, func(r chi.Router) {
						m.Handler.Mount(
							r.With(rt.authMiddleware.RequirePermission(domain.PermissionCatalogRead)),
							r.With(rt.authMiddleware.RequirePermission(domain.PermissionCatalogWrite)),
						)
					})
				}

				r.With(rt.authMiddleware.RequirePermission(domain.PermissionCatalogRead)).
					Get("/snapshot", rt.h.Snapshots.Download)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionSnapshotsManage))
					r.Get("/snapshots", rt.h.Snapshots.List)
					r.Post("/snapshots", rt.h.Snapshots.Export)
					r.Post("/snapshots/restore", rt.h.Snapshots.Restore)
					r.Post("/snapshots/import", rt.h.Snapshots.Import)
				})
			})

			r.Route("/clients", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionClientsRead))
					r.Get("/", rt.h.Clients.List)
					r.Get("/{id}", rt.h.Clients.GetByID)
				})
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionClientsWrite))
					r.Post("/", rt.h.Clients.Create)
					r.Put("/{id}", rt.h.Clients.Update)
					r.Delete("/{id}", rt.h.Clients.Delete)
				})
			})

			r.Route("/itineraries", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionItinerariesRead))
					r.Get("/", rt.h.Itineraries.List)
					r.Get("/{id}", rt.h.Itineraries.GetByID)
					r.Get("/{id}/changes", rt.h.Itineraries.ListChanges)
					r.Get("/{id}/quote", rt.h.Itineraries.Quote)
					r.Get("/{id}/documents", rt.h.Itineraries.ListDocuments)
					r.Get("/{id}/documents/{documentId}", rt.h.Itineraries.DownloadDocument)
				})
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionItinerariesWrite))
					r.Post("/", rt.h.Itineraries.Create)
					r.Put("/{id}", rt.h.Itineraries.Update)
					r.Put("/{id}/status", rt.h.Itineraries.UpdateStatus)
					r.Post("/{id}/recalculate", rt.h.Itineraries.Recalculate)
					r.Post("/{id}/documents", rt.h.Itineraries.GenerateDocument)
					r.Delete("/{id}", rt.h.Itineraries.Delete)
				})
				r.With(rt.authMiddleware.RequirePermission(domain.PermissionItinerariesPrice)).
					Put("/{id}/pricing", rt.h.Itineraries.UpdatePricing)
			})

			r.Route("/fixed-itineraries", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionFixedItinerariesRead))
					r.Get("/", rt.h.FixedTemplates.List)
					r.Get("/match", rt.h.FixedTemplates.Match)
					r.Get("/{id}", rt.h.FixedTemplates.GetByID)
				})
				r.With(rt.authMiddleware.RequirePermission(domain.PermissionItinerariesWrite)).
					Post("/{id}/apply", rt.h.FixedTemplates.Apply)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionFixedItinerariesEdit))
					r.Post("/", rt.h.FixedTemplates.Create)
					r.Put("/{id}", rt.h.FixedTemplates.Update)
					r.Delete("/{id}", rt.h.FixedTemplates.Delete)
				})
			})

			r.Route("/follow-ups", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionFollowUpsRead))
					r.Get("/", rt.h.FollowUps.List)
					r.Get("/today", rt.h.FollowUps.Today)
					r.Get("/statuses", rt.h.FollowUps.Statuses)
					r.Get("/{id}", rt.h.FollowUps.GetByID)
					r.Get("/{id}/history", rt.h.FollowUps.History)
				})
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionFollowUpsWrite))
					r.Post("/", rt.h.FollowUps.Create)
					r.Put("/{id}", rt.h.FollowUps.Update)
					r.Put("/{id}/status", rt.h.FollowUps.UpdateStatus)
					r.Delete("/{id}", rt.h.FollowUps.Delete)
				})
			})

			r.Route("/assignments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionAssignmentsRead))
					r.Get("/", rt.h.Assignments.List)
					r.Get("/{id}", rt.h.Assignments.GetByID)
					r.Get("/{id}/completion", rt.h.Assignments.Completion)
				})
				r.With(rt.authMiddleware.RequirePermission(domain.PermissionAssignmentsCreate)).
					Post("/", rt.h.Assignments.Create)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionAssignmentsWrite))
					r.Put("/{id}/status", rt.h.Assignments.UpdateStatus)
					r.Post("/{id}/items", rt.h.Assignments.AddItem)
					r.Put("/{id}/items/{itemId}", rt.h.Assignments.UpdateItem)
					r.Post("/{id}/items/{itemId}/toggle", rt.h.Assignments.ToggleItem)
					r.Delete("/{id}/items/{itemId}", rt.h.Assignments.DeleteItem)
				})
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequirePermission(domain.PermissionChatUse))
					r.Get("/{id}/chat", rt.h.Chat.List)
					r.Post("/{id}/chat", rt.h.Chat.Send)
					r.Get("/{id}/chat/unread", rt.h.Chat.UnreadCount)
					r.Put("/{id}/chat/read", rt.h.Chat.MarkRead)
					r.Get("/{id}/chat/stream", rt.h.Chat.Stream)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.h.Notifications.List)
				r.Get("/count", rt.h.Notifications.GetUnreadCount)
				r.Put("/read-all", rt.h.Notifications.MarkAllAsRead)
				r.Put("/{id}/read", rt.h.Notifications.MarkAsRead)
			})

			r.With(rt.authMiddleware.RequirePermission(domain.PermissionAuditRead)).
				Get("/audit", rt.h.Audit.List)
		})
	})

	return r
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
