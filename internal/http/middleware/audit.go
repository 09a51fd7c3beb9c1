package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths are path prefixes that are never audited
	SkipPaths []string
	// SkipMethods are HTTP methods that are never audited
	SkipMethods []string
	// AuditReads enables auditing of GET requests
	AuditReads bool
}

// DefaultAuditConfig skips health probes, docs and read requests
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths:   []string{"/health", "/swagger"},
		SkipMethods: []string{http.MethodOptions, http.MethodHead},
	}
}

// entityTypes maps route segments to the entity type recorded in the log.
// Later segments win, so /assignments/{id}/items audits as ChecklistItem.
var entityTypes = map[string]string{
	"auth":              "Auth",
	"users":             "User",
	"transportations":   "Transportation",
	"hotels":            "Hotel",
	"sightseeing":       "Sightseeing",
	"activities":        "Activity",
	"entry-tickets":     "EntryTicket",
	"meals":             "Meal",
	"snapshots":         "CatalogSnapshot",
	"clients":           "Client",
	"itineraries":       "Itinerary",
	"documents":         "ItineraryDocument",
	"fixed-itineraries": "FixedItinerary",
	"follow-ups":        "SalesClient",
	"assignments":       "PackageAssignment",
	"items":             "ChecklistItem",
	"chat":              "ChatMessage",
	"notifications":     "Notification",
}

// AuditMiddleware records successful mutations in the audit log
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit logs every successful mutation after the handler returns.
// Request bodies are not stored.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.auditService == nil || !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}
		action := methodToAction(r.Method, r.URL.Path)
		if action == "" {
			return
		}
		entityType, entityID := extractEntityInfo(r)
		entry := service.LogEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			StatusCode: rw.statusCode,
		}

		// The request context ends with the response; keep the user but
		// detach the deadline.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		go func() {
			defer cancel()
			if err := m.auditService.Log(ctx, r, entry); err != nil {
				m.logger.Warn("failed to create audit log entry",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.Error(err))
			}
		}()
	})
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	if slices.Contains(m.config.SkipMethods, r.Method) {
		return false
	}
	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}
	for _, skip := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skip) {
			return false
		}
	}
	return true
}

func methodToAction(method, path string) domain.AuditAction {
	switch {
	case strings.HasSuffix(path, "/auth/signin"):
		return domain.AuditActionLogin
	case strings.HasSuffix(path, "/auth/signout"):
		return domain.AuditActionLogout
	}
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	}
	return ""
}

// extractEntityInfo uses the chi route pattern so ids never leak into the
// entity type. The innermost id parameter wins.
func extractEntityInfo(r *http.Request) (string, *uuid.UUID) {
	path := r.URL.Path
	var entityID *uuid.UUID

	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			path = pattern
		}
		for _, key := range []string{"itemId", "documentId", "id"} {
			if id, err := uuid.Parse(routeCtx.URLParam(key)); err == nil {
				entityID = &id
				break
			}
		}
	}
	return parseEntityFromPath(path), entityID
}

func parseEntityFromPath(path string) string {
	entityType := "Unknown"
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if t, ok := entityTypes[part]; ok {
			entityType = t
		}
	}
	return entityType
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
