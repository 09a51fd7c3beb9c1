package handler

import (
	"net/http"
	"time"

	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by user ID" format(uuid)
// @Param action query string false "Filter by action type" Enums(create, update, delete, login, logout)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID" format(uuid)
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	q := r.URL.Query()

	filter := &repository.AuditLogFilter{EntityType: q.Get("entityType")}

	var ok bool
	if filter.UserID, ok = optionalUUIDQuery(w, r, "userId"); !ok {
		return
	}
	if filter.EntityID, ok = optionalUUIDQuery(w, r, "entityId"); !ok {
		return
	}

	if raw := q.Get("action"); raw != "" {
		action := domain.AuditAction(raw)
		switch action {
		case domain.AuditActionCreate, domain.AuditActionUpdate, domain.AuditActionDelete,
			domain.AuditActionLogin, domain.AuditActionLogout:
			filter.Action = &action
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid action filter")
			return
		}
	}

	if filter.StartTime, ok = optionalTimeQuery(w, r, "startTime"); !ok {
		return
	}
	if filter.EndTime, ok = optionalTimeQuery(w, r, "endTime"); !ok {
		return
	}

	result, err := h.auditService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "audit logs")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func optionalTimeQuery(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, name+" must be an RFC3339 timestamp")
		return nil, false
	}
	return &t, true
}
