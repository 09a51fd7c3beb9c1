package handler

import (
	"net/http"

	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

// FollowUpHandler serves the sales pipeline: leads, their follow-up status
// and the history of status changes.
type FollowUpHandler struct {
	followUpService *service.FollowUpService
	logger          *zap.Logger
}

func NewFollowUpHandler(followUpService *service.FollowUpService, logger *zap.Logger) *FollowUpHandler {
	return &FollowUpHandler{followUpService: followUpService, logger: logger}
}

// List godoc
// @Summary List sales leads
// @Tags Follow-ups
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by follow-up status"
// @Param search query string false "Search by name, email or destination"
// @Param sortBy query string false "Sort field" Enums(name, nextFollowUpDate, createdAt, updatedAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SalesClientDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups [get]
func (h *FollowUpHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	filter := repository.SalesClientFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.FollowUpStatus(raw)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid follow-up status")
			return
		}
		filter.Status = &status
	}

	result, err := h.followUpService.List(r.Context(), filter, page, pageSize, sortParams(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-ups")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Today godoc
// @Summary Leads due for a follow-up today
// @Description Leads whose next follow-up date is today in the agency timezone, ordered by time
// @Tags Follow-ups
// @Produce json
// @Success 200 {array} domain.SalesClientDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/today [get]
func (h *FollowUpHandler) Today(w http.ResponseWriter, r *http.Request) {
	items, err := h.followUpService.TodaysFollowUps(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-ups")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Statuses godoc
// @Summary List follow-up statuses
// @Tags Follow-ups
// @Produce json
// @Success 200 {array} domain.FollowUpStatusDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/statuses [get]
func (h *FollowUpHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.followUpService.ListStatuses())
}

// Create godoc
// @Summary Create a sales lead
// @Tags Follow-ups
// @Accept json
// @Produce json
// @Param request body domain.SalesClientRequest true "Lead"
// @Success 201 {object} domain.SalesClientDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups [post]
func (h *FollowUpHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SalesClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lead, err := h.followUpService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}

// GetByID godoc
// @Summary Get a sales lead
// @Tags Follow-ups
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Success 200 {object} domain.SalesClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id} [get]
func (h *FollowUpHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "follow-up")
	if !ok {
		return
	}
	lead, err := h.followUpService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Update godoc
// @Summary Update a sales lead
// @Description Edits contact and trip details. The status is changed through the status endpoint.
// @Tags Follow-ups
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.SalesClientRequest true "Lead"
// @Success 200 {object} domain.SalesClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id} [put]
func (h *FollowUpHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "follow-up")
	if !ok {
		return
	}
	var req domain.SalesClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lead, err := h.followUpService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// UpdateStatus godoc
// @Summary Record a follow-up outcome
// @Description Changes the status, appends a history entry and reschedules or clears the next follow-up
// @Tags Follow-ups
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.UpdateFollowUpStatusRequest true "Outcome"
// @Success 200 {object} domain.SalesClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id}/status [put]
func (h *FollowUpHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "follow-up")
	if !ok {
		return
	}
	var req domain.UpdateFollowUpStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lead, err := h.followUpService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// History godoc
// @Summary Status history of a lead
// @Tags Follow-ups
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Success 200 {array} domain.FollowUpHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id}/history [get]
func (h *FollowUpHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "follow-up")
	if !ok {
		return
	}
	history, err := h.followUpService.ListHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Delete godoc
// @Summary Delete a sales lead
// @Tags Follow-ups
// @Param id path string true "Lead ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id} [delete]
func (h *FollowUpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "follow-up")
	if !ok {
		return
	}
	if err := h.followUpService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "follow-up")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
