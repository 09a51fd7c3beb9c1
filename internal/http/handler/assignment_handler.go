package handler

import (
	"net/http"

	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

// AssignmentHandler serves package hand-overs from sales to operations and
// their booking checklists.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

func NewAssignmentHandler(assignmentService *service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, logger: logger}
}

// List godoc
// @Summary List assignments
// @Description Sales see what they assigned, operations see what they were assigned, admins see all
// @Tags Assignments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending, in-progress, completed)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AssignmentDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	var filter repository.AssignmentFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.AssignmentStatus(raw)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "status must be one of pending, in-progress, completed")
			return
		}
		filter.Status = &status
	}

	result, err := h.assignmentService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignments")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Assign a lead to operations
// @Description Optionally generates the booking checklist from the linked itinerary
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} domain.AssignmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	assignment, err := h.assignmentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

// GetByID godoc
// @Summary Get an assignment with its checklist
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Success 200 {object} domain.AssignmentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	assignment, err := h.assignmentService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, assignment)
}

// UpdateStatus godoc
// @Summary Change the assignment status
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Param request body domain.UpdateAssignmentStatusRequest true "Status"
// @Success 200 {object} domain.AssignmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/status [put]
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	var req domain.UpdateAssignmentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	assignment, err := h.assignmentService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, assignment)
}

// Completion godoc
// @Summary Checklist completion
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Success 200 {object} domain.CompletionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/completion [get]
func (h *AssignmentHandler) Completion(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	completion, err := h.assignmentService.Completion(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, completion)
}

// AddItem godoc
// @Summary Add a checklist item
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Param request body domain.AddChecklistItemRequest true "Item"
// @Success 201 {object} domain.ChecklistItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/items [post]
func (h *AssignmentHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	var req domain.AddChecklistItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.assignmentService.AddItem(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "checklist item")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// ToggleItem godoc
// @Summary Toggle a checklist item
// @Description Flips completion and stamps who completed it and when
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Param itemId path string true "Checklist item ID" format(uuid)
// @Success 200 {object} domain.ChecklistItemDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/items/{itemId}/toggle [post]
func (h *AssignmentHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemId", "checklist item")
	if !ok {
		return
	}
	item, err := h.assignmentService.ToggleComplete(r.Context(), id, itemID)
	if err != nil {
		respondServiceError(w, h.logger, err, "checklist item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Edit booking details of a checklist item
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Param itemId path string true "Checklist item ID" format(uuid)
// @Param request body domain.UpdateChecklistDetailsRequest true "Details"
// @Success 200 {object} domain.ChecklistItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/items/{itemId} [put]
func (h *AssignmentHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemId", "checklist item")
	if !ok {
		return
	}
	var req domain.UpdateChecklistDetailsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.assignmentService.UpdateItemDetails(r.Context(), id, itemID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "checklist item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Remove a checklist item
// @Tags Assignments
// @Param id path string true "Assignment ID" format(uuid)
// @Param itemId path string true "Checklist item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/items/{itemId} [delete]
func (h *AssignmentHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	itemID, ok := uuidParam(w, r, "itemId", "checklist item")
	if !ok {
		return
	}
	if err := h.assignmentService.DeleteItem(r.Context(), id, itemID); err != nil {
		respondServiceError(w, h.logger, err, "checklist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
