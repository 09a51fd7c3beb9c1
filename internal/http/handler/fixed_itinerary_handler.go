package handler

import (
	"net/http"
	"strconv"

	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

type FixedItineraryHandler struct {
	fixedService *service.FixedItineraryService
	logger       *zap.Logger
}

func NewFixedItineraryHandler(fixedService *service.FixedItineraryService, logger *zap.Logger) *FixedItineraryHandler {
	return &FixedItineraryHandler{fixedService: fixedService, logger: logger}
}

// parseTemplateQuery reads the optional days and mode filters
func parseTemplateQuery(w http.ResponseWriter, r *http.Request) (*int, *domain.TransportationMode, bool) {
	var days *int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "days must be a positive integer")
			return nil, nil, false
		}
		days = &n
	}
	var mode *domain.TransportationMode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m := domain.TransportationMode(raw)
		if !m.IsValid() {
			respondWithError(w, http.StatusBadRequest, "mode must be one of cab, self-drive-car, self-drive-scooter")
			return nil, nil, false
		}
		mode = &m
	}
	return days, mode, true
}

// List godoc
// @Summary List fixed itinerary templates
// @Tags Fixed Itineraries
// @Produce json
// @Param days query int false "Filter by number of days"
// @Param mode query string false "Filter by transportation mode" Enums(cab, self-drive-car, self-drive-scooter)
// @Param activeOnly query bool false "Only active templates" default(false)
// @Success 200 {array} domain.FixedItineraryDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries [get]
func (h *FixedItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	days, mode, ok := parseTemplateQuery(w, r)
	if !ok {
		return
	}
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	items, err := h.fixedService.List(r.Context(), days, mode, activeOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itineraries")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Match godoc
// @Summary Find active templates for a trip
// @Description Active templates with exactly this many days and this transportation mode
// @Tags Fixed Itineraries
// @Produce json
// @Param days query int true "Number of days"
// @Param mode query string true "Transportation mode" Enums(cab, self-drive-car, self-drive-scooter)
// @Success 200 {array} domain.FixedItineraryDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries/match [get]
func (h *FixedItineraryHandler) Match(w http.ResponseWriter, r *http.Request) {
	days, mode, ok := parseTemplateQuery(w, r)
	if !ok {
		return
	}
	if days == nil || mode == nil {
		respondWithError(w, http.StatusBadRequest, "days and mode are required")
		return
	}
	items, err := h.fixedService.FindByDurationAndMode(r.Context(), *days, *mode)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itineraries")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Create godoc
// @Summary Create a template
// @Tags Fixed Itineraries
// @Accept json
// @Produce json
// @Param request body domain.FixedItineraryRequest true "Template"
// @Success 201 {object} domain.FixedItineraryDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries [post]
func (h *FixedItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.FixedItineraryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.fixedService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itinerary")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// GetByID godoc
// @Summary Get a template
// @Tags Fixed Itineraries
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Success 200 {object} domain.FixedItineraryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries/{id} [get]
func (h *FixedItineraryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "fixed itinerary")
	if !ok {
		return
	}
	item, err := h.fixedService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itinerary")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Update godoc
// @Summary Replace a template
// @Tags Fixed Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Param request body domain.FixedItineraryRequest true "Template"
// @Success 200 {object} domain.FixedItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries/{id} [put]
func (h *FixedItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "fixed itinerary")
	if !ok {
		return
	}
	var req domain.FixedItineraryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.fixedService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itinerary")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a template
// @Tags Fixed Itineraries
// @Param id path string true "Template ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries/{id} [delete]
func (h *FixedItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "fixed itinerary")
	if !ok {
		return
	}
	if err := h.fixedService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "fixed itinerary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply godoc
// @Summary Create an itinerary from a template
// @Description The client's trip must match the template's day count and mode. The template's base cost is used as is.
// @Tags Fixed Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Template ID" format(uuid)
// @Param request body domain.ApplyFixedItineraryRequest true "Client and pricing"
// @Success 201 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /fixed-itineraries/{id}/apply [post]
func (h *FixedItineraryHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "fixed itinerary")
	if !ok {
		return
	}
	var req domain.ApplyFixedItineraryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	it, err := h.fixedService.Apply(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "fixed itinerary")
		return
	}
	respondJSON(w, http.StatusCreated, it)
}
