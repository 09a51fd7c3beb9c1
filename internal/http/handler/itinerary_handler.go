package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

type ItineraryHandler struct {
	itineraryService *service.ItineraryService
	logger           *zap.Logger
}

func NewItineraryHandler(itineraryService *service.ItineraryService, logger *zap.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// List godoc
// @Summary List itineraries
// @Tags Itineraries
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param clientId query string false "Filter by client" format(uuid)
// @Param status query string false "Filter by status" Enums(draft, quoted, confirmed, cancelled)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, finalPrice)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ItineraryDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries [get]
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	clientID, ok := optionalUUIDQuery(w, r, "clientId")
	if !ok {
		return
	}
	filter := repository.ItineraryFilter{ClientID: clientID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ItineraryStatus(raw)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "status must be one of draft, quoted, confirmed, cancelled")
			return
		}
		filter.Status = &status
	}

	result, err := h.itineraryService.List(r.Context(), filter, page, pageSize, sortParams(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "itineraries")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create an itinerary
// @Description Prices the day plans against the catalog and stores version 1
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body domain.CreateItineraryRequest true "Itinerary"
// @Success 201 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries [post]
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateItineraryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	it, err := h.itineraryService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// GetByID godoc
// @Summary Get an itinerary with its change log
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {object} domain.ItineraryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id} [get]
func (h *ItineraryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	it, err := h.itineraryService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Update godoc
// @Summary Update day plans or trip options
// @Description Recomputes the cost, bumps the version and appends one change entry atomically
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.UpdateItineraryRequest true "Changes"
// @Success 200 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id} [put]
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	var req domain.UpdateItineraryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	it, err := h.itineraryService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// UpdatePricing godoc
// @Summary Update profit margin and display currency
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.UpdateItineraryPricingRequest true "Pricing"
// @Success 200 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/pricing [put]
func (h *ItineraryHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	var req domain.UpdateItineraryPricingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	it, err := h.itineraryService.UpdatePricing(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// UpdateStatus godoc
// @Summary Change the itinerary status
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.UpdateItineraryStatusRequest true "Status"
// @Success 200 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/status [put]
func (h *ItineraryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	var req domain.UpdateItineraryStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	it, err := h.itineraryService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Recalculate godoc
// @Summary Reprice against the current catalog
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {object} domain.ItineraryDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/recalculate [post]
func (h *ItineraryHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	it, err := h.itineraryService.Recalculate(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Delete godoc
// @Summary Delete an itinerary
// @Tags Itineraries
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id} [delete]
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	if err := h.itineraryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListChanges godoc
// @Summary Get the change log
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {array} domain.ItineraryChangeDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/changes [get]
func (h *ItineraryHandler) ListChanges(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	changes, err := h.itineraryService.ListChanges(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, changes)
}

// Quote godoc
// @Summary Get the price quote
// @Description Final price in the base currency plus a display conversion when a secondary currency is set
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/quote [get]
func (h *ItineraryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	quote, err := h.itineraryService.Quote(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// GenerateDocument godoc
// @Summary Render the quote PDF
// @Description Renders the current version and stores it; the itinerary version is not changed
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 201 {object} domain.ItineraryDocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/documents [post]
func (h *ItineraryHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	doc, err := h.itineraryService.GenerateDocument(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary document")
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// ListDocuments godoc
// @Summary List generated documents
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {array} domain.ItineraryDocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/documents [get]
func (h *ItineraryHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	docs, err := h.itineraryService.ListDocuments(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// DownloadDocument godoc
// @Summary Download a generated document
// @Tags Itineraries
// @Produce application/pdf
// @Param id path string true "Itinerary ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /itineraries/{id}/documents/{documentId} [get]
func (h *ItineraryHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "itinerary")
	if !ok {
		return
	}
	documentID, ok := uuidParam(w, r, "documentId", "document")
	if !ok {
		return
	}

	body, doc, err := h.itineraryService.OpenDocument(r.Context(), id, documentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "itinerary document")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if doc.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("document download interrupted",
			zap.String("documentId", documentID.String()),
			zap.Error(err))
	}
}
