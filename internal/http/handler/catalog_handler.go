package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

// CatalogKindHandler serves CRUD for one catalog kind. The same handler
// type backs every /catalog/{kind} route.
type CatalogKindHandler[T repository.CatalogEntity, R any, D any] struct {
	kind   *service.CatalogKind[T, R, D]
	logger *zap.Logger
}

func NewCatalogKindHandler[T repository.CatalogEntity, R any, D any](kind *service.CatalogKind[T, R, D], logger *zap.Logger) *CatalogKindHandler[T, R, D] {
	return &CatalogKindHandler[T, R, D]{kind: kind, logger: logger}
}

// Mount registers the read routes on read and the write routes on write.
// The two routers usually differ only in their permission middleware.
func (h *CatalogKindHandler[T, R, D]) Mount(read, write chi.Router) {
	read.Get("/", h.List)
	read.Get("/{id}", h.Get)
	write.Post("/", h.Create)
	write.Put("/{id}", h.Update)
	write.Delete("/{id}", h.Delete)
}

// List godoc
// @Summary List catalog entries
// @Tags Catalog
// @Produce json
// @Param kind path string true "Catalog kind" Enums(transportations, hotels, sightseeing, activities, entry-tickets, meals)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Filter by name"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/{kind} [get]
func (h *CatalogKindHandler[T, R, D]) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	result, err := h.kind.List(r.Context(), page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, h.kind.Name())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get godoc
// @Summary Get a catalog entry
// @Tags Catalog
// @Produce json
// @Param kind path string true "Catalog kind" Enums(transportations, hotels, sightseeing, activities, entry-tickets, meals)
// @Param id path string true "Entry ID" format(uuid)
// @Success 200 {object} object
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/{kind}/{id} [get]
func (h *CatalogKindHandler[T, R, D]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.kind.Name())
	if !ok {
		return
	}
	entry, err := h.kind.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, h.kind.Name())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Create godoc
// @Summary Create a catalog entry
// @Description Cab transportation always costs zero per day; vehicle costs come from sightseeing entries.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param kind path string true "Catalog kind" Enums(transportations, hotels, sightseeing, activities, entry-tickets, meals)
// @Success 201 {object} object
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/{kind} [post]
func (h *CatalogKindHandler[T, R, D]) Create(w http.ResponseWriter, r *http.Request) {
	var req R
	if !decodeAndValidate(w, r, &req) {
		return
	}
	entry, err := h.kind.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, h.kind.Name())
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// Update godoc
// @Summary Replace a catalog entry
// @Description Nested room types and activity options keep their IDs when the request carries them.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param kind path string true "Catalog kind" Enums(transportations, hotels, sightseeing, activities, entry-tickets, meals)
// @Param id path string true "Entry ID" format(uuid)
// @Success 200 {object} object
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/{kind}/{id} [put]
func (h *CatalogKindHandler[T, R, D]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.kind.Name())
	if !ok {
		return
	}
	var req R
	if !decodeAndValidate(w, r, &req) {
		return
	}
	entry, err := h.kind.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, h.kind.Name())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete a catalog entry
// @Description Day plans that still reference the entry price it at zero.
// @Tags Catalog
// @Param kind path string true "Catalog kind" Enums(transportations, hotels, sightseeing, activities, entry-tickets, meals)
// @Param id path string true "Entry ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/{kind}/{id} [delete]
func (h *CatalogKindHandler[T, R, D]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.kind.Name())
	if !ok {
		return
	}
	if err := h.kind.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, h.kind.Name())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SnapshotHandler exports and restores the whole catalog as one JSON document
type SnapshotHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewSnapshotHandler(catalog *service.CatalogService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{catalog: catalog, logger: logger}
}

// Download godoc
// @Summary Download the current catalog
// @Description Builds the appData document from the live catalog without storing it
// @Tags Snapshots
// @Produce json
// @Success 200 {object} domain.CatalogSnapshot
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/snapshot [get]
func (h *SnapshotHandler) Download(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.BuildSnapshot(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog snapshot")
		return
	}
	name := fmt.Sprintf("appdata-%s.json", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	respondJSON(w, http.StatusOK, snap)
}

// List godoc
// @Summary List stored snapshots
// @Tags Snapshots
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/snapshots [get]
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.catalog.ListSnapshots(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog snapshots")
		return
	}
	respondJSON(w, http.StatusOK, keys)
}

// Export godoc
// @Summary Store a snapshot of the catalog
// @Description Writes a timestamped snapshot and replaces the latest one
// @Tags Snapshots
// @Produce json
// @Success 201 {object} domain.SnapshotResultDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/snapshots [post]
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.ExportSnapshot(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog snapshot")
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Restore godoc
// @Summary Restore the catalog from a stored snapshot
// @Description Replaces the whole catalog. Without a key the latest snapshot is used.
// @Tags Snapshots
// @Produce json
// @Param key query string false "Snapshot key from the list endpoint"
// @Success 200 {object} domain.SnapshotResultDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/snapshots/restore [post]
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.LoadSnapshot(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog snapshot")
		return
	}
	h.importSnapshot(w, r, snap)
}

// Import godoc
// @Summary Import an uploaded catalog document
// @Description Replaces the whole catalog with the posted appData document
// @Tags Snapshots
// @Accept json
// @Produce json
// @Param request body domain.CatalogSnapshot true "Catalog document"
// @Success 200 {object} domain.SnapshotResultDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/snapshots/import [post]
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap domain.CatalogSnapshot
	if !decodeAndValidate(w, r, &snap) {
		return
	}
	h.importSnapshot(w, r, &snap)
}

func (h *SnapshotHandler) importSnapshot(w http.ResponseWriter, r *http.Request, snap *domain.CatalogSnapshot) {
	result, err := h.catalog.ImportSnapshot(r.Context(), snap)
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog snapshot")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CatalogMount pairs a catalog kind handler with its route segment
type CatalogMount struct {
	Path    string
	Handler interface {
		Mount(read, write chi.Router)
	}
}

// NewCatalogMounts builds one handler per catalog kind
func NewCatalogMounts(catalog *service.CatalogService, logger *zap.Logger) []CatalogMount {
	return []CatalogMount{
		{Path: "/transportations", Handler: NewCatalogKindHandler(catalog.Transportations, logger)},
		{Path: "/hotels", Handler: NewCatalogKindHandler(catalog.Hotels, logger)},
		{Path: "/sightseeing", Handler: NewCatalogKindHandler(catalog.Sightseeings, logger)},
		{Path: "/activities", Handler: NewCatalogKindHandler(catalog.Activities, logger)},
		{Path: "/entry-tickets", Handler: NewCatalogKindHandler(catalog.EntryTickets, logger)},
		{Path: "/meals", Handler: NewCatalogKindHandler(catalog.Meals, logger)},
	}
}
