package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/document"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/pricing"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PricingSettings are the configured tables the itinerary service prices with
type PricingSettings struct {
	Markups  pricing.Markups
	Vehicles pricing.VehicleTable
	Seasons  pricing.SeasonCalendar
	Currency string
}

// NewPricingSettings converts the pricing configuration
func NewPricingSettings(cfg *config.PricingConfig) PricingSettings {
	markups := pricing.DefaultMarkups()
	for role, amount := range cfg.Markups {
		markups[domain.UserRoleType(role)] = amount
	}
	thresholds := make([]pricing.VehicleThreshold, 0, len(cfg.VehicleClasses))
	for _, vc := range cfg.VehicleClasses {
		thresholds = append(thresholds, pricing.VehicleThreshold{Class: domain.VehicleClass(vc.Class), MaxPax: vc.MaxPax})
	}
	currency := strings.ToUpper(cfg.Currency)
	if currency == "" {
		currency = "USD"
	}
	return PricingSettings{
		Markups:  markups,
		Vehicles: pricing.NewVehicleTable(thresholds),
		Seasons:  pricing.NewSeasonCalendar(cfg.PeakMonths, cfg.OffSeasonMonths),
		Currency: currency,
	}
}

// ItineraryService prices trips and keeps each itinerary's version and
// change log. Every persisted change goes through save, which bumps the
// version and appends one change entry in the same transaction.
type ItineraryService struct {
	itineraryRepo  *repository.ItineraryRepository
	documentRepo   *repository.ItineraryDocumentRepository
	clients        *ClientService
	catalog        *CatalogService
	store          storage.Storage
	renderer       *document.ItineraryPDF
	settings       PricingSettings
	documentPrefix string
	logger         *zap.Logger
}

// NewItineraryService creates a new itinerary service
func NewItineraryService(
	itineraryRepo *repository.ItineraryRepository,
	documentRepo *repository.ItineraryDocumentRepository,
	clients *ClientService,
	catalog *CatalogService,
	store storage.Storage,
	renderer *document.ItineraryPDF,
	settings PricingSettings,
	documentPrefix string,
	logger *zap.Logger,
) *ItineraryService {
	if documentPrefix == "" {
		documentPrefix = "documents"
	}
	return &ItineraryService{
		itineraryRepo:  itineraryRepo,
		documentRepo:   documentRepo,
		clients:        clients,
		catalog:        catalog,
		store:          store,
		renderer:       renderer,
		settings:       settings,
		documentPrefix: documentPrefix,
		logger:         logger,
	}
}

// Create prices the day plans for a client and stores version 1
func (s *ItineraryService) Create(ctx context.Context, req *domain.CreateItineraryRequest) (*domain.ItineraryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	client, err := s.clients.GetEntity(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := validateDayPlans(req.DayPlans, client.NumberOfDays); err != nil {
		return nil, err
	}

	snapshot := mapper.ToClientSnapshot(client)
	it := &domain.Itinerary{
		ClientID:             client.ID,
		ClientSnapshot:       datatypes.NewJSONType(snapshot),
		DayPlans:             datatypes.NewJSONSlice(req.DayPlans),
		SeasonOverride:       req.Season,
		VehicleClassOverride: req.VehicleClass,
		ProfitMargin:         req.ProfitMargin,
		ExchangeRate:         req.ExchangeRate,
		Currency:             s.settings.Currency,
		SecondaryCurrency:    strings.ToUpper(req.SecondaryCurrency),
		Version:              1,
		Status:               domain.ItineraryStatusDraft,
		CreatedByID:          userCtx.UserID,
		CreatedByName:        userCtx.DisplayName,
		CreatedByRole:        userCtx.Role,
	}
	if err := s.recompute(ctx, it); err != nil {
		return nil, err
	}

	change := s.newChange(ctx, domain.ChangeTypeCreated, "Itinerary created")
	if err := s.itineraryRepo.CreateWithChange(ctx, it, change); err != nil {
		return nil, mapRepoError(err, "create itinerary")
	}
	it.Changes = []domain.ItineraryChange{*change}

	s.logger.Info("itinerary created",
		zap.String("itineraryID", it.ID.String()),
		zap.String("clientID", client.ID.String()),
		zap.Float64("baseCost", it.TotalBaseCost),
		zap.Float64("finalPrice", it.FinalPrice),
	)
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// CreateFromTemplate creates an itinerary from a fixed itinerary. The
// template's flat base cost replaces the computed one.
func (s *ItineraryService) CreateFromTemplate(ctx context.Context, fixed *domain.FixedItinerary, req *domain.ApplyFixedItineraryRequest) (*domain.ItineraryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	client, err := s.clients.GetEntity(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client.TransportationMode != fixed.TransportationMode {
		return nil, invalid("template is for %s trips but the client travels by %s", fixed.TransportationMode, client.TransportationMode)
	}
	if client.NumberOfDays != fixed.NumberOfDays {
		return nil, invalid("template covers %d days but the trip has %d", fixed.NumberOfDays, client.NumberOfDays)
	}

	snapshot := mapper.ToClientSnapshot(client)
	fixedID := fixed.ID
	plans := append([]domain.DayPlan(nil), fixed.DayPlans...)
	it := &domain.Itinerary{
		ClientID:          client.ID,
		ClientSnapshot:    datatypes.NewJSONType(snapshot),
		DayPlans:          datatypes.NewJSONSlice(plans),
		TotalBaseCost:     fixed.BaseCost,
		ProfitMargin:      req.ProfitMargin,
		ExchangeRate:      req.ExchangeRate,
		Currency:          s.settings.Currency,
		SecondaryCurrency: strings.ToUpper(req.SecondaryCurrency),
		Version:           1,
		Status:            domain.ItineraryStatusDraft,
		FixedItineraryID:  &fixedID,
		CreatedByID:       userCtx.UserID,
		CreatedByName:     userCtx.DisplayName,
		CreatedByRole:     userCtx.Role,
	}
	if err := s.recompute(ctx, it); err != nil {
		return nil, err
	}

	change := s.newChange(ctx, domain.ChangeTypeCreated, fmt.Sprintf("Created from fixed itinerary %q", fixed.Name))
	if err := s.itineraryRepo.CreateWithChange(ctx, it, change); err != nil {
		return nil, mapRepoError(err, "create itinerary")
	}
	it.Changes = []domain.ItineraryChange{*change}

	s.logger.Info("itinerary created from template",
		zap.String("itineraryID", it.ID.String()),
		zap.String("fixedItineraryID", fixed.ID.String()),
	)
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// Get returns an itinerary with its change log. Besides the owner, the
// sales and operations people of a linked assignment may read it.
func (s *ItineraryService) Get(ctx context.Context, id uuid.UUID) (*domain.ItineraryDTO, error) {
	it, err := s.itineraryRepo.GetReadable(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// List returns itineraries visible to the current user
func (s *ItineraryService) List(ctx context.Context, filter repository.ItineraryFilter, page, pageSize int, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	items, total, err := s.itineraryRepo.List(ctx, filter, page, pageSize, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	dtos := make([]domain.ItineraryDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToItineraryDTO(&items[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// ListChanges returns the change log in version order
func (s *ItineraryService) ListChanges(ctx context.Context, id uuid.UUID) ([]domain.ItineraryChangeDTO, error) {
	if _, err := s.itineraryRepo.GetReadable(ctx, id); err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	changes, err := s.itineraryRepo.ListChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	dtos := make([]domain.ItineraryChangeDTO, len(changes))
	for i := range changes {
		dtos[i] = mapper.ToItineraryChangeDTO(&changes[i])
	}
	return dtos, nil
}

// Update replaces day plans and trip options, reprices and saves a new version
func (s *ItineraryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateItineraryRequest) (*domain.ItineraryDTO, error) {
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}

	changeType := domain.ChangeTypeDayPlansUpdated
	var parts []string

	if req.RefreshClient {
		client, err := s.clients.GetEntity(ctx, it.ClientID)
		if err != nil {
			return nil, err
		}
		it.ClientSnapshot = datatypes.NewJSONType(mapper.ToClientSnapshot(client))
		changeType = domain.ChangeTypeClientUpdated
		parts = append(parts, "client details refreshed")
	}
	if req.DayPlans != nil {
		it.DayPlans = datatypes.NewJSONSlice(req.DayPlans)
		it.FixedItineraryID = nil
		changeType = domain.ChangeTypeDayPlansUpdated
		parts = append(parts, fmt.Sprintf("%d day plans saved", len(req.DayPlans)))
	}
	// A refreshed client may have fewer days than the stored plans cover
	if err := validateDayPlans(it.DayPlans, it.ClientSnapshot.Data().NumberOfDays); err != nil {
		return nil, err
	}
	if req.Season != nil {
		it.SeasonOverride = *req.Season
		if *req.Season == "" {
			parts = append(parts, "season follows the travel date")
		} else {
			parts = append(parts, "season set to "+string(*req.Season))
		}
	}
	if req.VehicleClass != nil {
		it.VehicleClassOverride = *req.VehicleClass
		if *req.VehicleClass == "" {
			parts = append(parts, "vehicle follows the group size")
		} else {
			parts = append(parts, "vehicle set to "+string(*req.VehicleClass))
		}
	}
	if len(parts) == 0 {
		return nil, invalid("nothing to update")
	}

	if err := s.recompute(ctx, it); err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = strings.Join(parts, "; ")
	}
	if err := s.save(ctx, it, changeType, description); err != nil {
		return nil, err
	}
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// UpdatePricing changes the profit margin and display currency
func (s *ItineraryService) UpdatePricing(ctx context.Context, id uuid.UUID, req *domain.UpdateItineraryPricingRequest) (*domain.ItineraryDTO, error) {
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}

	var parts []string
	if req.ProfitMargin != nil {
		it.ProfitMargin = *req.ProfitMargin
		parts = append(parts, fmt.Sprintf("profit margin %.2f", *req.ProfitMargin))
	}
	if req.ExchangeRate != nil {
		it.ExchangeRate = *req.ExchangeRate
		parts = append(parts, fmt.Sprintf("exchange rate %.4f", *req.ExchangeRate))
	}
	if req.SecondaryCurrency != nil {
		it.SecondaryCurrency = strings.ToUpper(*req.SecondaryCurrency)
		parts = append(parts, "secondary currency "+it.SecondaryCurrency)
	}
	if len(parts) == 0 {
		return nil, invalid("nothing to update")
	}

	s.applyPrice(it)
	if err := s.save(ctx, it, domain.ChangeTypePricingUpdated, "Pricing updated: "+strings.Join(parts, ", ")); err != nil {
		return nil, err
	}
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// UpdateStatus moves an itinerary between draft, quoted, confirmed and cancelled
func (s *ItineraryService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItineraryStatus) (*domain.ItineraryDTO, error) {
	if !status.IsValid() {
		return nil, invalid("unknown itinerary status %q", status)
	}
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	if it.Status == status {
		dto := mapper.ToItineraryDTO(it)
		return &dto, nil
	}

	from := it.Status
	it.Status = status
	if err := s.save(ctx, it, domain.ChangeTypeStatusChanged, fmt.Sprintf("Status changed from %s to %s", from, status)); err != nil {
		return nil, err
	}
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// Recalculate reprices an itinerary against the current catalog
func (s *ItineraryService) Recalculate(ctx context.Context, id uuid.UUID) (*domain.ItineraryDTO, error) {
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	before := it.FinalPrice
	if err := s.recompute(ctx, it); err != nil {
		return nil, err
	}
	description := fmt.Sprintf("Recalculated against current catalog: %.2f -> %.2f", before, it.FinalPrice)
	if err := s.save(ctx, it, domain.ChangeTypeRecalculated, description); err != nil {
		return nil, err
	}
	dto := mapper.ToItineraryDTO(it)
	return &dto, nil
}

// Delete removes an itinerary with its change log and document records
func (s *ItineraryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.itineraryRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete itinerary")
	}
	s.logger.Info("itinerary deleted", zap.String("itineraryID", id.String()))
	return nil
}

// Quote returns the stored price with display conversions
func (s *ItineraryService) Quote(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	it, err := s.itineraryRepo.GetReadable(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	return buildQuote(it), nil
}

func buildQuote(it *domain.Itinerary) *domain.QuoteDTO {
	q := &domain.QuoteDTO{
		ItineraryID:       it.ID,
		Version:           it.Version,
		BaseCost:          it.TotalBaseCost,
		Markup:            it.Markup,
		ProfitMargin:      it.ProfitMargin,
		FinalPrice:        it.FinalPrice,
		Currency:          it.Currency,
		ExchangeRate:      it.ExchangeRate,
		SecondaryCurrency: it.SecondaryCurrency,
	}
	if it.SecondaryCurrency != "" {
		q.ConvertedBaseCost = pricing.Convert(it.TotalBaseCost, it.ExchangeRate)
		q.ConvertedFinalPrice = pricing.Convert(it.FinalPrice, it.ExchangeRate)
	}
	if pax := it.ClientSnapshot.Data().Adults + it.ClientSnapshot.Data().Children; pax > 0 {
		q.PerPerson = pricing.Round2(it.FinalPrice / float64(pax))
	}
	return q
}

// GenerateDocument renders the current version as a PDF and stores it
func (s *ItineraryService) GenerateDocument(ctx context.Context, id uuid.UUID) (*domain.ItineraryDocumentDTO, error) {
	if s.store == nil || s.renderer == nil {
		return nil, fmt.Errorf("%w: document storage is not configured", ErrInvalidInput)
	}
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	idx, err := s.catalog.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(it, idx)
	if err != nil {
		return nil, err
	}

	doc := &domain.ItineraryDocument{
		ItineraryID: it.ID,
		Version:     it.Version,
		FileName:    document.FileName(it),
		CreatedByID: userCtx.UserID,
	}
	doc.ID = uuid.New()
	doc.StoragePath = path.Join(s.documentPrefix, it.ID.String(), fmt.Sprintf("v%d-%s.pdf", it.Version, doc.ID))

	size, err := s.store.Put(ctx, doc.StoragePath, "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	doc.Size = size

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, doc.StoragePath); delErr != nil {
			s.logger.Warn("failed to remove orphaned document", zap.String("path", doc.StoragePath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.Info("itinerary document generated",
		zap.String("itineraryID", it.ID.String()),
		zap.Int("version", it.Version),
		zap.Int64("bytes", size),
	)
	dto := mapper.ToItineraryDocumentDTO(doc)
	return &dto, nil
}

// ListDocuments returns generated documents, newest version first
func (s *ItineraryService) ListDocuments(ctx context.Context, id uuid.UUID) ([]domain.ItineraryDocumentDTO, error) {
	if _, err := s.itineraryRepo.GetReadable(ctx, id); err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	docs, err := s.documentRepo.ListByItinerary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	dtos := make([]domain.ItineraryDocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToItineraryDocumentDTO(&docs[i])
	}
	return dtos, nil
}

// OpenDocument returns a stored document's content. The caller closes it.
func (s *ItineraryService) OpenDocument(ctx context.Context, itineraryID, documentID uuid.UUID) (io.ReadCloser, *domain.ItineraryDocumentDTO, error) {
	if s.store == nil {
		return nil, nil, ErrNotFound
	}
	if _, err := s.itineraryRepo.GetReadable(ctx, itineraryID); err != nil {
		return nil, nil, mapRepoError(err, "get itinerary")
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, mapRepoError(err, "get document")
	}
	if doc.ItineraryID != itineraryID {
		return nil, nil, ErrNotFound
	}

	rc, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	dto := mapper.ToItineraryDocumentDTO(doc)
	return rc, &dto, nil
}

// GetEntity returns an itinerary the current user may read: their own, or
// one linked to an assignment they work on.
func (s *ItineraryService) GetEntity(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	it, err := s.itineraryRepo.GetReadable(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get itinerary")
	}
	return it, nil
}

// recompute prices the itinerary against the current catalog. Template
// based itineraries keep their flat base cost.
func (s *ItineraryService) recompute(ctx context.Context, it *domain.Itinerary) error {
	idx, err := s.catalog.LoadIndex(ctx)
	if err != nil {
		return err
	}
	calc := pricing.NewCalculator(idx, s.settings.Vehicles, s.logger)
	client := it.ClientSnapshot.Data()

	// Effective season and vehicle follow the snapshot unless overridden
	it.Season = s.settings.Seasons.Resolve(it.SeasonOverride, client.StartDate)
	it.VehicleClass = ""
	if client.TransportationMode == domain.TransportCab {
		it.VehicleClass = calc.VehicleClass(client, it.VehicleClassOverride)
	}
	breakdown := calc.ComputeBaseCost(client, it.DayPlans, pricing.Options{Season: it.Season, VehicleClass: it.VehicleClass})
	it.CostBreakdown = datatypes.NewJSONType(breakdown)
	if it.FixedItineraryID == nil {
		it.TotalBaseCost = breakdown.Total
	}
	s.applyPrice(it)
	return nil
}

// applyPrice derives markup and final price from the stored base cost. The
// markup follows the role of the itinerary's creator.
func (s *ItineraryService) applyPrice(it *domain.Itinerary) {
	price := s.settings.Markups.FinalPrice(it.TotalBaseCost, it.CreatedByRole, it.ProfitMargin)
	it.TotalBaseCost = price.BaseCost
	it.Markup = price.Markup
	it.ProfitMargin = price.ProfitMargin
	it.FinalPrice = price.FinalPrice
}

func (s *ItineraryService) newChange(ctx context.Context, changeType domain.ItineraryChangeType, description string) *domain.ItineraryChange {
	change := &domain.ItineraryChange{
		ChangeType:  changeType,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		if !userCtx.IsSystem {
			id := userCtx.UserID
			change.AuthorID = &id
		}
		change.AuthorName = userCtx.DisplayName
	}
	return change
}

// save writes the next version with exactly one change entry. On failure
// the in-memory version is restored and nothing is persisted.
func (s *ItineraryService) save(ctx context.Context, it *domain.Itinerary, changeType domain.ItineraryChangeType, description string) error {
	change := s.newChange(ctx, changeType, description)
	it.Version++
	if err := s.itineraryRepo.SaveVersioned(ctx, it, change); err != nil {
		it.Version--
		s.logger.Warn("itinerary save failed",
			zap.String("itineraryID", it.ID.String()),
			zap.String("changeType", string(changeType)),
			zap.Error(err),
		)
		return mapRepoError(err, "save itinerary")
	}
	it.Changes = append(it.Changes, *change)

	s.logger.Info("itinerary saved",
		zap.String("itineraryID", it.ID.String()),
		zap.Int("version", it.Version),
		zap.String("changeType", string(changeType)),
	)
	return nil
}

// validateDayPlans checks day numbers are within the trip and not repeated
func validateDayPlans(plans []domain.DayPlan, numberOfDays int) error {
	seen := make(map[int]bool, len(plans))
	for _, p := range plans {
		if p.Day < 1 {
			return invalid("day numbers start at 1, got %d", p.Day)
		}
		if numberOfDays > 0 && p.Day > numberOfDays {
			return invalid("day %d is outside the %d day trip", p.Day, numberOfDays)
		}
		if seen[p.Day] {
			return invalid("day %d is planned twice", p.Day)
		}
		seen[p.Day] = true
	}
	return nil
}
