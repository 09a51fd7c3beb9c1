package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// FixedItineraryService manages reusable day-plan templates
type FixedItineraryService struct {
	repo        *repository.FixedItineraryRepository
	itineraries *ItineraryService
	logger      *zap.Logger
}

// NewFixedItineraryService creates a new fixed itinerary service
func NewFixedItineraryService(repo *repository.FixedItineraryRepository, itineraries *ItineraryService, logger *zap.Logger) *FixedItineraryService {
	return &FixedItineraryService{repo: repo, itineraries: itineraries, logger: logger}
}

func (s *FixedItineraryService) Create(ctx context.Context, req *domain.FixedItineraryRequest) (*domain.FixedItineraryDTO, error) {
	fixed := &domain.FixedItinerary{IsActive: true}
	if err := applyFixedItinerary(fixed, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, fixed); err != nil {
		return nil, mapRepoError(err, "create fixed itinerary")
	}
	s.logger.Info("fixed itinerary created",
		zap.String("fixedItineraryID", fixed.ID.String()),
		zap.Int("days", fixed.NumberOfDays),
		zap.String("mode", string(fixed.TransportationMode)),
	)
	dto := mapper.ToFixedItineraryDTO(fixed)
	return &dto, nil
}

func (s *FixedItineraryService) Get(ctx context.Context, id uuid.UUID) (*domain.FixedItineraryDTO, error) {
	fixed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get fixed itinerary")
	}
	dto := mapper.ToFixedItineraryDTO(fixed)
	return &dto, nil
}

func (s *FixedItineraryService) Update(ctx context.Context, id uuid.UUID, req *domain.FixedItineraryRequest) (*domain.FixedItineraryDTO, error) {
	fixed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get fixed itinerary")
	}
	if err := applyFixedItinerary(fixed, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, fixed); err != nil {
		return nil, mapRepoError(err, "update fixed itinerary")
	}
	dto := mapper.ToFixedItineraryDTO(fixed)
	return &dto, nil
}

func (s *FixedItineraryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete fixed itinerary")
	}
	s.logger.Info("fixed itinerary deleted", zap.String("fixedItineraryID", id.String()))
	return nil
}

// List returns templates, optionally narrowed to a trip length and mode
func (s *FixedItineraryService) List(ctx context.Context, days *int, mode *domain.TransportationMode, activeOnly bool) ([]domain.FixedItineraryDTO, error) {
	if mode != nil && !mode.IsValid() {
		return nil, invalid("unknown transportation mode %q", *mode)
	}
	items, err := s.repo.List(ctx, days, mode, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed itineraries: %w", err)
	}
	dtos := make([]domain.FixedItineraryDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToFixedItineraryDTO(&items[i])
	}
	return dtos, nil
}

// FindByDurationAndMode returns the active templates matching a trip
func (s *FixedItineraryService) FindByDurationAndMode(ctx context.Context, days int, mode domain.TransportationMode) ([]domain.FixedItineraryDTO, error) {
	if days < 1 {
		return nil, invalid("numberOfDays must be at least 1")
	}
	return s.List(ctx, &days, &mode, true)
}

// Apply creates an itinerary for a client from a template
func (s *FixedItineraryService) Apply(ctx context.Context, id uuid.UUID, req *domain.ApplyFixedItineraryRequest) (*domain.ItineraryDTO, error) {
	fixed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get fixed itinerary")
	}
	if !fixed.IsActive {
		return nil, invalid("fixed itinerary %q is inactive", fixed.Name)
	}
	return s.itineraries.CreateFromTemplate(ctx, fixed, req)
}

func applyFixedItinerary(fixed *domain.FixedItinerary, req *domain.FixedItineraryRequest) error {
	if !req.TransportationMode.IsValid() {
		return invalid("unknown transportation mode %q", req.TransportationMode)
	}
	if req.NumberOfDays < 1 {
		return invalid("numberOfDays must be at least 1")
	}
	if req.BaseCost < 0 {
		return invalid("baseCost cannot be negative")
	}
	if err := validateDayPlans(req.DayPlans, req.NumberOfDays); err != nil {
		return err
	}

	fixed.Name = strings.TrimSpace(req.Name)
	fixed.NumberOfDays = req.NumberOfDays
	fixed.TransportationMode = req.TransportationMode
	fixed.DayPlans = datatypes.NewJSONSlice(req.DayPlans)
	fixed.BaseCost = req.BaseCost
	fixed.Inclusions = req.Inclusions
	fixed.Exclusions = req.Exclusions
	if req.IsActive != nil {
		fixed.IsActive = *req.IsActive
	}
	return nil
}
