package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/pricing"
	"github.com/tripdesk/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientService manages trip requests
type ClientService struct {
	clientRepo         *repository.ClientRepository
	transportationRepo *repository.CatalogRepository[domain.Transportation]
	logger             *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo *repository.ClientRepository,
	transportationRepo *repository.CatalogRepository[domain.Transportation],
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:         clientRepo,
		transportationRepo: transportationRepo,
		logger:             logger,
	}
}

// Create stores a new trip request owned by the current user
func (s *ClientService) Create(ctx context.Context, req *domain.ClientRequest) (*domain.ClientDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	client := &domain.Client{
		CreatedByID:   userCtx.UserID,
		CreatedByName: userCtx.DisplayName,
	}
	if err := s.apply(ctx, client, req); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, mapRepoError(err, "create client")
	}

	s.logger.Info("client created",
		zap.String("clientID", client.ID.String()),
		zap.Int("days", client.NumberOfDays),
		zap.Bool("flexible", client.IsFlexible),
	)
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Get returns a client visible to the current user
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get client")
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// GetEntity returns the stored client for use by other services
func (s *ClientService) GetEntity(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get client")
	}
	return client, nil
}

// Update replaces a client's trip parameters. Switching isFlexible keeps
// the other mode's values so switching back restores them.
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.ClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get client")
	}
	if err := s.apply(ctx, client, req); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, mapRepoError(err, "update client")
	}

	s.logger.Info("client updated", zap.String("clientID", id.String()))
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Delete removes a client
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete client")
	}
	s.logger.Info("client deleted", zap.String("clientID", id.String()))
	return nil
}

// List returns a page of clients visible to the current user
func (s *ClientService) List(ctx context.Context, page, pageSize int, search string, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, search, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// apply copies the request onto client and derives the day count
func (s *ClientService) apply(ctx context.Context, client *domain.Client, req *domain.ClientRequest) error {
	if !req.TransportationMode.IsValid() {
		return invalid("unknown transportation mode %q", req.TransportationMode)
	}
	if req.Adults < 1 {
		return invalid("at least one adult is required")
	}
	if req.Children < 0 {
		return invalid("children cannot be negative")
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	if start != nil {
		client.StartDate = start
	}
	if end != nil {
		client.EndDate = end
	}
	if month := strings.TrimSpace(req.FlexibleMonth); month != "" {
		client.FlexibleMonth = month
	}

	client.IsFlexible = req.IsFlexible
	if client.IsFlexible && client.FlexibleMonth == "" {
		return invalid("a flexible trip needs a travel month")
	}
	if !client.IsFlexible && (client.StartDate == nil || client.EndDate == nil) {
		return invalid("start and end dates are required unless the trip is flexible")
	}

	days := req.NumberOfDays
	if !client.IsFlexible {
		days, err = pricing.CountDays(*client.StartDate, *client.EndDate)
		if err != nil {
			return invalid("%v", err)
		}
	}
	if days < 1 {
		return invalid("numberOfDays must be at least 1")
	}

	if req.TransportationID != nil {
		t, err := s.transportationRepo.GetByID(ctx, *req.TransportationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("transportation %s does not exist", req.TransportationID)
			}
			return fmt.Errorf("failed to load transportation: %w", err)
		}
		if t.Type != req.TransportationMode {
			return invalid("transportation %s is a %s, not %s", t.ID, t.Type, req.TransportationMode)
		}
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Email = req.Email
	client.Phone = req.Phone
	client.Adults = req.Adults
	client.Children = req.Children
	client.NumberOfDays = days
	client.TransportationMode = req.TransportationMode
	client.TransportationID = req.TransportationID
	return nil
}

func parseDateRange(startValue, endValue string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startValue != "" {
		t, err := pricing.ParseDate(startValue)
		if err != nil {
			return nil, nil, invalid("%v", err)
		}
		start = &t
	}
	if endValue != "" {
		t, err := pricing.ParseDate(endValue)
		if err != nil {
			return nil, nil, invalid("%v", err)
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, invalid("%v", pricing.ErrEndBeforeStart)
	}
	return start, end, nil
}
