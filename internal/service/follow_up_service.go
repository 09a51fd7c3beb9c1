package service

import (
	"context"
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
)

// FollowUpService runs the sales lead workflow
type FollowUpService struct {
	repo     *repository.SalesClientRepository
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewFollowUpService creates a follow-up service. "Today" is evaluated in
// loc; nil means UTC.
func NewFollowUpService(repo *repository.SalesClientRepository, loc *time.Location, logger *zap.Logger) *FollowUpService {
	if loc == nil {
		loc = time.UTC
	}
	return &FollowUpService{repo: repo, location: loc, logger: logger, now: time.Now}
}

// Today returns the current calendar date in the configured timezone
func (s *FollowUpService) Today() string {
	return pricing.Today(s.now, s.location)
}

// Create stores a lead owned by the current user at the first status
func (s *FollowUpService) Create(ctx context.Context, req *domain.SalesClientRequest) (*domain.SalesClientDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	client := &domain.SalesClient{
		CurrentFollowUpStatus: domain.FollowUpItineraryCreated,
		SalesPersonID:         userCtx.UserID,
		SalesPersonName:       userCtx.DisplayName,
	}
	if err := applySalesClient(client, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, mapRepoError(err, "create sales client")
	}

	s.logger.Info("sales client created",
		zap.String("salesClientID", client.ID.String()),
		zap.String("salesPersonID", userCtx.UserID.String()),
	)
	dto := mapper.ToSalesClientDTO(client)
	return &dto, nil
}

func (s *FollowUpService) Get(ctx context.Context, id uuid.UUID) (*domain.SalesClientDTO, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get sales client")
	}
	dto := mapper.ToSalesClientDTO(client)
	return &dto, nil
}

// GetEntity returns the stored lead for use by other services
func (s *FollowUpService) GetEntity(ctx context.Context, id uuid.UUID) (*domain.SalesClient, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get sales client")
	}
	return client, nil
}

// Update replaces a lead's details. The status is only changed through UpdateStatus.
func (s *FollowUpService) Update(ctx context.Context, id uuid.UUID, req *domain.SalesClientRequest) (*domain.SalesClientDTO, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get sales client")
	}
	if err := applySalesClient(client, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, mapRepoError(err, "update sales client")
	}
	dto := mapper.ToSalesClientDTO(client)
	return &dto, nil
}

func (s *FollowUpService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete sales client")
	}
	s.logger.Info("sales client deleted", zap.String("salesClientID", id.String()))
	return nil
}

func (s *FollowUpService) List(ctx context.Context, filter repository.SalesClientFilter, page, pageSize int, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, invalid("unknown follow-up status %q", *filter.Status)
	}
	clients, total, err := s.repo.List(ctx, filter, page, pageSize, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales clients: %w", err)
	}
	dtos := make([]domain.SalesClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToSalesClientDTO(&clients[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// UpdateStatus writes a new follow-up status. Any status may follow any
// other; every write adds one history row. Moving to a terminal status
// clears the next follow-up unless a new one is given.
func (s *FollowUpService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateFollowUpStatusRequest) (*domain.SalesClientDTO, error) {
	if !req.Status.IsValid() {
		return nil, invalid("unknown follow-up status %q", req.Status)
	}
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get sales client")
	}

	history := &domain.FollowUpHistory{
		FromStatus: client.CurrentFollowUpStatus,
		ToStatus:   req.Status,
		Notes:      strings.TrimSpace(req.Notes),
		ChangedAt:  s.now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		if !userCtx.IsSystem {
			uid := userCtx.UserID
			history.ChangedByID = &uid
		}
		history.ChangedByName = userCtx.DisplayName
	}

	client.CurrentFollowUpStatus = req.Status
	switch {
	case req.ClearNextFollowUp:
		client.NextFollowUpDate = ""
		client.NextFollowUpTime = ""
	case req.NextFollowUpDate != nil:
		if err := validateFollowUpSlot(*req.NextFollowUpDate, req.NextFollowUpTime); err != nil {
			return nil, err
		}
		client.NextFollowUpDate = *req.NextFollowUpDate
		client.NextFollowUpTime = ""
		if req.NextFollowUpTime != nil {
			client.NextFollowUpTime = *req.NextFollowUpTime
		}
	case req.Status.IsTerminal():
		client.NextFollowUpDate = ""
		client.NextFollowUpTime = ""
	}

	if err := s.repo.SaveStatus(ctx, client, history); err != nil {
		return nil, mapRepoError(err, "update follow-up status")
	}

	s.logger.Info("follow-up status changed",
		zap.String("salesClientID", client.ID.String()),
		zap.String("from", string(history.FromStatus)),
		zap.String("to", string(history.ToStatus)),
		zap.String("nextFollowUpDate", client.NextFollowUpDate),
	)
	dto := mapper.ToSalesClientDTO(client)
	return &dto, nil
}

// TodaysFollowUps returns the current user's leads whose next follow-up
// date is today in the configured timezone
func (s *FollowUpService) TodaysFollowUps(ctx context.Context) ([]domain.SalesClientDTO, error) {
	clients, err := s.repo.ListDueOn(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	dtos := make([]domain.SalesClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToSalesClientDTO(&clients[i])
	}
	return dtos, nil
}

// DueToday returns every lead due today regardless of owner, skipping
// terminal ones. Used by the reminder job.
func (s *FollowUpService) DueToday(ctx context.Context) ([]domain.SalesClient, error) {
	clients, err := s.repo.ListAllDueOn(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	due := clients[:0]
	for _, c := range clients {
		if !c.CurrentFollowUpStatus.IsTerminal() {
			due = append(due, c)
		}
	}
	return due, nil
}

// ListHistory returns a lead's status writes, oldest first
func (s *FollowUpService) ListHistory(ctx context.Context, id uuid.UUID) ([]domain.FollowUpHistoryDTO, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, mapRepoError(err, "get sales client")
	}
	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-up history: %w", err)
	}
	dtos := make([]domain.FollowUpHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToFollowUpHistoryDTO(&history[i])
	}
	return dtos, nil
}

// ListStatuses returns the follow-up vocabulary in progression order
func (s *FollowUpService) ListStatuses() []domain.FollowUpStatusDTO {
	return mapper.ToFollowUpStatusDTOs()
}

func applySalesClient(client *domain.SalesClient, req *domain.SalesClientRequest) error {
	if req.Adults < 1 {
		return invalid("at least one adult is required")
	}
	if req.Children < 0 {
		return invalid("children cannot be negative")
	}
	if req.TravelDate != "" {
		if _, err := pricing.ParseDate(req.TravelDate); err != nil {
			return invalid("%v", err)
		}
	}
	if req.NextFollowUpDate != "" {
		t := req.NextFollowUpTime
		if err := validateFollowUpSlot(req.NextFollowUpDate, &t); err != nil {
			return err
		}
	} else if req.NextFollowUpTime != "" {
		return invalid("nextFollowUpTime requires nextFollowUpDate")
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Email = req.Email
	client.Phone = req.Phone
	client.Destination = req.Destination
	client.TravelDate = req.TravelDate
	client.Adults = req.Adults
	client.Children = req.Children
	client.ItineraryID = req.ItineraryID
	client.NextFollowUpDate = req.NextFollowUpDate
	client.NextFollowUpTime = req.NextFollowUpTime
	client.Notes = req.Notes
	return nil
}

func validateFollowUpSlot(date string, clock *string) error {
	if _, err := pricing.ParseDate(date); err != nil {
		return invalid("%v", err)
	}
	if clock != nil && *clock != "" {
		if _, err := time.Parse("15:04", *clock); err != nil {
			return invalid("invalid time %q, expected HH:MM", *clock)
		}
	}
	return nil
}
