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

// Assignment service errors
var (
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrNotOperationsUser     = errors.New("assignee is not an active operations user")
)

// AssignmentService hands confirmed leads from sales to operations and
// tracks the booking checklist
type AssignmentService struct {
	assignmentRepo  *repository.AssignmentRepository
	salesClientRepo *repository.SalesClientRepository
	userRepo        *repository.UserRepository
	itineraries     *ItineraryService
	catalog         *CatalogService
	notifications   *NotificationService
	logger          *zap.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	salesClientRepo *repository.SalesClientRepository,
	userRepo *repository.UserRepository,
	itineraries *ItineraryService,
	catalog *CatalogService,
	notifications *NotificationService,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo:  assignmentRepo,
		salesClientRepo: salesClientRepo,
		userRepo:        userRepo,
		itineraries:     itineraries,
		catalog:         catalog,
		notifications:   notifications,
		logger:          logger,
	}
}

// Create assigns a lead to an operations person. With GenerateChecklist
// set, one item is created per booked service of the linked itinerary.
func (s *AssignmentService) Create(ctx context.Context, req *domain.CreateAssignmentRequest) (*domain.AssignmentDTO, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUserContextRequired
	}

	client, err := s.salesClientRepo.GetByID(ctx, req.SalesClientID)
	if err != nil {
		return nil, mapRepoError(err, "get sales client")
	}

	ops, err := s.userRepo.GetByID(ctx, req.OperationsPersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotOperationsUser)
		}
		return nil, fmt.Errorf("failed to load operations user: %w", err)
	}
	if ops.Role != domain.RoleOperations || !ops.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotOperationsUser)
	}

	itineraryID := req.ItineraryID
	if itineraryID == nil {
		itineraryID = client.ItineraryID
	}
	var linked *domain.Itinerary
	if itineraryID != nil {
		linked, err = s.itineraries.GetEntity(ctx, *itineraryID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("itinerary %s is not available to you", *itineraryID)
			}
			return nil, err
		}
	}

	assignment := &domain.PackageAssignment{
		SalesClientID:      client.ID,
		ItineraryID:        itineraryID,
		SalesPersonID:      client.SalesPersonID,
		OperationsPersonID: ops.ID,
		Status:             domain.AssignmentStatusPending,
		Notes:              strings.TrimSpace(req.Notes),
	}

	if req.GenerateChecklist {
		if linked == nil {
			return nil, invalid("a checklist can only be generated from an itinerary")
		}
		idx, err := s.catalog.LoadIndex(ctx)
		if err != nil {
			return nil, err
		}
		assignment.Items = ChecklistFromItinerary(linked, idx)
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, mapRepoError(err, "create assignment")
	}
	assignment.SalesClient = client

	s.notify(ctx, ops.ID, "New package assignment",
		fmt.Sprintf("%s has been assigned to you with %d checklist items", client.Name, len(assignment.Items)),
		assignment.ID)

	s.logger.Info("assignment created",
		zap.String("assignmentID", assignment.ID.String()),
		zap.String("salesClientID", client.ID.String()),
		zap.String("operationsPersonID", ops.ID.String()),
		zap.Int("items", len(assignment.Items)),
	)
	dto := mapper.ToAssignmentDTO(assignment)
	return &dto, nil
}

// Get returns an assignment with its checklist grouped by day
func (s *AssignmentService) Get(ctx context.Context, id uuid.UUID) (*domain.AssignmentDTO, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToAssignmentDTO(assignment)
	return &dto, nil
}

// GetEntity returns an assignment visible to the current user
func (s *AssignmentService) GetEntity(ctx context.Context, id uuid.UUID) (*domain.PackageAssignment, error) {
	return s.load(ctx, id)
}

// List returns assignments the current user takes part in
func (s *AssignmentService) List(ctx context.Context, filter repository.AssignmentFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, invalid("unknown assignment status %q", *filter.Status)
	}
	assignments, total, err := s.assignmentRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	dtos := make([]domain.AssignmentDTO, len(assignments))
	for i := range assignments {
		dto := mapper.ToAssignmentDTO(&assignments[i])
		dto.Groups = nil
		dtos[i] = dto
	}
	return paginated(dtos, total, page, pageSize), nil
}

// UpdateStatus moves an assignment through pending, in-progress and completed
func (s *AssignmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) (*domain.AssignmentDTO, error) {
	if !status.IsValid() {
		return nil, invalid("unknown assignment status %q", status)
	}
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.Status == status {
		dto := mapper.ToAssignmentDTO(assignment)
		return &dto, nil
	}
	if err := s.assignmentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepoError(err, "update assignment status")
	}
	from := assignment.Status
	assignment.Status = status

	if status == domain.AssignmentStatusCompleted {
		name := ""
		if assignment.SalesClient != nil {
			name = assignment.SalesClient.Name
		}
		s.notify(ctx, assignment.SalesPersonID, "Package completed",
			fmt.Sprintf("Operations finished the bookings for %s", name), assignment.ID)
	}

	s.logger.Info("assignment status changed",
		zap.String("assignmentID", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	dto := mapper.ToAssignmentDTO(assignment)
	return &dto, nil
}

// ToggleComplete flips an item's completion. Completing the first item of
// a pending assignment moves it to in-progress.
func (s *AssignmentService) ToggleComplete(ctx context.Context, assignmentID, itemID uuid.UUID) (*domain.ChecklistItemDTO, error) {
	assignment, item, err := s.loadItem(ctx, assignmentID, itemID)
	if err != nil {
		return nil, err
	}

	if item.IsCompleted {
		item.IsCompleted = false
		item.CompletedAt = nil
		item.CompletedByID = nil
		item.CompletedByName = ""
	} else {
		now := time.Now().UTC()
		item.IsCompleted = true
		item.CompletedAt = &now
		if userCtx, ok := auth.FromContext(ctx); ok {
			uid := userCtx.UserID
			item.CompletedByID = &uid
			item.CompletedByName = userCtx.DisplayName
		}
	}
	if err := s.assignmentRepo.SaveItem(ctx, item); err != nil {
		return nil, mapRepoError(err, "update checklist item")
	}

	if item.IsCompleted && assignment.Status == domain.AssignmentStatusPending {
		if err := s.assignmentRepo.UpdateStatus(ctx, assignment.ID, domain.AssignmentStatusInProgress); err != nil {
			s.logger.Warn("failed to start assignment", zap.String("assignmentID", assignment.ID.String()), zap.Error(err))
		}
	}

	dto := mapper.ToChecklistItemDTO(item)
	return &dto, nil
}

// UpdateItemDetails edits booking reference and notes without touching completion
func (s *AssignmentService) UpdateItemDetails(ctx context.Context, assignmentID, itemID uuid.UUID, req *domain.UpdateChecklistDetailsRequest) (*domain.ChecklistItemDTO, error) {
	_, item, err := s.loadItem(ctx, assignmentID, itemID)
	if err != nil {
		return nil, err
	}
	if req.BookingReference != nil {
		item.BookingReference = strings.TrimSpace(*req.BookingReference)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if err := s.assignmentRepo.SaveItem(ctx, item); err != nil {
		return nil, mapRepoError(err, "update checklist item")
	}
	dto := mapper.ToChecklistItemDTO(item)
	return &dto, nil
}

// AddItem adds a manual checklist item
func (s *AssignmentService) AddItem(ctx context.Context, assignmentID uuid.UUID, req *domain.AddChecklistItemRequest) (*domain.ChecklistItemDTO, error) {
	if !req.ItemType.IsValid() {
		return nil, invalid("unknown checklist item type %q", req.ItemType)
	}
	if req.DayNumber < 0 {
		return nil, invalid("dayNumber cannot be negative")
	}
	if _, err := s.load(ctx, assignmentID); err != nil {
		return nil, err
	}
	item := &domain.ChecklistItem{
		AssignmentID: assignmentID,
		ItemType:     req.ItemType,
		DayNumber:    req.DayNumber,
		Description:  strings.TrimSpace(req.Description),
		ReferenceID:  req.ReferenceID,
	}
	if err := s.assignmentRepo.CreateItem(ctx, item); err != nil {
		return nil, mapRepoError(err, "create checklist item")
	}
	dto := mapper.ToChecklistItemDTO(item)
	return &dto, nil
}

// DeleteItem removes a checklist item
func (s *AssignmentService) DeleteItem(ctx context.Context, assignmentID, itemID uuid.UUID) error {
	if _, err := s.load(ctx, assignmentID); err != nil {
		return err
	}
	if err := s.assignmentRepo.DeleteItem(ctx, assignmentID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, ErrChecklistItemNotFound)
		}
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	return nil
}

// Completion returns the share of completed checklist items
func (s *AssignmentService) Completion(ctx context.Context, assignmentID uuid.UUID) (*domain.CompletionDTO, error) {
	if _, err := s.load(ctx, assignmentID); err != nil {
		return nil, err
	}
	total, completed, err := s.assignmentRepo.CountItems(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count checklist items: %w", err)
	}
	return &domain.CompletionDTO{
		AssignmentID: assignmentID,
		Total:        total,
		Completed:    completed,
		Percent:      domain.CompletionPercent(completed, total),
	}, nil
}

func (s *AssignmentService) load(ctx context.Context, id uuid.UUID) (*domain.PackageAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, ErrAssignmentNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *AssignmentService) loadItem(ctx context.Context, assignmentID, itemID uuid.UUID) (*domain.PackageAssignment, *domain.ChecklistItem, error) {
	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.assignmentRepo.GetItem(ctx, assignmentID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, ErrChecklistItemNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return assignment, item, nil
}

func (s *AssignmentService) notify(ctx context.Context, userID uuid.UUID, title, message string, assignmentID uuid.UUID) {
	if s.notifications == nil {
		return
	}
	id := assignmentID
	if _, err := s.notifications.CreateForUser(ctx, userID, domain.NotificationTypeAssignment, title, message, "assignment", &id); err != nil {
		s.logger.Warn("failed to send assignment notification", zap.String("userID", userID.String()), zap.Error(err))
	}
}

// ChecklistFromItinerary lists one booking item per selected service. Trip
// transport goes on day 0; references missing from the catalog still get
// an item so operations can follow up on them.
func ChecklistFromItinerary(it *domain.Itinerary, catalog pricing.Catalog) []domain.ChecklistItem {
	var items []domain.ChecklistItem
	add := func(kind domain.ChecklistItemType, day int, ref *uuid.UUID, description string) {
		var refID *uuid.UUID
		if ref != nil {
			id := *ref
			refID = &id
		}
		items = append(items, domain.ChecklistItem{ItemType: kind, DayNumber: day, Description: description, ReferenceID: refID})
	}

	client := it.ClientSnapshot.Data()
	if client.TransportationID != nil {
		desc := fmt.Sprintf("Arrange %s transport", client.TransportationMode)
		if t, ok := catalog.Transportation(*client.TransportationID); ok {
			desc = fmt.Sprintf("Arrange %s for %d days", t.Name, client.NumberOfDays)
		}
		add(domain.ChecklistTransport, 0, client.TransportationID, desc)
	}

	for _, plan := range it.DayPlans {
		if plan.Hotel != nil {
			desc := "Book hotel room"
			if room, ok := catalog.RoomType(plan.Hotel.HotelID, plan.Hotel.RoomTypeID); ok {
				desc = "Book room: " + room.Name
			}
			add(domain.ChecklistHotel, plan.Day, &plan.Hotel.RoomTypeID, desc)
		}
		for i := range plan.SightseeingIDs {
			id := plan.SightseeingIDs[i]
			desc := "Arrange sightseeing"
			if spot, ok := catalog.Sightseeing(id); ok {
				desc = "Arrange sightseeing: " + spot.Name
				if client.TransportationMode == domain.TransportCab && it.VehicleClass != "" {
					desc += fmt.Sprintf(" (%s)", it.VehicleClass)
				}
			}
			add(domain.ChecklistTransport, plan.Day, &id, desc)
		}
		for i := range plan.Activities {
			sel := plan.Activities[i]
			desc := "Book activity"
			if opt, ok := catalog.ActivityOption(sel.ActivityID, sel.OptionID); ok {
				desc = "Book activity: " + opt.Name
			}
			add(domain.ChecklistActivity, plan.Day, &sel.OptionID, desc)
		}
		for i := range plan.TicketIDs {
			id := plan.TicketIDs[i]
			desc := "Buy entry ticket"
			if t, ok := catalog.EntryTicket(id); ok {
				desc = "Buy entry ticket: " + t.Name
			}
			add(domain.ChecklistTicket, plan.Day, &id, desc)
		}
		for i := range plan.MealIDs {
			id := plan.MealIDs[i]
			desc := "Reserve meal"
			if m, ok := catalog.Meal(id); ok {
				desc = fmt.Sprintf("Reserve %s at %s", m.Type, m.Place)
			}
			add(domain.ChecklistMeal, plan.Day, &id, desc)
		}
	}
	return items
}
