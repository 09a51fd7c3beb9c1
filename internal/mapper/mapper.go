package mapper

import (
	"strconv"
	"time"

	"github.com/tripdesk/agency-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CompanyName: user.CompanyName,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		LastLoginAt: formatOptionalTimestamp(user.LastLoginAt),
		CreatedAt:   formatTimestamp(user.CreatedAt),
	}
}

// ToTransportationDTO converts Transportation to TransportationDTO
func ToTransportationDTO(t *domain.Transportation) domain.TransportationDTO {
	return domain.TransportationDTO{
		ID:         t.ID,
		Type:       t.Type,
		Name:       t.Name,
		CostPerDay: t.CostPerDay,
		CreatedAt:  formatTimestamp(t.CreatedAt),
		UpdatedAt:  formatTimestamp(t.UpdatedAt),
	}
}

// ToHotelDTO converts Hotel to HotelDTO, room types in sort order
func ToHotelDTO(h *domain.Hotel) domain.HotelDTO {
	rooms := make([]domain.RoomTypeDTO, 0, len(h.RoomTypes))
	for _, r := range h.RoomTypes {
		rooms = append(rooms, domain.RoomTypeDTO{
			ID:            r.ID,
			Name:          r.Name,
			PeakRate:      r.PeakRate,
			SeasonRate:    r.SeasonRate,
			OffSeasonRate: r.OffSeasonRate,
		})
	}
	return domain.HotelDTO{
		ID:           h.ID,
		Name:         h.Name,
		Place:        h.Place,
		StarCategory: h.StarCategory,
		RoomTypes:    rooms,
		CreatedAt:    formatTimestamp(h.CreatedAt),
		UpdatedAt:    formatTimestamp(h.UpdatedAt),
	}
}

// ToSightseeingDTO converts Sightseeing to SightseeingDTO
func ToSightseeingDTO(s *domain.Sightseeing) domain.SightseeingDTO {
	return domain.SightseeingDTO{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		TransportationMode: s.TransportationMode,
		VehicleCosts:       s.VehicleCosts.Data(),
		CreatedAt:          formatTimestamp(s.CreatedAt),
		UpdatedAt:          formatTimestamp(s.UpdatedAt),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(a *domain.Activity) domain.ActivityDTO {
	options := make([]domain.ActivityOptionDTO, 0, len(a.Options))
	for _, o := range a.Options {
		options = append(options, domain.ActivityOptionDTO{
			ID:             o.ID,
			Name:           o.Name,
			Cost:           o.Cost,
			CostForHowMany: o.CostForHowMany,
		})
	}
	return domain.ActivityDTO{
		ID:        a.ID,
		Name:      a.Name,
		Location:  a.Location,
		Options:   options,
		CreatedAt: formatTimestamp(a.CreatedAt),
		UpdatedAt: formatTimestamp(a.UpdatedAt),
	}
}

// ToEntryTicketDTO converts EntryTicket to EntryTicketDTO
func ToEntryTicketDTO(t *domain.EntryTicket) domain.EntryTicketDTO {
	return domain.EntryTicketDTO{
		ID:            t.ID,
		Name:          t.Name,
		Cost:          t.Cost,
		SightseeingID: t.SightseeingID,
		CreatedAt:     formatTimestamp(t.CreatedAt),
		UpdatedAt:     formatTimestamp(t.UpdatedAt),
	}
}

// ToMealDTO converts Meal to MealDTO
func ToMealDTO(m *domain.Meal) domain.MealDTO {
	return domain.MealDTO{
		ID:        m.ID,
		Type:      m.Type,
		Place:     m.Place,
		Cost:      m.Cost,
		CreatedAt: formatTimestamp(m.CreatedAt),
		UpdatedAt: formatTimestamp(m.UpdatedAt),
	}
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(c *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		StartDate:          formatDate(c.StartDate),
		EndDate:            formatDate(c.EndDate),
		IsFlexible:         c.IsFlexible,
		FlexibleMonth:      c.FlexibleMonth,
		Adults:             c.Adults,
		Children:           c.Children,
		NumberOfDays:       c.NumberOfDays,
		TransportationMode: c.TransportationMode,
		TransportationID:   c.TransportationID,
		CreatedByID:        c.CreatedByID,
		CreatedByName:      c.CreatedByName,
		CreatedAt:          formatTimestamp(c.CreatedAt),
		UpdatedAt:          formatTimestamp(c.UpdatedAt),
	}
}

// ToClientSnapshot copies the trip parameters embedded in an itinerary
func ToClientSnapshot(c *domain.Client) domain.ClientSnapshot {
	return domain.ClientSnapshot{
		ClientID:           c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		StartDate:          formatDate(c.StartDate),
		EndDate:            formatDate(c.EndDate),
		IsFlexible:         c.IsFlexible,
		FlexibleMonth:      c.FlexibleMonth,
		Adults:             c.Adults,
		Children:           c.Children,
		NumberOfDays:       c.NumberOfDays,
		TransportationMode: c.TransportationMode,
		TransportationID:   c.TransportationID,
	}
}

// ToItineraryChangeDTO converts ItineraryChange to ItineraryChangeDTO
func ToItineraryChangeDTO(c *domain.ItineraryChange) domain.ItineraryChangeDTO {
	return domain.ItineraryChangeDTO{
		Version:     c.Version,
		ChangeType:  c.ChangeType,
		Description: c.Description,
		AuthorID:    c.AuthorID,
		AuthorName:  c.AuthorName,
		Timestamp:   formatTimestamp(c.CreatedAt),
	}
}

// ToItineraryDTO converts Itinerary to ItineraryDTO including any loaded changes
func ToItineraryDTO(it *domain.Itinerary) domain.ItineraryDTO {
	plans := []domain.DayPlan(it.DayPlans)
	if plans == nil {
		plans = []domain.DayPlan{}
	}
	dto := domain.ItineraryDTO{
		ID:                it.ID,
		ClientID:          it.ClientID,
		Client:            it.ClientSnapshot.Data(),
		DayPlans:          plans,
		Season:            it.Season,
		VehicleClass:      it.VehicleClass,
		SeasonOverride:    it.SeasonOverride,
		VehicleOverride:   it.VehicleClassOverride,
		TotalBaseCost:     it.TotalBaseCost,
		Markup:            it.Markup,
		ProfitMargin:      it.ProfitMargin,
		FinalPrice:        it.FinalPrice,
		ExchangeRate:      it.ExchangeRate,
		Currency:          it.Currency,
		SecondaryCurrency: it.SecondaryCurrency,
		CostBreakdown:     it.CostBreakdown.Data(),
		Version:           it.Version,
		Status:            it.Status,
		FixedItineraryID:  it.FixedItineraryID,
		CreatedByID:       it.CreatedByID,
		CreatedByName:     it.CreatedByName,
		CreatedByRole:     it.CreatedByRole,
		CreatedAt:         formatTimestamp(it.CreatedAt),
		UpdatedAt:         formatTimestamp(it.UpdatedAt),
	}
	for i := range it.Changes {
		dto.ChangeLog = append(dto.ChangeLog, ToItineraryChangeDTO(&it.Changes[i]))
	}
	return dto
}

// ToItineraryDocumentDTO converts ItineraryDocument to ItineraryDocumentDTO
func ToItineraryDocumentDTO(d *domain.ItineraryDocument) domain.ItineraryDocumentDTO {
	return domain.ItineraryDocumentDTO{
		ID:          d.ID,
		ItineraryID: d.ItineraryID,
		Version:     d.Version,
		FileName:    d.FileName,
		Size:        d.Size,
		CreatedAt:   formatTimestamp(d.CreatedAt),
	}
}

// ToFixedItineraryDTO converts FixedItinerary to FixedItineraryDTO
func ToFixedItineraryDTO(f *domain.FixedItinerary) domain.FixedItineraryDTO {
	plans := []domain.DayPlan(f.DayPlans)
	if plans == nil {
		plans = []domain.DayPlan{}
	}
	return domain.FixedItineraryDTO{
		ID:                 f.ID,
		Name:               f.Name,
		NumberOfDays:       f.NumberOfDays,
		TransportationMode: f.TransportationMode,
		DayPlans:           plans,
		BaseCost:           f.BaseCost,
		Inclusions:         f.Inclusions,
		Exclusions:         f.Exclusions,
		IsActive:           f.IsActive,
		CreatedAt:          formatTimestamp(f.CreatedAt),
		UpdatedAt:          formatTimestamp(f.UpdatedAt),
	}
}

// ToSalesClientDTO converts SalesClient to SalesClientDTO
func ToSalesClientDTO(c *domain.SalesClient) domain.SalesClientDTO {
	return domain.SalesClientDTO{
		ID:                    c.ID,
		Name:                  c.Name,
		Email:                 c.Email,
		Phone:                 c.Phone,
		Destination:           c.Destination,
		TravelDate:            c.TravelDate,
		Adults:                c.Adults,
		Children:              c.Children,
		ItineraryID:           c.ItineraryID,
		CurrentFollowUpStatus: c.CurrentFollowUpStatus,
		StatusLabel:           c.CurrentFollowUpStatus.Label(),
		IsTerminal:            c.CurrentFollowUpStatus.IsTerminal(),
		NextFollowUpDate:      c.NextFollowUpDate,
		NextFollowUpTime:      c.NextFollowUpTime,
		Notes:                 c.Notes,
		SalesPersonID:         c.SalesPersonID,
		SalesPersonName:       c.SalesPersonName,
		CreatedAt:             formatTimestamp(c.CreatedAt),
		UpdatedAt:             formatTimestamp(c.UpdatedAt),
	}
}

// ToFollowUpHistoryDTO converts FollowUpHistory to FollowUpHistoryDTO
func ToFollowUpHistoryDTO(h *domain.FollowUpHistory) domain.FollowUpHistoryDTO {
	return domain.FollowUpHistoryDTO{
		ID:            h.ID,
		FromStatus:    h.FromStatus,
		ToStatus:      h.ToStatus,
		Notes:         h.Notes,
		ChangedByID:   h.ChangedByID,
		ChangedByName: h.ChangedByName,
		ChangedAt:     formatTimestamp(h.ChangedAt),
	}
}

// ToFollowUpStatusDTOs lists the follow-up vocabulary
func ToFollowUpStatusDTOs() []domain.FollowUpStatusDTO {
	statuses := domain.AllFollowUpStatuses()
	out := make([]domain.FollowUpStatusDTO, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, domain.FollowUpStatusDTO{Value: s, Label: s.Label(), IsTerminal: s.IsTerminal()})
	}
	return out
}

// ToChecklistItemDTO converts ChecklistItem to ChecklistItemDTO
func ToChecklistItemDTO(item *domain.ChecklistItem) domain.ChecklistItemDTO {
	return domain.ChecklistItemDTO{
		ID:               item.ID,
		AssignmentID:     item.AssignmentID,
		ItemType:         item.ItemType,
		DayNumber:        item.DayNumber,
		Description:      item.Description,
		ReferenceID:      item.ReferenceID,
		IsCompleted:      item.IsCompleted,
		CompletedAt:      formatOptionalTimestamp(item.CompletedAt),
		CompletedByID:    item.CompletedByID,
		CompletedByName:  item.CompletedByName,
		BookingReference: item.BookingReference,
		Notes:            item.Notes,
	}
}

// GroupChecklistByDay groups items by day number in ascending order. Items
// must already be sorted by day.
func GroupChecklistByDay(items []domain.ChecklistItem) []domain.ChecklistDayGroupDTO {
	var groups []domain.ChecklistDayGroupDTO
	for i := range items {
		item := &items[i]
		if len(groups) == 0 || groups[len(groups)-1].Day != item.DayNumber {
			groups = append(groups, domain.ChecklistDayGroupDTO{
				Day:   item.DayNumber,
				Label: dayLabel(item.DayNumber),
				Items: []domain.ChecklistItemDTO{},
			})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, ToChecklistItemDTO(item))
	}
	return groups
}

func dayLabel(day int) string {
	if day == 0 {
		return "General"
	}
	return "Day " + strconv.Itoa(day)
}

// ToAssignmentDTO converts PackageAssignment to AssignmentDTO. Items must be
// loaded and sorted by day for the groups and completion to be filled in.
func ToAssignmentDTO(a *domain.PackageAssignment) domain.AssignmentDTO {
	completed := 0
	for _, item := range a.Items {
		if item.IsCompleted {
			completed++
		}
	}
	dto := domain.AssignmentDTO{
		ID:                 a.ID,
		SalesClientID:      a.SalesClientID,
		ItineraryID:        a.ItineraryID,
		SalesPersonID:      a.SalesPersonID,
		OperationsPersonID: a.OperationsPersonID,
		Status:             a.Status,
		Notes:              a.Notes,
		TotalItems:         len(a.Items),
		CompletedItems:     completed,
		CompletionPercent:  domain.CompletionPercent(completed, len(a.Items)),
		Groups:             GroupChecklistByDay(a.Items),
		CreatedAt:          formatTimestamp(a.CreatedAt),
		UpdatedAt:          formatTimestamp(a.UpdatedAt),
	}
	if a.SalesClient != nil {
		dto.SalesClientName = a.SalesClient.Name
	}
	return dto
}

// ToChatMessageDTO converts ChatMessage to ChatMessageDTO
func ToChatMessageDTO(m *domain.ChatMessage) domain.ChatMessageDTO {
	return domain.ChatMessageDTO{
		ID:           m.ID,
		AssignmentID: m.AssignmentID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderRole:   m.SenderRole,
		Message:      m.Message,
		IsRead:       m.IsRead,
		CreatedAt:    formatTimestamp(m.CreatedAt),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Read:       n.Read,
		ReadAt:     formatOptionalTimestamp(n.ReadAt),
		CreatedAt:  formatTimestamp(n.CreatedAt),
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(a *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          a.ID,
		UserID:      a.UserID,
		UserEmail:   a.UserEmail,
		UserRole:    a.UserRole,
		Action:      a.Action,
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Path:        a.Path,
		Method:      a.Method,
		StatusCode:  a.StatusCode,
		IPAddress:   a.IPAddress,
		RequestID:   a.RequestID,
		PerformedAt: formatTimestamp(a.PerformedAt),
	}
}
