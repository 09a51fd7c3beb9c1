package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowUpStatus is the stage of a sales lead. The order below is the
// usual progression, but any status may follow any other.
type FollowUpStatus string

const (
	FollowUpItineraryCreated     FollowUpStatus = "itinerary-created"
	FollowUpItinerarySent        FollowUpStatus = "itinerary-sent"
	FollowUpFirst                FollowUpStatus = "1st-follow-up"
	FollowUpSecond               FollowUpStatus = "2nd-follow-up"
	FollowUpThird                FollowUpStatus = "3rd-follow-up"
	FollowUpFourth               FollowUpStatus = "4th-follow-up"
	FollowUpItineraryEdited      FollowUpStatus = "itinerary-edited"
	FollowUpUpdatedItinerarySent FollowUpStatus = "updated-itinerary-sent"
	FollowUpAdvancePaidConfirmed FollowUpStatus = "advance-paid-confirmed"
	FollowUpDead                 FollowUpStatus = "dead"
)

// AllFollowUpStatuses returns the vocabulary in progression order
func AllFollowUpStatuses() []FollowUpStatus {
	return []FollowUpStatus{
		FollowUpItineraryCreated,
		FollowUpItinerarySent,
		FollowUpFirst,
		FollowUpSecond,
		FollowUpThird,
		FollowUpFourth,
		FollowUpItineraryEdited,
		FollowUpUpdatedItinerarySent,
		FollowUpAdvancePaidConfirmed,
		FollowUpDead,
	}
}

// IsValid reports whether s is part of the vocabulary
func (s FollowUpStatus) IsValid() bool {
	for _, v := range AllFollowUpStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends the lead's lifecycle
func (s FollowUpStatus) IsTerminal() bool {
	return s == FollowUpAdvancePaidConfirmed || s == FollowUpDead
}

// Label returns a human readable form of the status
func (s FollowUpStatus) Label() string {
	switch s {
	case FollowUpItineraryCreated:
		return "Itinerary Created"
	case FollowUpItinerarySent:
		return "Itinerary Sent"
	case FollowUpFirst:
		return "1st Follow-up"
	case FollowUpSecond:
		return "2nd Follow-up"
	case FollowUpThird:
		return "3rd Follow-up"
	case FollowUpFourth:
		return "4th Follow-up"
	case FollowUpItineraryEdited:
		return "Itinerary Edited"
	case FollowUpUpdatedItinerarySent:
		return "Updated Itinerary Sent"
	case FollowUpAdvancePaidConfirmed:
		return "Advance Paid & Confirmed"
	case FollowUpDead:
		return "Dead"
	}
	return string(s)
}

// SalesClient is a lead owned by a sales person
type SalesClient struct {
	BaseModel
	Name                  string         `gorm:"type:varchar(200);not null;index"`
	Email                 string         `gorm:"type:varchar(255)"`
	Phone                 string         `gorm:"type:varchar(50)"`
	Destination           string         `gorm:"type:varchar(200)"`
	TravelDate            string         `gorm:"type:varchar(10);column:travel_date"`
	Adults                int            `gorm:"not null;default:1"`
	Children              int            `gorm:"not null;default:0"`
	ItineraryID           *uuid.UUID     `gorm:"type:uuid;column:itinerary_id"`
	CurrentFollowUpStatus FollowUpStatus `gorm:"type:varchar(50);not null;default:'itinerary-created';index;column:current_follow_up_status"`
	NextFollowUpDate      string         `gorm:"type:varchar(10);index;column:next_follow_up_date"`
	NextFollowUpTime      string         `gorm:"type:varchar(5);column:next_follow_up_time"`
	Notes                 string         `gorm:"type:text"`
	SalesPersonID         uuid.UUID      `gorm:"type:uuid;not null;index;column:sales_person_id"`
	SalesPersonName       string         `gorm:"type:varchar(200);column:sales_person_name"`
}

// FollowUpHistory records one status write on a sales client
type FollowUpHistory struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SalesClientID uuid.UUID      `gorm:"type:uuid;not null;index;column:sales_client_id"`
	FromStatus    FollowUpStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus      FollowUpStatus `gorm:"type:varchar(50);not null;column:to_status"`
	Notes         string         `gorm:"type:text"`
	ChangedByID   *uuid.UUID     `gorm:"type:uuid;column:changed_by_id"`
	ChangedByName string         `gorm:"type:varchar(200);column:changed_by_name"`
	ChangedAt     time.Time      `gorm:"not null;index;column:changed_at"`
}

// TableName keeps the history table name singular
func (FollowUpHistory) TableName() string {
	return "follow_up_history"
}

// BeforeCreate assigns an ID and timestamp
func (h *FollowUpHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	return nil
}

// AssignmentStatus is the fulfilment state of a package assignment
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in-progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// IsValid reports whether s is a known assignment status
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusInProgress, AssignmentStatusCompleted:
		return true
	}
	return false
}

// PackageAssignment hands a confirmed client from sales to operations
type PackageAssignment struct {
	BaseModel
	SalesClientID      uuid.UUID        `gorm:"type:uuid;not null;index;column:sales_client_id"`
	SalesClient        *SalesClient     `gorm:"foreignKey:SalesClientID"`
	ItineraryID        *uuid.UUID       `gorm:"type:uuid;column:itinerary_id"`
	SalesPersonID      uuid.UUID        `gorm:"type:uuid;not null;index;column:sales_person_id"`
	OperationsPersonID uuid.UUID        `gorm:"type:uuid;not null;index;column:operations_person_id"`
	Status             AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes              string           `gorm:"type:text"`
	Items              []ChecklistItem  `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
}

// ChecklistItemType is the kind of booking a checklist item tracks
type ChecklistItemType string

const (
	ChecklistHotel     ChecklistItemType = "hotel"
	ChecklistTransport ChecklistItemType = "transport"
	ChecklistActivity  ChecklistItemType = "activity"
	ChecklistTicket    ChecklistItemType = "ticket"
	ChecklistMeal      ChecklistItemType = "meal"
	ChecklistOther     ChecklistItemType = "other"
)

// IsValid reports whether t is a known checklist item type
func (t ChecklistItemType) IsValid() bool {
	switch t {
	case ChecklistHotel, ChecklistTransport, ChecklistActivity, ChecklistTicket, ChecklistMeal, ChecklistOther:
		return true
	}
	return false
}

// ChecklistItem is one bookable line of an assignment. DayNumber 0 means
// the item is not tied to a specific day.
type ChecklistItem struct {
	BaseModel
	AssignmentID     uuid.UUID         `gorm:"type:uuid;not null;index;column:assignment_id"`
	ItemType         ChecklistItemType `gorm:"type:varchar(20);not null;column:item_type"`
	DayNumber        int               `gorm:"not null;default:0;column:day_number"`
	Description      string            `gorm:"type:varchar(500);not null"`
	ReferenceID      *uuid.UUID        `gorm:"type:uuid;column:reference_id"`
	IsCompleted      bool              `gorm:"not null;default:false;column:is_completed"`
	CompletedAt      *time.Time        `gorm:"column:completed_at"`
	CompletedByID    *uuid.UUID        `gorm:"type:uuid;column:completed_by_id"`
	CompletedByName  string            `gorm:"type:varchar(200);column:completed_by_name"`
	BookingReference string            `gorm:"type:varchar(200);column:booking_reference"`
	Notes            string            `gorm:"type:text"`
}

// CompletionPercent returns completed/total as a rounded percentage.
// An empty checklist is 0%.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ChatMessage is one message in an assignment's sales/operations channel
type ChatMessage struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	AssignmentID uuid.UUID    `gorm:"type:uuid;not null;index;column:assignment_id"`
	SenderID     uuid.UUID    `gorm:"type:uuid;not null;index;column:sender_id"`
	SenderName   string       `gorm:"type:varchar(200);column:sender_name"`
	SenderRole   UserRoleType `gorm:"type:varchar(50);not null;column:sender_role"`
	Message      string       `gorm:"type:text;not null"`
	IsRead       bool         `gorm:"not null;default:false;index;column:is_read"`
	CreatedAt    time.Time    `gorm:"not null;index"`
}

// BeforeCreate assigns an ID and timestamp
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
