package domain

import (
	"github.com/google/uuid"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// UnreadCountDTO represents a count of unread items
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// Auth

type UserDTO struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	Role        UserRoleType `json:"role"`
	CompanyName string       `json:"companyName,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	IsActive    bool         `json:"isActive"`
	LastLoginAt *string      `json:"lastLoginAt,omitempty"`
	CreatedAt   string       `json:"createdAt"`
}

// AuthResult is the uniform outcome of the auth operations
type AuthResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
	Token     string   `json:"token,omitempty"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
	User      *UserDTO `json:"user,omitempty"`
}

type SignUpRequest struct {
	Email       string       `json:"email" validate:"required,email,max=255"`
	Password    string       `json:"password" validate:"required,min=8,max=128"`
	DisplayName string       `json:"displayName" validate:"required,max=200"`
	Role        UserRoleType `json:"role,omitempty" validate:"omitempty,oneof=agent guest"`
	CompanyName string       `json:"companyName,omitempty" validate:"max=200"`
	Phone       string       `json:"phone,omitempty" validate:"max=50"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

type CreateUserRequest struct {
	Email       string       `json:"email" validate:"required,email,max=255"`
	Password    string       `json:"password" validate:"required,min=8,max=128"`
	DisplayName string       `json:"displayName" validate:"required,max=200"`
	Role        UserRoleType `json:"role" validate:"required,oneof=admin agent sales operations guest"`
	CompanyName string       `json:"companyName,omitempty" validate:"max=200"`
	Phone       string       `json:"phone,omitempty" validate:"max=50"`
}

type UpdateUserRoleRequest struct {
	Role     UserRoleType `json:"role" validate:"required,oneof=admin agent sales operations guest"`
	IsActive *bool        `json:"isActive,omitempty"`
}

// NavItem is one entry of a portal's navigation
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ShellDTO describes the portal a role is routed to
type ShellDTO struct {
	Role        UserRoleType `json:"role"`
	Name        string       `json:"name"`
	BasePath    string       `json:"basePath"`
	Navigation  []NavItem    `json:"navigation"`
	Permissions []string     `json:"permissions"`
}

type MeDTO struct {
	User  UserDTO  `json:"user"`
	Shell ShellDTO `json:"shell"`
}

// Catalog

type TransportationDTO struct {
	ID         uuid.UUID          `json:"id"`
	Type       TransportationMode `json:"type"`
	Name       string             `json:"name"`
	CostPerDay float64            `json:"costPerDay"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
}

type TransportationRequest struct {
	Type       TransportationMode `json:"type" validate:"required,oneof=cab self-drive-car self-drive-scooter"`
	Name       string             `json:"name" validate:"required,max=200"`
	CostPerDay float64            `json:"costPerDay" validate:"gte=0"`
}

type RoomTypeDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PeakRate      float64   `json:"peakRate"`
	SeasonRate    float64   `json:"seasonRate"`
	OffSeasonRate float64   `json:"offSeasonRate"`
}

type HotelDTO struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Place        string        `json:"place"`
	StarCategory int           `json:"starCategory"`
	RoomTypes    []RoomTypeDTO `json:"roomTypes"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

type RoomTypeRequest struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Name          string     `json:"name" validate:"required,max=200"`
	PeakRate      float64    `json:"peakRate" validate:"gte=0"`
	SeasonRate    float64    `json:"seasonRate" validate:"gte=0"`
	OffSeasonRate float64    `json:"offSeasonRate" validate:"gte=0"`
}

type HotelRequest struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Place        string            `json:"place" validate:"required,max=200"`
	StarCategory int               `json:"starCategory" validate:"gte=1,lte=5"`
	RoomTypes    []RoomTypeRequest `json:"roomTypes" validate:"dive"`
}

type SightseeingDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	TransportationMode TransportationMode `json:"transportationMode"`
	VehicleCosts       VehicleCosts       `json:"vehicleCosts"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

type SightseeingRequest struct {
	Name               string             `json:"name" validate:"required,max=200"`
	Description        string             `json:"description,omitempty"`
	TransportationMode TransportationMode `json:"transportationMode" validate:"required,oneof=cab self-drive-car self-drive-scooter"`
	VehicleCosts       VehicleCosts       `json:"vehicleCosts"`
}

type ActivityOptionDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Cost           float64   `json:"cost"`
	CostForHowMany int       `json:"costForHowMany"`
}

type ActivityDTO struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Location  string              `json:"location,omitempty"`
	Options   []ActivityOptionDTO `json:"options"`
	CreatedAt string              `json:"createdAt"`
	UpdatedAt string              `json:"updatedAt"`
}

type ActivityOptionRequest struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Name           string     `json:"name" validate:"required,max=200"`
	Cost           float64    `json:"cost" validate:"gte=0"`
	CostForHowMany int        `json:"costForHowMany" validate:"gte=1"`
}

type ActivityRequest struct {
	Name     string                  `json:"name" validate:"required,max=200"`
	Location string                  `json:"location,omitempty" validate:"max=200"`
	Options  []ActivityOptionRequest `json:"options" validate:"dive"`
}

type EntryTicketDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Cost          float64    `json:"cost"`
	SightseeingID *uuid.UUID `json:"sightseeingId,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

type EntryTicketRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	Cost          float64    `json:"cost" validate:"gte=0"`
	SightseeingID *uuid.UUID `json:"sightseeingId,omitempty"`
}

type MealDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      MealType  `json:"type"`
	Place     string    `json:"place"`
	Cost      float64   `json:"cost"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type MealRequest struct {
	Type  MealType `json:"type" validate:"required,oneof=breakfast lunch dinner"`
	Place string   `json:"place" validate:"required,max=200"`
	Cost  float64  `json:"cost" validate:"gte=0"`
}

// CatalogSnapshot is the whole catalog as one JSON document
type CatalogSnapshot struct {
	Version         int                 `json:"version"`
	ExportedAt      string              `json:"exportedAt"`
	Transportations []TransportationDTO `json:"transportations"`
	Hotels          []HotelDTO          `json:"hotels"`
	Sightseeings    []SightseeingDTO    `json:"sightseeings"`
	Activities      []ActivityDTO       `json:"activities"`
	EntryTickets    []EntryTicketDTO    `json:"entryTickets"`
	Meals           []MealDTO           `json:"meals"`
}

// SnapshotResultDTO reports a snapshot export or import
type SnapshotResultDTO struct {
	Path            string `json:"path,omitempty"`
	Transportations int    `json:"transportations"`
	Hotels          int    `json:"hotels"`
	Sightseeings    int    `json:"sightseeings"`
	Activities      int    `json:"activities"`
	EntryTickets    int    `json:"entryTickets"`
	Meals           int    `json:"meals"`
}

// Clients and itineraries

type ClientDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	StartDate          string             `json:"startDate,omitempty"`
	EndDate            string             `json:"endDate,omitempty"`
	IsFlexible         bool               `json:"isFlexible"`
	FlexibleMonth      string             `json:"flexibleMonth,omitempty"`
	Adults             int                `json:"adults"`
	Children           int                `json:"children"`
	NumberOfDays       int                `json:"numberOfDays"`
	TransportationMode TransportationMode `json:"transportationMode"`
	TransportationID   *uuid.UUID         `json:"transportationId,omitempty"`
	CreatedByID        uuid.UUID          `json:"createdById"`
	CreatedByName      string             `json:"createdByName,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

// ClientRequest creates or replaces a trip request. Dates are YYYY-MM-DD.
type ClientRequest struct {
	Name               string             `json:"name" validate:"required,max=200"`
	Email              string             `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone              string             `json:"phone,omitempty" validate:"max=50"`
	StartDate          string             `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate            string             `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsFlexible         bool               `json:"isFlexible"`
	FlexibleMonth      string             `json:"flexibleMonth,omitempty" validate:"max=20"`
	Adults             int                `json:"adults" validate:"gte=1"`
	Children           int                `json:"children" validate:"gte=0"`
	NumberOfDays       int                `json:"numberOfDays" validate:"gte=0,lte=60"`
	TransportationMode TransportationMode `json:"transportationMode" validate:"required,oneof=cab self-drive-car self-drive-scooter"`
	TransportationID   *uuid.UUID         `json:"transportationId,omitempty"`
}

type ItineraryChangeDTO struct {
	Version     int                 `json:"version"`
	ChangeType  ItineraryChangeType `json:"changeType"`
	Description string              `json:"description"`
	AuthorID    *uuid.UUID          `json:"authorId,omitempty"`
	AuthorName  string              `json:"authorName,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

type ItineraryDTO struct {
	ID                uuid.UUID            `json:"id"`
	ClientID          uuid.UUID            `json:"clientId"`
	Client            ClientSnapshot       `json:"client"`
	DayPlans          []DayPlan            `json:"dayPlans"`
	Season            Season               `json:"season"`
	VehicleClass      VehicleClass         `json:"vehicleClass,omitempty"`
	SeasonOverride    Season               `json:"seasonOverride,omitempty"`
	VehicleOverride   VehicleClass         `json:"vehicleClassOverride,omitempty"`
	TotalBaseCost     float64              `json:"totalBaseCost"`
	Markup            float64              `json:"markup"`
	ProfitMargin      float64              `json:"profitMargin"`
	FinalPrice        float64              `json:"finalPrice"`
	ExchangeRate      float64              `json:"exchangeRate"`
	Currency          string               `json:"currency"`
	SecondaryCurrency string               `json:"secondaryCurrency,omitempty"`
	CostBreakdown     CostBreakdown        `json:"costBreakdown"`
	Version           int                  `json:"version"`
	Status            ItineraryStatus      `json:"status"`
	FixedItineraryID  *uuid.UUID           `json:"fixedItineraryId,omitempty"`
	CreatedByID       uuid.UUID            `json:"createdById"`
	CreatedByName     string               `json:"createdByName,omitempty"`
	CreatedByRole     UserRoleType         `json:"createdByRole,omitempty"`
	ChangeLog         []ItineraryChangeDTO `json:"changeLog,omitempty"`
	CreatedAt         string               `json:"createdAt"`
	UpdatedAt         string               `json:"updatedAt"`
}

type CreateItineraryRequest struct {
	ClientID          uuid.UUID    `json:"clientId" validate:"required"`
	DayPlans          []DayPlan    `json:"dayPlans"`
	Season            Season       `json:"season,omitempty" validate:"omitempty,oneof=peak season off-season"`
	VehicleClass      VehicleClass `json:"vehicleClass,omitempty" validate:"omitempty,oneof=avanza hiace miniBus bus32 bus39"`
	ProfitMargin      float64      `json:"profitMargin" validate:"gte=0"`
	ExchangeRate      float64      `json:"exchangeRate" validate:"gte=0"`
	SecondaryCurrency string       `json:"secondaryCurrency,omitempty" validate:"omitempty,len=3"`
}

// UpdateItineraryRequest changes the day plans and trip options of an
// itinerary. Nil fields are left unchanged; an empty Season or
// VehicleClass clears the override so the value is derived again.
type UpdateItineraryRequest struct {
	DayPlans      []DayPlan     `json:"dayPlans,omitempty"`
	Season        *Season       `json:"season,omitempty" validate:"omitempty,oneof=peak season off-season"`
	VehicleClass  *VehicleClass `json:"vehicleClass,omitempty" validate:"omitempty,oneof=avanza hiace miniBus bus32 bus39"`
	RefreshClient bool          `json:"refreshClient,omitempty"`
	Description   string        `json:"description,omitempty" validate:"max=500"`
}

type UpdateItineraryPricingRequest struct {
	ProfitMargin      *float64 `json:"profitMargin,omitempty" validate:"omitempty,gte=0"`
	ExchangeRate      *float64 `json:"exchangeRate,omitempty" validate:"omitempty,gte=0"`
	SecondaryCurrency *string  `json:"secondaryCurrency,omitempty" validate:"omitempty,len=3"`
}

type UpdateItineraryStatusRequest struct {
	Status ItineraryStatus `json:"status" validate:"required,oneof=draft quoted confirmed cancelled"`
}

// QuoteDTO is a price in the base currency and, for display, a second currency
type QuoteDTO struct {
	ItineraryID         uuid.UUID `json:"itineraryId"`
	Version             int       `json:"version"`
	BaseCost            float64   `json:"baseCost"`
	Markup              float64   `json:"markup"`
	ProfitMargin        float64   `json:"profitMargin"`
	FinalPrice          float64   `json:"finalPrice"`
	Currency            string    `json:"currency"`
	ExchangeRate        float64   `json:"exchangeRate"`
	SecondaryCurrency   string    `json:"secondaryCurrency,omitempty"`
	ConvertedBaseCost   float64   `json:"convertedBaseCost,omitempty"`
	ConvertedFinalPrice float64   `json:"convertedFinalPrice,omitempty"`
	PerPerson           float64   `json:"perPerson"`
}

type ItineraryDocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itineraryId"`
	Version     int       `json:"version"`
	FileName    string    `json:"fileName"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

type FixedItineraryDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	NumberOfDays       int                `json:"numberOfDays"`
	TransportationMode TransportationMode `json:"transportationMode"`
	DayPlans           []DayPlan          `json:"dayPlans"`
	BaseCost           float64            `json:"baseCost"`
	Inclusions         string             `json:"inclusions,omitempty"`
	Exclusions         string             `json:"exclusions,omitempty"`
	IsActive           bool               `json:"isActive"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

type FixedItineraryRequest struct {
	Name               string             `json:"name" validate:"required,max=200"`
	NumberOfDays       int                `json:"numberOfDays" validate:"gte=1,lte=60"`
	TransportationMode TransportationMode `json:"transportationMode" validate:"required,oneof=cab self-drive-car self-drive-scooter"`
	DayPlans           []DayPlan          `json:"dayPlans"`
	BaseCost           float64            `json:"baseCost" validate:"gte=0"`
	Inclusions         string             `json:"inclusions,omitempty"`
	Exclusions         string             `json:"exclusions,omitempty"`
	IsActive           *bool              `json:"isActive,omitempty"`
}

type ApplyFixedItineraryRequest struct {
	ClientID          uuid.UUID `json:"clientId" validate:"required"`
	ProfitMargin      float64   `json:"profitMargin" validate:"gte=0"`
	ExchangeRate      float64   `json:"exchangeRate" validate:"gte=0"`
	SecondaryCurrency string    `json:"secondaryCurrency,omitempty" validate:"omitempty,len=3"`
}

// Follow-up workflow

type SalesClientDTO struct {
	ID                    uuid.UUID      `json:"id"`
	Name                  string         `json:"name"`
	Email                 string         `json:"email,omitempty"`
	Phone                 string         `json:"phone,omitempty"`
	Destination           string         `json:"destination,omitempty"`
	TravelDate            string         `json:"travelDate,omitempty"`
	Adults                int            `json:"adults"`
	Children              int            `json:"children"`
	ItineraryID           *uuid.UUID     `json:"itineraryId,omitempty"`
	CurrentFollowUpStatus FollowUpStatus `json:"currentFollowUpStatus"`
	StatusLabel           string         `json:"statusLabel"`
	IsTerminal            bool           `json:"isTerminal"`
	NextFollowUpDate      string         `json:"nextFollowUpDate,omitempty"`
	NextFollowUpTime      string         `json:"nextFollowUpTime,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	SalesPersonID         uuid.UUID      `json:"salesPersonId"`
	SalesPersonName       string         `json:"salesPersonName,omitempty"`
	CreatedAt             string         `json:"createdAt"`
	UpdatedAt             string         `json:"updatedAt"`
}

type SalesClientRequest struct {
	Name             string     `json:"name" validate:"required,max=200"`
	Email            string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone            string     `json:"phone,omitempty" validate:"max=50"`
	Destination      string     `json:"destination,omitempty" validate:"max=200"`
	TravelDate       string     `json:"travelDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults           int        `json:"adults" validate:"gte=1"`
	Children         int        `json:"children" validate:"gte=0"`
	ItineraryID      *uuid.UUID `json:"itineraryId,omitempty"`
	NextFollowUpDate string     `json:"nextFollowUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NextFollowUpTime string     `json:"nextFollowUpTime,omitempty" validate:"omitempty,datetime=15:04"`
	Notes            string     `json:"notes,omitempty"`
}

// UpdateFollowUpStatusRequest writes a new status. ClearNextFollowUp wins
// over NextFollowUpDate/Time when both are given.
type UpdateFollowUpStatusRequest struct {
	Status            FollowUpStatus `json:"status" validate:"required"`
	NextFollowUpDate  *string        `json:"nextFollowUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NextFollowUpTime  *string        `json:"nextFollowUpTime,omitempty" validate:"omitempty,datetime=15:04"`
	ClearNextFollowUp bool           `json:"clearNextFollowUp,omitempty"`
	Notes             string         `json:"notes,omitempty" validate:"max=1000"`
}

type FollowUpHistoryDTO struct {
	ID            uuid.UUID      `json:"id"`
	FromStatus    FollowUpStatus `json:"fromStatus,omitempty"`
	ToStatus      FollowUpStatus `json:"toStatus"`
	Notes         string         `json:"notes,omitempty"`
	ChangedByID   *uuid.UUID     `json:"changedById,omitempty"`
	ChangedByName string         `json:"changedByName,omitempty"`
	ChangedAt     string         `json:"changedAt"`
}

type FollowUpStatusDTO struct {
	Value      FollowUpStatus `json:"value"`
	Label      string         `json:"label"`
	IsTerminal bool           `json:"isTerminal"`
}

// Assignments, checklist and chat

type ChecklistItemDTO struct {
	ID               uuid.UUID         `json:"id"`
	AssignmentID     uuid.UUID         `json:"assignmentId"`
	ItemType         ChecklistItemType `json:"itemType"`
	DayNumber        int               `json:"dayNumber"`
	Description      string            `json:"description"`
	ReferenceID      *uuid.UUID        `json:"referenceId,omitempty"`
	IsCompleted      bool              `json:"isCompleted"`
	CompletedAt      *string           `json:"completedAt,omitempty"`
	CompletedByID    *uuid.UUID        `json:"completedById,omitempty"`
	CompletedByName  string            `json:"completedByName,omitempty"`
	BookingReference string            `json:"bookingReference,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// ChecklistDayGroupDTO groups checklist items by day; Day 0 is general
type ChecklistDayGroupDTO struct {
	Day   int                `json:"day"`
	Label string             `json:"label"`
	Items []ChecklistItemDTO `json:"items"`
}

type AssignmentDTO struct {
	ID                 uuid.UUID              `json:"id"`
	SalesClientID      uuid.UUID              `json:"salesClientId"`
	SalesClientName    string                 `json:"salesClientName,omitempty"`
	ItineraryID        *uuid.UUID             `json:"itineraryId,omitempty"`
	SalesPersonID      uuid.UUID              `json:"salesPersonId"`
	OperationsPersonID uuid.UUID              `json:"operationsPersonId"`
	Status             AssignmentStatus       `json:"status"`
	Notes              string                 `json:"notes,omitempty"`
	CompletionPercent  int                    `json:"completionPercent"`
	TotalItems         int                    `json:"totalItems"`
	CompletedItems     int                    `json:"completedItems"`
	Groups             []ChecklistDayGroupDTO `json:"groups,omitempty"`
	CreatedAt          string                 `json:"createdAt"`
	UpdatedAt          string                 `json:"updatedAt"`
}

type CreateAssignmentRequest struct {
	SalesClientID      uuid.UUID  `json:"salesClientId" validate:"required"`
	OperationsPersonID uuid.UUID  `json:"operationsPersonId" validate:"required"`
	ItineraryID        *uuid.UUID `json:"itineraryId,omitempty"`
	GenerateChecklist  bool       `json:"generateChecklist"`
	Notes              string     `json:"notes,omitempty"`
}

type UpdateAssignmentStatusRequest struct {
	Status AssignmentStatus `json:"status" validate:"required,oneof=pending in-progress completed"`
}

type AddChecklistItemRequest struct {
	ItemType    ChecklistItemType `json:"itemType" validate:"required,oneof=hotel transport activity ticket meal other"`
	DayNumber   int               `json:"dayNumber" validate:"gte=0"`
	Description string            `json:"description" validate:"required,max=500"`
	ReferenceID *uuid.UUID        `json:"referenceId,omitempty"`
}

// UpdateChecklistDetailsRequest edits booking details without touching completion
type UpdateChecklistDetailsRequest struct {
	BookingReference *string `json:"bookingReference,omitempty" validate:"omitempty,max=200"`
	Notes            *string `json:"notes,omitempty"`
}

type CompletionDTO struct {
	AssignmentID uuid.UUID `json:"assignmentId"`
	Total        int       `json:"total"`
	Completed    int       `json:"completed"`
	Percent      int       `json:"percent"`
}

type ChatMessageDTO struct {
	ID           uuid.UUID    `json:"id"`
	AssignmentID uuid.UUID    `json:"assignmentId"`
	SenderID     uuid.UUID    `json:"senderId"`
	SenderName   string       `json:"senderName,omitempty"`
	SenderRole   UserRoleType `json:"senderRole"`
	Message      string       `json:"message"`
	IsRead       bool         `json:"isRead"`
	CreatedAt    string       `json:"createdAt"`
}

type SendChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// Notifications and audit

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	UserRole    string      `json:"userRole,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	Path        string      `json:"path"`
	Method      string      `json:"method"`
	StatusCode  int         `json:"statusCode"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	RequestID   string      `json:"requestId,omitempty"`
	PerformedAt string      `json:"performedAt"`
}
