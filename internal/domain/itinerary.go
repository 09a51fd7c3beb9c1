package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client is a trip request. Either StartDate/EndDate or IsFlexible with
// FlexibleMonth describes when the party travels; both are kept so the
// flag can be toggled back without losing data.
type Client struct {
	BaseModel
	Name               string             `gorm:"type:varchar(200);not null;index"`
	Email              string             `gorm:"type:varchar(255)"`
	Phone              string             `gorm:"type:varchar(50)"`
	StartDate          *time.Time         `gorm:"type:date;column:start_date"`
	EndDate            *time.Time         `gorm:"type:date;column:end_date"`
	IsFlexible         bool               `gorm:"not null;default:false;column:is_flexible"`
	FlexibleMonth      string             `gorm:"type:varchar(20);column:flexible_month"`
	Adults             int                `gorm:"not null;default:1"`
	Children           int                `gorm:"not null;default:0"`
	NumberOfDays       int                `gorm:"not null;default:1;column:number_of_days"`
	TransportationMode TransportationMode `gorm:"type:varchar(50);not null;default:'cab';column:transportation_mode"`
	TransportationID   *uuid.UUID         `gorm:"type:uuid;column:transportation_id"`
	CreatedByID        uuid.UUID          `gorm:"type:uuid;index;column:created_by_id"`
	CreatedByName      string             `gorm:"type:varchar(200);column:created_by_name"`
}

// Pax returns the total number of travellers
func (c *Client) Pax() int {
	return c.Adults + c.Children
}

// HotelSelection picks one room type of one hotel for a night
type HotelSelection struct {
	HotelID    uuid.UUID `json:"hotelId"`
	RoomTypeID uuid.UUID `json:"roomTypeId"`
}

// ActivitySelection picks one option of one activity
type ActivitySelection struct {
	ActivityID uuid.UUID `json:"activityId"`
	OptionID   uuid.UUID `json:"optionId"`
}

// DayPlan is one trip day's selected services. Day is 1-based.
type DayPlan struct {
	Day            int                 `json:"day"`
	Hotel          *HotelSelection     `json:"hotel,omitempty"`
	SightseeingIDs []uuid.UUID         `json:"sightseeingIds"`
	Activities     []ActivitySelection `json:"activities"`
	TicketIDs      []uuid.UUID         `json:"ticketIds"`
	MealIDs        []uuid.UUID         `json:"mealIds"`
}

// ClientSnapshot is the copy of a client embedded in an itinerary
type ClientSnapshot struct {
	ClientID           uuid.UUID          `json:"clientId"`
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
}

// DayCost is the cost contribution of a single day plan
type DayCost struct {
	Day         int     `json:"day"`
	Hotel       float64 `json:"hotel"`
	Sightseeing float64 `json:"sightseeing"`
	Activities  float64 `json:"activities"`
	Tickets     float64 `json:"tickets"`
	Meals       float64 `json:"meals"`
	Total       float64 `json:"total"`
}

// CostBreakdown is the result of aggregating day plans against the catalog
type CostBreakdown struct {
	Days           []DayCost `json:"days"`
	Hotel          float64   `json:"hotel"`
	Sightseeing    float64   `json:"sightseeing"`
	Activities     float64   `json:"activities"`
	Tickets        float64   `json:"tickets"`
	Meals          float64   `json:"meals"`
	Transportation float64   `json:"transportation"`
	Total          float64   `json:"total"`
	Misses         []string  `json:"misses,omitempty"`
}

// ItineraryStatus tracks the business state of an itinerary
type ItineraryStatus string

const (
	ItineraryStatusDraft     ItineraryStatus = "draft"
	ItineraryStatusQuoted    ItineraryStatus = "quoted"
	ItineraryStatusConfirmed ItineraryStatus = "confirmed"
	ItineraryStatusCancelled ItineraryStatus = "cancelled"
)

// IsValid reports whether s is a known itinerary status
func (s ItineraryStatus) IsValid() bool {
	switch s {
	case ItineraryStatusDraft, ItineraryStatusQuoted, ItineraryStatusConfirmed, ItineraryStatusCancelled:
		return true
	}
	return false
}

// Itinerary is a priced trip: a client snapshot, its day plans and the
// computed cost. Version increases by one with every persisted change and
// each change appends one ItineraryChange row.
//
// SeasonOverride and VehicleClassOverride hold what the user chose, if
// anything. Season and VehicleClass are the effective values derived from
// the overrides and the client snapshot on every recalculation.
type Itinerary struct {
	BaseModel
	ClientID             uuid.UUID                          `gorm:"type:uuid;not null;index;column:client_id"`
	ClientSnapshot       datatypes.JSONType[ClientSnapshot] `gorm:"column:client_snapshot"`
	DayPlans             datatypes.JSONSlice[DayPlan]       `gorm:"column:day_plans"`
	SeasonOverride       Season                             `gorm:"type:varchar(20);column:season_override"`
	VehicleClassOverride VehicleClass                       `gorm:"type:varchar(20);column:vehicle_class_override"`
	Season               Season                             `gorm:"type:varchar(20);not null;default:'season'"`
	VehicleClass         VehicleClass                       `gorm:"type:varchar(20);column:vehicle_class"`
	TotalBaseCost     float64                            `gorm:"type:decimal(15,2);not null;default:0;column:total_base_cost"`
	Markup            float64                            `gorm:"type:decimal(15,2);not null;default:0"`
	ProfitMargin      float64                            `gorm:"type:decimal(15,2);not null;default:0;column:profit_margin"`
	FinalPrice        float64                            `gorm:"type:decimal(15,2);not null;default:0;column:final_price"`
	ExchangeRate      float64                            `gorm:"type:decimal(15,6);not null;default:1;column:exchange_rate"`
	Currency          string                             `gorm:"type:varchar(3);not null;default:'USD'"`
	SecondaryCurrency string                             `gorm:"type:varchar(3);column:secondary_currency"`
	CostBreakdown     datatypes.JSONType[CostBreakdown]  `gorm:"column:cost_breakdown"`
	Version           int                                `gorm:"not null;default:1"`
	Status            ItineraryStatus                    `gorm:"type:varchar(20);not null;default:'draft';index"`
	FixedItineraryID  *uuid.UUID                         `gorm:"type:uuid;column:fixed_itinerary_id"`
	CreatedByID       uuid.UUID                          `gorm:"type:uuid;index;column:created_by_id"`
	CreatedByName     string                             `gorm:"type:varchar(200);column:created_by_name"`
	CreatedByRole     UserRoleType                       `gorm:"type:varchar(50);column:created_by_role"`
	Changes           []ItineraryChange                  `gorm:"foreignKey:ItineraryID;constraint:OnDelete:CASCADE"`
}

// ItineraryChangeType classifies a change log entry
type ItineraryChangeType string

const (
	ChangeTypeCreated         ItineraryChangeType = "created"
	ChangeTypeDayPlansUpdated ItineraryChangeType = "day_plans_updated"
	ChangeTypeClientUpdated   ItineraryChangeType = "client_updated"
	ChangeTypePricingUpdated  ItineraryChangeType = "pricing_updated"
	ChangeTypeRecalculated    ItineraryChangeType = "recalculated"
	ChangeTypeStatusChanged   ItineraryChangeType = "status_changed"
	ChangeTypeDocumentIssued  ItineraryChangeType = "document_issued"
)

// ItineraryChange is one append-only change log entry
type ItineraryChange struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ItineraryID uuid.UUID           `gorm:"type:uuid;not null;index;column:itinerary_id"`
	Version     int                 `gorm:"not null"`
	ChangeType  ItineraryChangeType `gorm:"type:varchar(50);not null;column:change_type"`
	Description string              `gorm:"type:text"`
	AuthorID    *uuid.UUID          `gorm:"type:uuid;column:author_id"`
	AuthorName  string              `gorm:"type:varchar(200);column:author_name"`
	CreatedAt   time.Time           `gorm:"not null;index"`
}

// BeforeCreate assigns an ID and timestamp
func (c *ItineraryChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// FixedItinerary is a reusable day-plan template for a trip length and mode
type FixedItinerary struct {
	BaseModel
	Name               string                       `gorm:"type:varchar(200);not null"`
	NumberOfDays       int                          `gorm:"not null;index;column:number_of_days"`
	TransportationMode TransportationMode           `gorm:"type:varchar(50);not null;index;column:transportation_mode"`
	DayPlans           datatypes.JSONSlice[DayPlan] `gorm:"column:day_plans"`
	BaseCost           float64                      `gorm:"type:decimal(15,2);not null;default:0;column:base_cost"`
	Inclusions         string                       `gorm:"type:text"`
	Exclusions         string                       `gorm:"type:text"`
	IsActive           bool                         `gorm:"not null;column:is_active"`
}

// ItineraryDocument is a generated quote PDF kept in blob storage
type ItineraryDocument struct {
	BaseModel
	ItineraryID uuid.UUID `gorm:"type:uuid;not null;index;column:itinerary_id"`
	Version     int       `gorm:"not null"`
	FileName    string    `gorm:"type:varchar(255);not null;column:file_name"`
	StoragePath string    `gorm:"type:varchar(500);not null;column:storage_path"`
	Size        int64     `gorm:"not null;default:0"`
	CreatedByID uuid.UUID `gorm:"type:uuid;column:created_by_id"`
}
