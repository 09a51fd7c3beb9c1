package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TransportationMode is how the party moves around during the trip
type TransportationMode string

const (
	TransportCab              TransportationMode = "cab"
	TransportSelfDriveCar     TransportationMode = "self-drive-car"
	TransportSelfDriveScooter TransportationMode = "self-drive-scooter"
)

// AllTransportationModes returns the supported modes
func AllTransportationModes() []TransportationMode {
	return []TransportationMode{TransportCab, TransportSelfDriveCar, TransportSelfDriveScooter}
}

// IsValid reports whether m is a known mode
func (m TransportationMode) IsValid() bool {
	switch m {
	case TransportCab, TransportSelfDriveCar, TransportSelfDriveScooter:
		return true
	}
	return false
}

// IsSelfDrive reports whether the party drives themselves
func (m TransportationMode) IsSelfDrive() bool {
	return m == TransportSelfDriveCar || m == TransportSelfDriveScooter
}

// Season selects which nightly rate of a room type applies
type Season string

const (
	SeasonPeak      Season = "peak"
	SeasonRegular   Season = "season"
	SeasonOffSeason Season = "off-season"
)

// IsValid reports whether s is a known season tier
func (s Season) IsValid() bool {
	switch s {
	case SeasonPeak, SeasonRegular, SeasonOffSeason:
		return true
	}
	return false
}

// VehicleClass keys the per-vehicle cost map of cab sightseeing
type VehicleClass string

const (
	VehicleAvanza  VehicleClass = "avanza"
	VehicleHiace   VehicleClass = "hiace"
	VehicleMiniBus VehicleClass = "miniBus"
	VehicleBus32   VehicleClass = "bus32"
	VehicleBus39   VehicleClass = "bus39"
)

// AllVehicleClasses returns vehicle classes from smallest to largest
func AllVehicleClasses() []VehicleClass {
	return []VehicleClass{VehicleAvanza, VehicleHiace, VehicleMiniBus, VehicleBus32, VehicleBus39}
}

// IsValid reports whether v is a known vehicle class
func (v VehicleClass) IsValid() bool {
	switch v {
	case VehicleAvanza, VehicleHiace, VehicleMiniBus, VehicleBus32, VehicleBus39:
		return true
	}
	return false
}

// MealType is the slot a meal is served in
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// IsValid reports whether t is a known meal type
func (t MealType) IsValid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// Transportation is a bookable way of getting around. Cab has no daily
// cost; its price comes from the vehicle costs on each sightseeing spot.
type Transportation struct {
	BaseModel
	Type       TransportationMode `gorm:"type:varchar(50);not null;index"`
	Name       string             `gorm:"type:varchar(200);not null"`
	CostPerDay float64            `gorm:"type:decimal(15,2);not null;default:0;column:cost_per_day"`
}

// Hotel with its room types
type Hotel struct {
	BaseModel
	Name         string     `gorm:"type:varchar(200);not null;index"`
	Place        string     `gorm:"type:varchar(200);not null;index"`
	StarCategory int        `gorm:"not null;default:3;column:star_category"`
	RoomTypes    []RoomType `gorm:"foreignKey:HotelID;constraint:OnDelete:CASCADE"`
}

// RoomType carries three seasonal nightly rates
type RoomType struct {
	BaseModel
	HotelID       uuid.UUID `gorm:"type:uuid;not null;index;column:hotel_id"`
	Name          string    `gorm:"type:varchar(200);not null"`
	SortOrder     int       `gorm:"not null;default:0;column:sort_order"`
	PeakRate      float64   `gorm:"type:decimal(15,2);not null;default:0;column:peak_rate"`
	SeasonRate    float64   `gorm:"type:decimal(15,2);not null;default:0;column:season_rate"`
	OffSeasonRate float64   `gorm:"type:decimal(15,2);not null;default:0;column:off_season_rate"`
}

// RateFor returns the nightly rate for a season, defaulting to the season tier
func (r *RoomType) RateFor(season Season) float64 {
	switch season {
	case SeasonPeak:
		return r.PeakRate
	case SeasonOffSeason:
		return r.OffSeasonRate
	default:
		return r.SeasonRate
	}
}

// VehicleCosts is the per-day cost of visiting a sightseeing spot by cab
type VehicleCosts struct {
	Avanza  float64 `json:"avanza"`
	Hiace   float64 `json:"hiace"`
	MiniBus float64 `json:"miniBus"`
	Bus32   float64 `json:"bus32"`
	Bus39   float64 `json:"bus39"`
}

// For returns the cost for a vehicle class; unknown classes cost nothing
func (v VehicleCosts) For(class VehicleClass) float64 {
	switch class {
	case VehicleAvanza:
		return v.Avanza
	case VehicleHiace:
		return v.Hiace
	case VehicleMiniBus:
		return v.MiniBus
	case VehicleBus32:
		return v.Bus32
	case VehicleBus39:
		return v.Bus39
	}
	return 0
}

// Sightseeing is a place that can be visited during a day
type Sightseeing struct {
	BaseModel
	Name               string                           `gorm:"type:varchar(200);not null;index"`
	Description        string                           `gorm:"type:text"`
	TransportationMode TransportationMode               `gorm:"type:varchar(50);not null;default:'cab';column:transportation_mode"`
	VehicleCosts       datatypes.JSONType[VehicleCosts] `gorm:"column:vehicle_costs"`
}

// Activity with its priced options
type Activity struct {
	BaseModel
	Name     string           `gorm:"type:varchar(200);not null;index"`
	Location string           `gorm:"type:varchar(200)"`
	Options  []ActivityOption `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
}

// ActivityOption is priced for a group: Cost covers CostForHowMany people
type ActivityOption struct {
	BaseModel
	ActivityID     uuid.UUID `gorm:"type:uuid;not null;index;column:activity_id"`
	Name           string    `gorm:"type:varchar(200);not null"`
	SortOrder      int       `gorm:"not null;default:0;column:sort_order"`
	Cost           float64   `gorm:"type:decimal(15,2);not null;default:0"`
	CostForHowMany int       `gorm:"not null;default:1;column:cost_for_how_many"`
}

// EntryTicket is a flat-priced admission
type EntryTicket struct {
	BaseModel
	Name          string     `gorm:"type:varchar(200);not null;index"`
	Cost          float64    `gorm:"type:decimal(15,2);not null;default:0"`
	SightseeingID *uuid.UUID `gorm:"type:uuid;index;column:sightseeing_id"`
}

// Meal is priced per person
type Meal struct {
	BaseModel
	Type  MealType `gorm:"type:varchar(20);not null;index"`
	Place string   `gorm:"type:varchar(200);not null"`
	Cost  float64  `gorm:"type:decimal(15,2);not null;default:0"`
}
