package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tripdesk/agency-api/internal/domain"
)

// =============================================================================
// FollowUpStatus Tests
// =============================================================================

func TestFollowUpStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.FollowUpStatus
		expected bool
	}{
		{"itinerary-created is valid", domain.FollowUpItineraryCreated, true},
		{"itinerary-sent is valid", domain.FollowUpItinerarySent, true},
		{"1st follow-up is valid", domain.FollowUpFirst, true},
		{"4th follow-up is valid", domain.FollowUpFourth, true},
		{"updated-itinerary-sent is valid", domain.FollowUpUpdatedItinerarySent, true},
		{"confirmed is valid", domain.FollowUpAdvancePaidConfirmed, true},
		{"dead is valid", domain.FollowUpDead, true},
		{"5th follow-up is invalid", domain.FollowUpStatus("5th-follow-up"), false},
		{"empty is invalid", domain.FollowUpStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestFollowUpStatus_IsTerminal(t *testing.T) {
	for _, s := range domain.AllFollowUpStatuses() {
		expected := s == domain.FollowUpAdvancePaidConfirmed || s == domain.FollowUpDead
		assert.Equal(t, expected, s.IsTerminal(), string(s))
	}
}

func TestAllFollowUpStatuses_Order(t *testing.T) {
	all := domain.AllFollowUpStatuses()
	assert.Len(t, all, 10)
	assert.Equal(t, domain.FollowUpItineraryCreated, all[0])
	assert.Equal(t, domain.FollowUpDead, all[len(all)-1])
	for _, s := range all {
		assert.NotEmpty(t, s.Label())
	}
}

// =============================================================================
// Checklist completion Tests
// =============================================================================

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		expected  int
	}{
		{"empty checklist is zero", 0, 0, 0},
		{"one of three rounds down", 1, 3, 33},
		{"two of three rounds up", 2, 3, 67},
		{"half", 1, 2, 50},
		{"all done", 4, 4, 100},
		{"none done", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.CompletionPercent(tt.completed, tt.total))
		})
	}
}

func TestChecklistItemType_IsValid(t *testing.T) {
	assert.True(t, domain.ChecklistHotel.IsValid())
	assert.True(t, domain.ChecklistOther.IsValid())
	assert.False(t, domain.ChecklistItemType("visa").IsValid())
}

// =============================================================================
// Catalog Tests
// =============================================================================

func TestRoomType_RateFor(t *testing.T) {
	room := domain.RoomType{PeakRate: 120, SeasonRate: 100, OffSeasonRate: 80}

	assert.Equal(t, 120.0, room.RateFor(domain.SeasonPeak))
	assert.Equal(t, 100.0, room.RateFor(domain.SeasonRegular))
	assert.Equal(t, 80.0, room.RateFor(domain.SeasonOffSeason))
	assert.Equal(t, 100.0, room.RateFor(""), "unset season falls back to the season tier")
}

func TestVehicleCosts_For(t *testing.T) {
	costs := domain.VehicleCosts{Avanza: 40, Hiace: 60, MiniBus: 90, Bus32: 150, Bus39: 180}

	assert.Equal(t, 40.0, costs.For(domain.VehicleAvanza))
	assert.Equal(t, 60.0, costs.For(domain.VehicleHiace))
	assert.Equal(t, 90.0, costs.For(domain.VehicleMiniBus))
	assert.Equal(t, 150.0, costs.For(domain.VehicleBus32))
	assert.Equal(t, 180.0, costs.For(domain.VehicleBus39))
	assert.Equal(t, 0.0, costs.For(domain.VehicleClass("limo")))
}

func TestTransportationMode(t *testing.T) {
	assert.True(t, domain.TransportSelfDriveCar.IsSelfDrive())
	assert.True(t, domain.TransportSelfDriveScooter.IsSelfDrive())
	assert.False(t, domain.TransportCab.IsSelfDrive())
	assert.False(t, domain.TransportationMode("boat").IsValid())
}

func TestUserRoleType_IsValid(t *testing.T) {
	for _, r := range domain.AllRoles() {
		assert.True(t, r.IsValid(), string(r))
	}
	assert.False(t, domain.UserRoleType("superuser").IsValid())
}
