package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/pricing"
)

func TestMarkups_FinalPrice(t *testing.T) {
	m := pricing.DefaultMarkups()

	tests := []struct {
		name     string
		role     domain.UserRoleType
		expected float64
	}{
		{"agent adds 35", domain.RoleAgent, 985},
		{"sales adds 50", domain.RoleSales, 1000},
		{"admin adds nothing", domain.RoleAdmin, 950},
		{"operations has no markup", domain.RoleOperations, 950},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.FinalPrice(850, tt.role, 100)
			assert.Equal(t, tt.expected, p.FinalPrice)
			assert.Equal(t, 850.0, p.BaseCost)
			assert.Equal(t, 100.0, p.ProfitMargin)
		})
	}
}

func TestConvert(t *testing.T) {
	assert.Equal(t, 1477.5, pricing.Convert(985, 1.5))
	assert.InDelta(t, 15650497.55, pricing.Convert(985, 15888.83), 0.01)
	assert.Equal(t, 0.0, pricing.Convert(985, 0))
}

func TestVehicleTable_ClassFor(t *testing.T) {
	table := pricing.DefaultVehicleTable()

	assert.Equal(t, domain.VehicleAvanza, table.ClassFor(1))
	assert.Equal(t, domain.VehicleAvanza, table.ClassFor(5))
	assert.Equal(t, domain.VehicleHiace, table.ClassFor(6))
	assert.Equal(t, domain.VehicleMiniBus, table.ClassFor(20))
	assert.Equal(t, domain.VehicleBus32, table.ClassFor(21))
	assert.Equal(t, domain.VehicleBus39, table.ClassFor(39))
	assert.Equal(t, domain.VehicleBus39, table.ClassFor(60), "oversized parties get the largest class")
}

func TestNewVehicleTable_SortsAndFilters(t *testing.T) {
	table := pricing.NewVehicleTable([]pricing.VehicleThreshold{
		{Class: domain.VehicleHiace, MaxPax: 10},
		{Class: domain.VehicleClass("tuk-tuk"), MaxPax: 2},
		{Class: domain.VehicleAvanza, MaxPax: 4},
	})

	assert.Len(t, table, 2)
	assert.Equal(t, domain.VehicleAvanza, table.ClassFor(3))
	assert.Equal(t, domain.VehicleHiace, table.ClassFor(8))

	assert.Equal(t, pricing.DefaultVehicleTable(), pricing.NewVehicleTable(nil))
}

func TestSeasonCalendar_Resolve(t *testing.T) {
	cal := pricing.NewSeasonCalendar([]int{7, 8, 12}, []int{1, 2, 13})

	assert.Equal(t, domain.SeasonPeak, cal.Resolve("", "2025-07-10"))
	assert.Equal(t, domain.SeasonOffSeason, cal.Resolve("", "2025-02-01"))
	assert.Equal(t, domain.SeasonRegular, cal.Resolve("", "2025-04-01"))
	assert.Equal(t, domain.SeasonRegular, cal.Resolve("", ""), "flexible trips default to the season tier")
	assert.Equal(t, domain.SeasonOffSeason, cal.Resolve(domain.SeasonOffSeason, "2025-07-10"), "explicit choice wins")
	assert.Equal(t, domain.SeasonPeak, cal.ForDate(time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)))
}
