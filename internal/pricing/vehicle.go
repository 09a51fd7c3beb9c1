package pricing

import (
	"sort"

	"github.com/tripdesk/agency-api/internal/domain"
)

// VehicleThreshold assigns a vehicle class to parties of up to MaxPax people
type VehicleThreshold struct {
	Class  domain.VehicleClass
	MaxPax int
}

// VehicleTable maps party size to the vehicle class used for cab sightseeing
type VehicleTable []VehicleThreshold

// DefaultVehicleTable is used when no thresholds are configured
func DefaultVehicleTable() VehicleTable {
	return VehicleTable{
		{Class: domain.VehicleAvanza, MaxPax: 5},
		{Class: domain.VehicleHiace, MaxPax: 12},
		{Class: domain.VehicleMiniBus, MaxPax: 20},
		{Class: domain.VehicleBus32, MaxPax: 32},
		{Class: domain.VehicleBus39, MaxPax: 39},
	}
}

// NewVehicleTable sorts thresholds by capacity and drops unknown classes.
// An empty result falls back to the default table.
func NewVehicleTable(thresholds []VehicleThreshold) VehicleTable {
	table := make(VehicleTable, 0, len(thresholds))
	for _, t := range thresholds {
		if t.Class.IsValid() && t.MaxPax > 0 {
			table = append(table, t)
		}
	}
	if len(table) == 0 {
		return DefaultVehicleTable()
	}
	sort.SliceStable(table, func(i, j int) bool { return table[i].MaxPax < table[j].MaxPax })
	return table
}

// ClassFor returns the smallest class that seats pax people. Parties larger
// than every threshold get the largest class.
func (t VehicleTable) ClassFor(pax int) domain.VehicleClass {
	if len(t) == 0 {
		return DefaultVehicleTable().ClassFor(pax)
	}
	for _, threshold := range t {
		if pax <= threshold.MaxPax {
			return threshold.Class
		}
	}
	return t[len(t)-1].Class
}
