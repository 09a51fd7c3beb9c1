package pricing

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"go.uber.org/zap"
)

// Options are the per-itinerary choices that affect the base cost
type Options struct {
	// Season selects the room rate. Empty means the regular season.
	Season domain.Season
	// VehicleClass overrides the class derived from party size.
	VehicleClass domain.VehicleClass
}

// Calculator aggregates day plans against a catalog. It never fails:
// references missing from the catalog contribute nothing and are reported
// in the breakdown's Misses.
type Calculator struct {
	catalog  Catalog
	vehicles VehicleTable
	logger   *zap.Logger
}

// NewCalculator creates a calculator over catalog
func NewCalculator(catalog Catalog, vehicles VehicleTable, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(vehicles) == 0 {
		vehicles = DefaultVehicleTable()
	}
	return &Calculator{catalog: catalog, vehicles: vehicles, logger: logger}
}

// VehicleClass returns the class used for a client: the override when set,
// otherwise the class for the party size.
func (c *Calculator) VehicleClass(client domain.ClientSnapshot, override domain.VehicleClass) domain.VehicleClass {
	if override.IsValid() {
		return override
	}
	return c.vehicles.ClassFor(client.Adults + client.Children)
}

// ComputeBaseCost sums every day plan plus the trip-wide transportation cost
func (c *Calculator) ComputeBaseCost(client domain.ClientSnapshot, plans []domain.DayPlan, opts Options) domain.CostBreakdown {
	season := opts.Season
	if !season.IsValid() {
		season = domain.SeasonRegular
	}
	vehicle := c.VehicleClass(client, opts.VehicleClass)
	pax := client.Adults + client.Children

	var b domain.CostBreakdown
	b.Days = make([]domain.DayCost, 0, len(plans))

	for _, plan := range plans {
		day := domain.DayCost{Day: plan.Day}

		if plan.Hotel != nil {
			if room, ok := c.catalog.RoomType(plan.Hotel.HotelID, plan.Hotel.RoomTypeID); ok {
				day.Hotel = room.RateFor(season)
			} else {
				c.miss(&b, plan.Day, "room_type", plan.Hotel.RoomTypeID)
			}
		}

		if client.TransportationMode == domain.TransportCab {
			for _, id := range plan.SightseeingIDs {
				spot, ok := c.catalog.Sightseeing(id)
				if !ok {
					c.miss(&b, plan.Day, "sightseeing", id)
					continue
				}
				day.Sightseeing += spot.VehicleCosts.Data().For(vehicle)
			}
		}

		for _, sel := range plan.Activities {
			opt, ok := c.catalog.ActivityOption(sel.ActivityID, sel.OptionID)
			if !ok {
				c.miss(&b, plan.Day, "activity_option", sel.OptionID)
				continue
			}
			day.Activities += PerUnitCost(opt.Cost, opt.CostForHowMany)
		}

		for _, id := range plan.TicketIDs {
			ticket, ok := c.catalog.EntryTicket(id)
			if !ok {
				c.miss(&b, plan.Day, "entry_ticket", id)
				continue
			}
			day.Tickets += ticket.Cost
		}

		for _, id := range plan.MealIDs {
			meal, ok := c.catalog.Meal(id)
			if !ok {
				c.miss(&b, plan.Day, "meal", id)
				continue
			}
			day.Meals += meal.Cost * float64(pax)
		}

		day.Hotel = Round2(day.Hotel)
		day.Sightseeing = Round2(day.Sightseeing)
		day.Activities = Round2(day.Activities)
		day.Tickets = Round2(day.Tickets)
		day.Meals = Round2(day.Meals)
		day.Total = Round2(day.Hotel + day.Sightseeing + day.Activities + day.Tickets + day.Meals)

		b.Hotel += day.Hotel
		b.Sightseeing += day.Sightseeing
		b.Activities += day.Activities
		b.Tickets += day.Tickets
		b.Meals += day.Meals
		b.Days = append(b.Days, day)
	}

	b.Transportation = c.transportationCost(&b, client)

	b.Hotel = Round2(b.Hotel)
	b.Sightseeing = Round2(b.Sightseeing)
	b.Activities = Round2(b.Activities)
	b.Tickets = Round2(b.Tickets)
	b.Meals = Round2(b.Meals)
	b.Total = Round2(b.Hotel + b.Sightseeing + b.Activities + b.Tickets + b.Meals + b.Transportation)
	return b
}

// transportationCost is charged once per trip; cab is paid through sightseeing
func (c *Calculator) transportationCost(b *domain.CostBreakdown, client domain.ClientSnapshot) float64 {
	if client.TransportationMode == domain.TransportCab || client.TransportationID == nil {
		return 0
	}
	t, ok := c.catalog.Transportation(*client.TransportationID)
	if !ok {
		c.miss(b, 0, "transportation", *client.TransportationID)
		return 0
	}
	if t.Type == domain.TransportCab {
		return 0
	}
	return Round2(t.CostPerDay * float64(client.NumberOfDays))
}

func (c *Calculator) miss(b *domain.CostBreakdown, day int, kind string, id uuid.UUID) {
	b.Misses = append(b.Misses, fmt.Sprintf("day %d: %s %s", day, kind, id))
	c.logger.Warn("Catalog reference not found, counting as zero",
		zap.Int("day", day),
		zap.String("kind", kind),
		zap.String("id", id.String()),
	)
}

// PerUnitCost divides a group price by the number of people it covers.
// A non-positive coverage is treated as one person.
func PerUnitCost(cost float64, coverage int) float64 {
	if coverage <= 0 {
		coverage = 1
	}
	return Round2(cost / float64(coverage))
}

// Round2 rounds to cents
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
