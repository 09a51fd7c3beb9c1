package pricing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/pricing"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fixture struct {
	index    *pricing.Index
	hotel    domain.Hotel
	room     domain.RoomType
	spot     domain.Sightseeing
	activity domain.Activity
	couple   domain.ActivityOption
	ticket   domain.EntryTicket
	lunch    domain.Meal
	car      domain.Transportation
	cab      domain.Transportation
}

func newFixture() fixture {
	f := fixture{}
	f.room = domain.RoomType{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Deluxe", PeakRate: 150, SeasonRate: 100, OffSeasonRate: 70}
	f.hotel = domain.Hotel{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Beach Inn", Place: "Kuta", RoomTypes: []domain.RoomType{f.room}}
	f.spot = domain.Sightseeing{
		BaseModel:          domain.BaseModel{ID: uuid.New()},
		Name:               "Temple",
		TransportationMode: domain.TransportCab,
		VehicleCosts:       datatypes.NewJSONType(domain.VehicleCosts{Avanza: 40, Hiace: 60, MiniBus: 90, Bus32: 150, Bus39: 180}),
	}
	f.couple = domain.ActivityOption{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Couple", Cost: 90, CostForHowMany: 2}
	f.activity = domain.Activity{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Rafting", Options: []domain.ActivityOption{f.couple}}
	f.ticket = domain.EntryTicket{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Temple entry", Cost: 5}
	f.lunch = domain.Meal{BaseModel: domain.BaseModel{ID: uuid.New()}, Type: domain.MealLunch, Place: "Warung", Cost: 12}
	f.car = domain.Transportation{BaseModel: domain.BaseModel{ID: uuid.New()}, Type: domain.TransportSelfDriveCar, Name: "Car", CostPerDay: 30}
	f.cab = domain.Transportation{BaseModel: domain.BaseModel{ID: uuid.New()}, Type: domain.TransportCab, Name: "Cab"}

	f.index = pricing.NewIndex(pricing.CatalogData{
		Transportations: []domain.Transportation{f.car, f.cab},
		Hotels:          []domain.Hotel{f.hotel},
		Sightseeings:    []domain.Sightseeing{f.spot},
		Activities:      []domain.Activity{f.activity},
		EntryTickets:    []domain.EntryTicket{f.ticket},
		Meals:           []domain.Meal{f.lunch},
	})
	return f
}

func (f fixture) fullDay(day int) domain.DayPlan {
	return domain.DayPlan{
		Day:            day,
		Hotel:          &domain.HotelSelection{HotelID: f.hotel.ID, RoomTypeID: f.room.ID},
		SightseeingIDs: []uuid.UUID{f.spot.ID},
		Activities:     []domain.ActivitySelection{{ActivityID: f.activity.ID, OptionID: f.couple.ID}},
		TicketIDs:      []uuid.UUID{f.ticket.ID},
		MealIDs:        []uuid.UUID{f.lunch.ID},
	}
}

func client(mode domain.TransportationMode, transportID *uuid.UUID, adults, children, days int) domain.ClientSnapshot {
	return domain.ClientSnapshot{
		Name:               "Test",
		Adults:             adults,
		Children:           children,
		NumberOfDays:       days,
		TransportationMode: mode,
		TransportationID:   transportID,
	}
}

func TestComputeBaseCost_CabFullDay(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, pricing.DefaultVehicleTable(), zap.NewNop())

	b := calc.ComputeBaseCost(client(domain.TransportCab, &f.cab.ID, 2, 1, 1), []domain.DayPlan{f.fullDay(1)}, pricing.Options{})

	require.Len(t, b.Days, 1)
	day := b.Days[0]
	assert.Equal(t, 100.0, day.Hotel, "regular season rate by default")
	assert.Equal(t, 40.0, day.Sightseeing, "3 pax rides in an avanza")
	assert.Equal(t, 45.0, day.Activities, "couple option covers two people")
	assert.Equal(t, 5.0, day.Tickets)
	assert.Equal(t, 36.0, day.Meals, "meal is per person")
	assert.Equal(t, 0.0, b.Transportation, "cab has no daily cost")
	assert.Equal(t, 226.0, b.Total)
	assert.Empty(t, b.Misses)
}

func TestComputeBaseCost_SelfDriveHasNoSightseeingCost(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())

	for _, mode := range []domain.TransportationMode{domain.TransportSelfDriveCar, domain.TransportSelfDriveScooter} {
		plans := []domain.DayPlan{f.fullDay(1), f.fullDay(2)}
		b := calc.ComputeBaseCost(client(mode, nil, 4, 0, 2), plans, pricing.Options{})
		assert.Equal(t, 0.0, b.Sightseeing, string(mode))
		for _, d := range b.Days {
			assert.Equal(t, 0.0, d.Sightseeing)
		}
	}
}

func TestComputeBaseCost_TransportationChargedOncePerTrip(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())

	plans := []domain.DayPlan{{Day: 1}, {Day: 2}, {Day: 3}}
	b := calc.ComputeBaseCost(client(domain.TransportSelfDriveCar, &f.car.ID, 2, 0, 3), plans, pricing.Options{})

	assert.Equal(t, 90.0, b.Transportation)
	assert.Equal(t, 90.0, b.Total)
}

func TestComputeBaseCost_ActivityIndependentOfPartySize(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	plan := []domain.DayPlan{{Day: 1, Activities: []domain.ActivitySelection{{ActivityID: f.activity.ID, OptionID: f.couple.ID}}}}

	for _, adults := range []int{1, 2, 7} {
		b := calc.ComputeBaseCost(client(domain.TransportSelfDriveCar, nil, adults, 0, 1), plan, pricing.Options{})
		assert.Equal(t, 45.0, b.Activities)
	}
}

func TestComputeBaseCost_MealsScaleWithPax(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	plan := []domain.DayPlan{{Day: 1, MealIDs: []uuid.UUID{f.lunch.ID, f.lunch.ID}}}

	b := calc.ComputeBaseCost(client(domain.TransportCab, nil, 3, 2, 1), plan, pricing.Options{})

	assert.Equal(t, 2*12.0*5, b.Meals)
}

func TestComputeBaseCost_SeasonAndVehicleOverride(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	plan := []domain.DayPlan{{Day: 1, Hotel: &domain.HotelSelection{HotelID: f.hotel.ID, RoomTypeID: f.room.ID}, SightseeingIDs: []uuid.UUID{f.spot.ID}}}

	b := calc.ComputeBaseCost(client(domain.TransportCab, nil, 2, 0, 1), plan, pricing.Options{Season: domain.SeasonPeak, VehicleClass: domain.VehicleBus39})

	assert.Equal(t, 150.0, b.Hotel)
	assert.Equal(t, 180.0, b.Sightseeing)
}

func TestComputeBaseCost_HotelAccruesPerDay(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	sel := &domain.HotelSelection{HotelID: f.hotel.ID, RoomTypeID: f.room.ID}
	plans := []domain.DayPlan{{Day: 1, Hotel: sel}, {Day: 2, Hotel: sel}, {Day: 3}}

	b := calc.ComputeBaseCost(client(domain.TransportCab, nil, 2, 0, 3), plans, pricing.Options{Season: domain.SeasonOffSeason})

	assert.Equal(t, 140.0, b.Hotel)
	assert.Equal(t, 0.0, b.Days[2].Hotel)
}

func TestComputeBaseCost_DanglingReferenceCountsAsZero(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	c := client(domain.TransportCab, nil, 2, 0, 1)

	clean := f.fullDay(1)
	dirty := f.fullDay(1)
	dirty.Activities = append(dirty.Activities, domain.ActivitySelection{ActivityID: uuid.New(), OptionID: uuid.New()})
	dirty.TicketIDs = append(dirty.TicketIDs, uuid.New())
	dirty.MealIDs = append(dirty.MealIDs, uuid.New())
	dirty.SightseeingIDs = append(dirty.SightseeingIDs, uuid.New())

	want := calc.ComputeBaseCost(c, []domain.DayPlan{clean}, pricing.Options{})
	got := calc.ComputeBaseCost(c, []domain.DayPlan{dirty}, pricing.Options{})

	assert.Equal(t, want.Total, got.Total)
	assert.Len(t, got.Misses, 4)
}

func TestComputeBaseCost_MissingHotelAndTransportation(t *testing.T) {
	f := newFixture()
	calc := pricing.NewCalculator(f.index, nil, zap.NewNop())
	missingTransport := uuid.New()
	plans := []domain.DayPlan{{Day: 1, Hotel: &domain.HotelSelection{HotelID: f.hotel.ID, RoomTypeID: uuid.New()}}}

	b := calc.ComputeBaseCost(client(domain.TransportSelfDriveCar, &missingTransport, 2, 0, 1), plans, pricing.Options{})

	assert.Equal(t, 0.0, b.Total)
	assert.Len(t, b.Misses, 2)
}

func TestPerUnitCost(t *testing.T) {
	assert.Equal(t, 33.33, pricing.PerUnitCost(100, 3))
	assert.Equal(t, 100.0, pricing.PerUnitCost(100, 0))
	assert.Equal(t, 25.0, pricing.PerUnitCost(100, 4))
}

func TestCountDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"same day is one day", "2025-01-01", "2025-01-01", 1},
		{"five days inclusive", "2025-01-01", "2025-01-05", 5},
		{"across month end", "2025-01-30", "2025-02-02", 4},
		{"across leap day", "2024-02-28", "2024-03-01", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := pricing.CountDaysFromStrings(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestCountDays_Errors(t *testing.T) {
	_, err := pricing.CountDaysFromStrings("2025-01-05", "2025-01-01")
	assert.ErrorIs(t, err, pricing.ErrEndBeforeStart)

	_, err = pricing.CountDaysFromStrings("01/05/2025", "2025-01-06")
	assert.Error(t, err)
}

func TestCountDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)

	days, err := pricing.CountDays(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestToday(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC) }
	loc := time.FixedZone("WITA", 8*3600)

	assert.Equal(t, "2025-06-30", pricing.Today(clock, time.UTC))
	assert.Equal(t, "2025-07-01", pricing.Today(clock, loc))
}
