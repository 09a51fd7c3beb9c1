package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/pricing"
	"gorm.io/datatypes"
)

func fixture() (*domain.Itinerary, *pricing.Index) {
	hotel := domain.Hotel{Name: "Ocean View", RoomTypes: []domain.RoomType{{Name: "Deluxe"}}}
	hotel.ID = uuid.New()
	hotel.RoomTypes[0].ID = uuid.New()
	meal := domain.Meal{Type: domain.MealLunch, Place: "Warung", Cost: 12}
	meal.ID = uuid.New()

	idx := pricing.NewIndex(pricing.CatalogData{
		Hotels: []domain.Hotel{hotel},
		Meals:  []domain.Meal{meal},
	})

	it := &domain.Itinerary{
		ClientSnapshot: datatypes.NewJSONType(domain.ClientSnapshot{
			Name: "Ana", StartDate: "2025-01-01", EndDate: "2025-01-02",
			Adults: 2, NumberOfDays: 2, TransportationMode: domain.TransportCab,
		}),
		DayPlans: datatypes.NewJSONSlice([]domain.DayPlan{
			{Day: 1, Hotel: &domain.HotelSelection{HotelID: hotel.ID, RoomTypeID: hotel.RoomTypes[0].ID}, MealIDs: []uuid.UUID{meal.ID}},
			{Day: 2, SightseeingIDs: []uuid.UUID{uuid.New()}},
		}),
		CostBreakdown: datatypes.NewJSONType(domain.CostBreakdown{
			Days:  []domain.DayCost{{Day: 1, Hotel: 100, Meals: 24, Total: 124}},
			Hotel: 100, Meals: 24, Total: 124,
		}),
		Season:            domain.SeasonRegular,
		TotalBaseCost:     124,
		Markup:            35,
		FinalPrice:        159,
		Currency:          "USD",
		SecondaryCurrency: "IDR",
		ExchangeRate:      15000,
		Version:           3,
		Status:            domain.ItineraryStatusQuoted,
	}
	it.ID = uuid.New()
	return it, idx
}

func TestItineraryPDF_Render(t *testing.T) {
	it, idx := fixture()
	r := NewItineraryPDF("Island Trips", "https://trips.example.com/")
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	data, err := r.Render(it, idx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Greater(t, len(data), 1000)
}

func TestItineraryPDF_ReferenceURL(t *testing.T) {
	it, _ := fixture()
	r := NewItineraryPDF("", "https://trips.example.com/")
	assert.Equal(t, "https://trips.example.com/itineraries/"+it.ID.String(), r.ReferenceURL(it))
	assert.Equal(t, "Travel Agency", r.companyName)
}

func TestFileName(t *testing.T) {
	it, _ := fixture()
	assert.Equal(t, "itinerary-"+it.ID.String()[:8]+"-v3.pdf", FileName(it))
}

func TestDescribeDay(t *testing.T) {
	it, idx := fixture()

	assert.Equal(t, []string{"Stay: Deluxe", "Meal: lunch at Warung"}, DescribeDay(it.DayPlans[0], idx))
	assert.Equal(t, []string{"Sightseeing: unavailable"}, DescribeDay(it.DayPlans[1], idx))
}
