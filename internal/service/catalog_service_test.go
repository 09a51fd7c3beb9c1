package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
)

func TestCatalogService_HotelCRUDKeepsRoomIDs(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	hotel, err := s.catalog.Hotels.Create(ctx, &domain.HotelRequest{
		Name: "Cliff Resort", Place: "Uluwatu", StarCategory: 5,
		RoomTypes: []domain.RoomTypeRequest{
			{Name: "Suite", PeakRate: 300, SeasonRate: 250, OffSeasonRate: 200},
			{Name: "Villa", PeakRate: 500, SeasonRate: 400, OffSeasonRate: 350},
		},
	})
	require.NoError(t, err)
	require.Len(t, hotel.RoomTypes, 2)
	suiteID := hotel.RoomTypes[0].ID

	updated, err := s.catalog.Hotels.Update(ctx, hotel.ID, &domain.HotelRequest{
		Name: "Cliff Resort", Place: "Uluwatu", StarCategory: 5,
		RoomTypes: []domain.RoomTypeRequest{
			{ID: &suiteID, Name: "Suite", PeakRate: 320, SeasonRate: 260, OffSeasonRate: 210},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.RoomTypes, 1)
	assert.Equal(t, suiteID, updated.RoomTypes[0].ID)
	assert.Equal(t, 260.0, updated.RoomTypes[0].SeasonRate)

	page, err := s.catalog.Hotels.List(ctx, 1, 20, "cliff")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, s.catalog.Hotels.Delete(ctx, hotel.ID))
	_, err = s.catalog.Hotels.Get(ctx, hotel.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_CabTransportationCostsNothing(t *testing.T) {
	s := newServices(t)

	cab, err := s.catalog.Transportations.Create(context.Background(), &domain.TransportationRequest{
		Type: domain.TransportCab, Name: "Driver", CostPerDay: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cab.CostPerDay)
}

func TestCatalogService_LoadIndexResolvesSeededEntries(t *testing.T) {
	s := newServices(t)

	idx, err := s.catalog.LoadIndex(context.Background())
	require.NoError(t, err)

	room, ok := idx.RoomType(s.seed.Hotel.ID, s.seed.Hotel.RoomTypes[0].ID)
	require.True(t, ok)
	assert.Equal(t, 100.0, room.SeasonRate)

	opt, ok := idx.ActivityOption(s.seed.Activity.ID, s.seed.Activity.Options[0].ID)
	require.True(t, ok)
	assert.Equal(t, 2, opt.CostForHowMany)
}

func TestCatalogService_SnapshotRoundTrip(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	exported, err := s.catalog.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, exported.Hotels)
	assert.Equal(t, 2, exported.Transportations)

	keys, err := s.catalog.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "snapshots/"+service.LatestSnapshotName)
	assert.Contains(t, keys, exported.Path)

	// Wipe a kind, then restore from the latest snapshot
	require.NoError(t, s.catalog.Meals.Delete(ctx, s.seed.Meal.ID))

	snap, err := s.catalog.LoadSnapshot(ctx, "")
	require.NoError(t, err)
	imported, err := s.catalog.ImportSnapshot(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, imported.Meals)

	meal, err := s.catalog.Meals.Get(ctx, s.seed.Meal.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, meal.Cost)

	idx, err := s.catalog.LoadIndex(ctx)
	require.NoError(t, err)
	_, ok := idx.RoomType(s.seed.Hotel.ID, s.seed.Hotel.RoomTypes[0].ID)
	assert.True(t, ok, "room IDs survive import so day plans keep resolving")
}

func TestCatalogService_ImportRejectsNewerFormat(t *testing.T) {
	s := newServices(t)

	_, err := s.catalog.ImportSnapshot(context.Background(), &domain.CatalogSnapshot{Version: service.SnapshotFormatVersion + 1})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.catalog.LoadSnapshot(context.Background(), "snapshots/missing.json")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
