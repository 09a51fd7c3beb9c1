package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/testutil"
	"gorm.io/gorm"
)

func TestHotelRepository_UpdateKeepsRoomTypeIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewHotelRepository(db)
	ctx := context.Background()

	hotel := &domain.Hotel{
		Name: "Cliff House", Place: "Uluwatu", StarCategory: 5,
		RoomTypes: []domain.RoomType{
			{Name: "Garden", SeasonRate: 120},
			{Name: "Suite", SeasonRate: 300},
		},
	}
	require.NoError(t, repo.Create(ctx, hotel))
	gardenID := hotel.RoomTypes[0].ID

	loaded, err := repo.GetByID(ctx, hotel.ID)
	require.NoError(t, err)
	require.Len(t, loaded.RoomTypes, 2)

	// Drop the suite, reprice the garden room and add a villa.
	loaded.RoomTypes = []domain.RoomType{
		{BaseModel: domain.BaseModel{ID: gardenID}, Name: "Garden", SeasonRate: 130},
		{Name: "Villa", SeasonRate: 500},
	}
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, hotel.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.RoomTypes, 2)
	assert.Equal(t, gardenID, reloaded.RoomTypes[0].ID)
	assert.Equal(t, 130.0, reloaded.RoomTypes[0].SeasonRate)
	assert.Equal(t, "Villa", reloaded.RoomTypes[1].Name)

	var roomCount int64
	require.NoError(t, db.Model(&domain.RoomType{}).Count(&roomCount).Error)
	assert.Equal(t, int64(2), roomCount)
}

func TestCatalogRepository_ListSearchAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMealRepository(db)
	ctx := context.Background()

	for _, m := range []domain.Meal{
		{Type: domain.MealBreakfast, Place: "Hotel Buffet", Cost: 8},
		{Type: domain.MealLunch, Place: "Beach Warung", Cost: 12},
		{Type: domain.MealDinner, Place: "Jimbaran Seafood", Cost: 25},
	} {
		meal := m
		require.NoError(t, repo.Create(ctx, &meal))
	}

	items, total, err := repo.List(ctx, 1, 10, "warung")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Beach Warung", items[0].Place)

	_, total, err = repo.List(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, repo.Delete(ctx, items[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, items[0].ID), gorm.ErrRecordNotFound)
}

func TestCatalogRepository_ReplaceAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Activity{Name: "Old"}))

	replacement := []domain.Activity{
		{Name: "Snorkeling", Options: []domain.ActivityOption{{Name: "Solo", Cost: 30, CostForHowMany: 1}}},
		{Name: "Cooking Class"},
	}
	require.NoError(t, repo.ReplaceAll(ctx, replacement))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cooking Class", all[0].Name)
	assert.Equal(t, "Snorkeling", all[1].Name)
	assert.Len(t, all[1].Options, 1)
}
