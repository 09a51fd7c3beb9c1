package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/testutil"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newItinerary(owner *domain.User) *domain.Itinerary {
	return &domain.Itinerary{
		ClientSnapshot: datatypes.NewJSONType(domain.ClientSnapshot{Name: "Walker family", Adults: 2, NumberOfDays: 1}),
		DayPlans:       datatypes.NewJSONSlice([]domain.DayPlan{{Day: 1}}),
		Season:         domain.SeasonRegular,
		Currency:       "USD",
		ExchangeRate:   1,
		Version:        1,
		Status:         domain.ItineraryStatusDraft,
		CreatedByID:    owner.ID,
		CreatedByName:  owner.DisplayName,
		CreatedByRole:  owner.Role,
	}
}

func TestItineraryRepository_VersionedSaves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewItineraryRepository(db)
	agent := testutil.CreateTestUser(t, db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)

	itinerary := newItinerary(agent)
	require.NoError(t, repo.CreateWithChange(ctx, itinerary, &domain.ItineraryChange{ChangeType: domain.ChangeTypeCreated}))

	for i := 0; i < 3; i++ {
		itinerary.Version++
		itinerary.TotalBaseCost = float64(100 * (i + 1))
		require.NoError(t, repo.SaveVersioned(ctx, itinerary, &domain.ItineraryChange{ChangeType: domain.ChangeTypeDayPlansUpdated}))
	}

	loaded, err := repo.GetByID(ctx, itinerary.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Version)
	assert.Equal(t, 300.0, loaded.TotalBaseCost)
	assert.Equal(t, "Walker family", loaded.ClientSnapshot.Data().Name)
	require.Len(t, loaded.Changes, 4)
	for i, change := range loaded.Changes {
		assert.Equal(t, i+1, change.Version)
	}
}

func TestItineraryRepository_StaleVersionConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewItineraryRepository(db)
	agent := testutil.CreateTestUser(t, db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)

	itinerary := newItinerary(agent)
	require.NoError(t, repo.CreateWithChange(ctx, itinerary, &domain.ItineraryChange{ChangeType: domain.ChangeTypeCreated}))

	stale := *itinerary
	itinerary.Version++
	require.NoError(t, repo.SaveVersioned(ctx, itinerary, &domain.ItineraryChange{ChangeType: domain.ChangeTypeRecalculated}))

	stale.Version++
	err := repo.SaveVersioned(ctx, &stale, &domain.ItineraryChange{ChangeType: domain.ChangeTypeRecalculated})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	changes, err := repo.ListChanges(ctx, itinerary.ID)
	require.NoError(t, err)
	assert.Len(t, changes, 2, "a failed save must not append a change")
}

func TestItineraryRepository_OwnerScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewItineraryRepository(db)
	owner := testutil.CreateTestUser(t, db, domain.RoleAgent, "Owner")
	other := testutil.CreateTestUser(t, db, domain.RoleAgent, "Other")
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin, "Admin")

	itinerary := newItinerary(owner)
	require.NoError(t, repo.CreateWithChange(testutil.ContextFor(owner), itinerary, &domain.ItineraryChange{ChangeType: domain.ChangeTypeCreated}))

	_, err := repo.GetByID(testutil.ContextFor(other), itinerary.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByID(testutil.ContextFor(admin), itinerary.ID)
	assert.NoError(t, err)

	items, total, err := repo.List(testutil.ContextFor(other), repository.ItineraryFilter{}, 1, 20, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	assert.ErrorIs(t, repo.Delete(testutil.ContextFor(other), itinerary.ID), gorm.ErrRecordNotFound)
	assert.NoError(t, repo.Delete(testutil.ContextFor(owner), itinerary.ID))
}
