package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
)

func TestFixedItineraryService_FindByDurationAndMode(t *testing.T) {
	s := newServices(t)
	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin, "Admin")
	ctx := testutil.ContextFor(admin)

	inactive := false
	for _, req := range []domain.FixedItineraryRequest{
		{Name: "Bali Highlights", NumberOfDays: 2, TransportationMode: domain.TransportCab, BaseCost: 500},
		{Name: "Bali Drive", NumberOfDays: 2, TransportationMode: domain.TransportSelfDriveCar, BaseCost: 300},
		{Name: "Bali Long", NumberOfDays: 5, TransportationMode: domain.TransportCab, BaseCost: 900},
		{Name: "Retired", NumberOfDays: 2, TransportationMode: domain.TransportCab, BaseCost: 100, IsActive: &inactive},
	} {
		req := req
		_, err := s.fixed.Create(ctx, &req)
		require.NoError(t, err)
	}

	found, err := s.fixed.FindByDurationAndMode(ctx, 2, domain.TransportCab)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bali Highlights", found[0].Name)

	all, err := s.fixed.List(ctx, nil, nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = s.fixed.FindByDurationAndMode(ctx, 0, domain.TransportCab)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestFixedItineraryService_ApplyUsesFlatBaseCost(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)
	client := s.newCabClient(t, ctx, 2)

	fixed, err := s.fixed.Create(ctx, &domain.FixedItineraryRequest{
		Name:               "Bali Highlights",
		NumberOfDays:       2,
		TransportationMode: domain.TransportCab,
		DayPlans:           []domain.DayPlan{s.seed.DayPlan(1), s.seed.DayPlan(2)},
		BaseCost:           500,
	})
	require.NoError(t, err)

	it, err := s.fixed.Apply(ctx, fixed.ID, &domain.ApplyFixedItineraryRequest{ClientID: client.ID, ProfitMargin: 65})
	require.NoError(t, err)
	assert.Equal(t, 500.0, it.TotalBaseCost)
	assert.Equal(t, 600.0, it.FinalPrice)
	assert.Len(t, it.DayPlans, 2)
	require.NotNil(t, it.FixedItineraryID)
	assert.Equal(t, fixed.ID, *it.FixedItineraryID)

	// Editing the day plans turns the itinerary into a computed one
	it, err = s.itineraries.Update(ctx, it.ID, &domain.UpdateItineraryRequest{DayPlans: []domain.DayPlan{s.seed.DayPlan(1)}})
	require.NoError(t, err)
	assert.Nil(t, it.FixedItineraryID)
	assert.Equal(t, fullDayCost, it.TotalBaseCost)
}

func TestFixedItineraryService_ApplyRejectsMismatchedTrip(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)
	client := s.newCabClient(t, ctx, 1)

	fixed, err := s.fixed.Create(ctx, &domain.FixedItineraryRequest{
		Name: "Three days", NumberOfDays: 3, TransportationMode: domain.TransportCab, BaseCost: 700,
	})
	require.NoError(t, err)

	_, err = s.fixed.Apply(ctx, fixed.ID, &domain.ApplyFixedItineraryRequest{ClientID: client.ID})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
