package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
)

func TestClientService_DerivesDaysFromDates(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)

	for _, tc := range []struct {
		start, end string
		days       int
	}{
		{"2025-01-01", "2025-01-01", 1},
		{"2025-01-01", "2025-01-05", 5},
	} {
		client, err := s.clients.Create(ctx, &domain.ClientRequest{
			Name: "Trip", StartDate: tc.start, EndDate: tc.end, Adults: 1,
			TransportationMode: domain.TransportSelfDriveCar,
			NumberOfDays:       30,
		})
		require.NoError(t, err)
		assert.Equal(t, tc.days, client.NumberOfDays)
	}

	_, err := s.clients.Create(ctx, &domain.ClientRequest{
		Name: "Backwards", StartDate: "2025-01-05", EndDate: "2025-01-01", Adults: 1,
		TransportationMode: domain.TransportCab,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientService_FlexibleToggleKeepsBothModes(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)

	client, err := s.clients.Create(ctx, &domain.ClientRequest{
		Name: "Flex", StartDate: "2025-08-01", EndDate: "2025-08-04", Adults: 2,
		TransportationMode: domain.TransportCab,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, client.NumberOfDays)

	client, err = s.clients.Update(ctx, client.ID, &domain.ClientRequest{
		Name: "Flex", IsFlexible: true, FlexibleMonth: "September", NumberOfDays: 6, Adults: 2,
		TransportationMode: domain.TransportCab,
	})
	require.NoError(t, err)
	assert.True(t, client.IsFlexible)
	assert.Equal(t, 6, client.NumberOfDays)
	assert.Equal(t, "2025-08-01", client.StartDate, "dates are kept while flexible")

	client, err = s.clients.Update(ctx, client.ID, &domain.ClientRequest{
		Name: "Flex", Adults: 2, TransportationMode: domain.TransportCab,
	})
	require.NoError(t, err)
	assert.False(t, client.IsFlexible)
	assert.Equal(t, 4, client.NumberOfDays)
	assert.Equal(t, "September", client.FlexibleMonth)

	_, err = s.clients.Create(ctx, &domain.ClientRequest{
		Name: "No month", IsFlexible: true, NumberOfDays: 3, Adults: 1, TransportationMode: domain.TransportCab,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientService_TransportationMustMatchMode(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	ctx := testutil.ContextFor(agent)

	_, err := s.clients.Create(ctx, &domain.ClientRequest{
		Name: "Mismatch", StartDate: "2025-01-01", EndDate: "2025-01-02", Adults: 1,
		TransportationMode: domain.TransportCab,
		TransportationID:   &s.seed.Car.ID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientService_OwnerScoping(t *testing.T) {
	s := newServices(t)
	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	other := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Other")
	client := s.newCabClient(t, testutil.ContextFor(agent), 2)

	_, err := s.clients.Get(testutil.ContextFor(other), client.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	page, err := s.clients.List(testutil.ContextFor(agent), 1, 20, "walker", repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	err = s.clients.Delete(testutil.ContextFor(other), client.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
