package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
	"go.uber.org/zap"
)

func TestFollowUpService_TodaysFollowUpsUsesConfiguredTimezone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	jakarta := time.FixedZone("WIB", 7*60*60)
	svc := service.NewFollowUpService(repository.NewSalesClientRepository(db), jakarta, zap.NewNop())
	// Late evening UTC is already the next day in Jakarta
	svc.SetClock(func() time.Time { return time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC) })
	require.Equal(t, "2025-06-11", svc.Today())

	sales := testutil.CreateTestUser(t, db, domain.RoleSales, "Sales")
	ctx := testutil.ContextFor(sales)

	for _, c := range []struct {
		name, date, clock string
	}{
		{"Due late", "2025-06-11", "16:00"},
		{"Due early", "2025-06-11", "09:30"},
		{"Yesterday", "2025-06-10", "09:00"},
		{"No date", "", ""},
	} {
		_, err := svc.Create(ctx, &domain.SalesClientRequest{
			Name: c.name, Adults: 2, NextFollowUpDate: c.date, NextFollowUpTime: c.clock,
		})
		require.NoError(t, err)
	}

	due, err := svc.TodaysFollowUps(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "Due early", due[0].Name)
	assert.Equal(t, "Due late", due[1].Name)

	other := testutil.CreateTestUser(t, db, domain.RoleSales, "Other")
	due, err = svc.TodaysFollowUps(testutil.ContextFor(other))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestFollowUpService_UpdateStatusRecordsHistory(t *testing.T) {
	s := newServices(t)
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Sales")
	ctx := testutil.ContextFor(sales)

	client, err := s.followUps.Create(ctx, &domain.SalesClientRequest{Name: "Nguyen", Adults: 2, Destination: "Bali"})
	require.NoError(t, err)
	assert.Equal(t, domain.FollowUpItineraryCreated, client.CurrentFollowUpStatus)

	date := "2025-07-01"
	clock := "10:15"
	client, err = s.followUps.UpdateStatus(ctx, client.ID, &domain.UpdateFollowUpStatusRequest{
		Status:           domain.FollowUpThird,
		NextFollowUpDate: &date,
		NextFollowUpTime: &clock,
		Notes:            "Skipped ahead after a call",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FollowUpThird, client.CurrentFollowUpStatus)
	assert.Equal(t, "2025-07-01", client.NextFollowUpDate)
	assert.Equal(t, "10:15", client.NextFollowUpTime)

	// Going backwards is allowed
	client, err = s.followUps.UpdateStatus(ctx, client.ID, &domain.UpdateFollowUpStatusRequest{
		Status:            domain.FollowUpItinerarySent,
		ClearNextFollowUp: true,
	})
	require.NoError(t, err)
	assert.Empty(t, client.NextFollowUpDate)

	history, err := s.followUps.ListHistory(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.FollowUpItineraryCreated, history[0].FromStatus)
	assert.Equal(t, domain.FollowUpThird, history[0].ToStatus)
	assert.Equal(t, "Skipped ahead after a call", history[0].Notes)
	assert.Equal(t, domain.FollowUpItinerarySent, history[1].ToStatus)
	assert.Equal(t, "Sales", history[1].ChangedByName)
}

func TestFollowUpService_TerminalStatusClearsNextFollowUp(t *testing.T) {
	s := newServices(t)
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Sales")
	ctx := testutil.ContextFor(sales)

	client, err := s.followUps.Create(ctx, &domain.SalesClientRequest{
		Name: "Okafor", Adults: 1, NextFollowUpDate: "2025-07-01",
	})
	require.NoError(t, err)

	client, err = s.followUps.UpdateStatus(ctx, client.ID, &domain.UpdateFollowUpStatusRequest{Status: domain.FollowUpDead})
	require.NoError(t, err)
	assert.True(t, client.IsTerminal)
	assert.Empty(t, client.NextFollowUpDate)
}

func TestFollowUpService_Validation(t *testing.T) {
	s := newServices(t)
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Sales")
	ctx := testutil.ContextFor(sales)

	_, err := s.followUps.Create(ctx, &domain.SalesClientRequest{Name: "No date", Adults: 1, NextFollowUpTime: "10:00"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	client, err := s.followUps.Create(ctx, &domain.SalesClientRequest{Name: "Valid", Adults: 1})
	require.NoError(t, err)

	_, err = s.followUps.UpdateStatus(ctx, client.ID, &domain.UpdateFollowUpStatusRequest{Status: "5th-follow-up"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	other := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Other")
	_, err = s.followUps.Get(testutil.ContextFor(other), client.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	statuses := s.followUps.ListStatuses()
	require.Len(t, statuses, 10)
	assert.Equal(t, "Advance Paid & Confirmed", statuses[8].Label)
}
