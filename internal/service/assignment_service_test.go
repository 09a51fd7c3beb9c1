package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
)

type assignmentFixture struct {
	salesCtx context.Context
	opsCtx   context.Context
	sales    *domain.User
	ops      *domain.User
	lead     *domain.SalesClientDTO
}

func newAssignmentFixture(t *testing.T, s *services, withItinerary bool) *assignmentFixture {
	t.Helper()
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Sales")
	ops := testutil.CreateTestUser(t, s.db, domain.RoleOperations, "Ops")
	salesCtx := testutil.ContextFor(sales)

	req := &domain.SalesClientRequest{Name: "Walker family", Adults: 2, Destination: "Bali"}
	if withItinerary {
		client := s.newCabClient(t, salesCtx, 1)
		it, err := s.itineraries.Create(salesCtx, &domain.CreateItineraryRequest{
			ClientID: client.ID,
			DayPlans: []domain.DayPlan{s.seed.DayPlan(1)},
		})
		require.NoError(t, err)
		req.ItineraryID = &it.ID
	}
	lead, err := s.followUps.Create(salesCtx, req)
	require.NoError(t, err)

	return &assignmentFixture{
		salesCtx: salesCtx,
		opsCtx:   testutil.ContextFor(ops),
		sales:    sales,
		ops:      ops,
		lead:     lead,
	}
}

func TestAssignmentService_GeneratesChecklistFromItinerary(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, true)

	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.ops.ID,
		GenerateChecklist:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusPending, a.Status)
	assert.Equal(t, f.sales.ID, a.SalesPersonID)
	assert.Equal(t, 6, a.TotalItems)
	assert.Equal(t, 0, a.CompletionPercent)

	got, err := s.assignments.Get(f.opsCtx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "General", got.Groups[0].Label)
	require.Len(t, got.Groups[0].Items, 1)
	assert.Equal(t, "Arrange Private Cab for 1 days", got.Groups[0].Items[0].Description)
	assert.Equal(t, "Day 1", got.Groups[1].Label)
	assert.Len(t, got.Groups[1].Items, 5)

	unread, err := s.notifications.GetUnreadCount(f.opsCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Count)
}

func TestAssignmentService_CompletionPercent(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)

	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.ops.ID,
	})
	require.NoError(t, err)

	completion, err := s.assignments.Completion(f.opsCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, completion.Total)
	assert.Equal(t, 0, completion.Percent)

	var first *domain.ChecklistItemDTO
	for i, desc := range []string{"Airport pickup", "Welcome dinner", "Travel insurance"} {
		item, err := s.assignments.AddItem(f.opsCtx, a.ID, &domain.AddChecklistItemRequest{
			ItemType: domain.ChecklistOther, DayNumber: i, Description: desc,
		})
		require.NoError(t, err)
		if first == nil {
			first = item
		}
	}

	toggled, err := s.assignments.ToggleComplete(f.opsCtx, a.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	assert.Equal(t, "Ops", toggled.CompletedByName)

	completion, err = s.assignments.Completion(f.opsCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, completion.Total)
	assert.Equal(t, 1, completion.Completed)
	assert.Equal(t, 33, completion.Percent)

	got, err := s.assignments.Get(f.salesCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusInProgress, got.Status)

	toggled, err = s.assignments.ToggleComplete(f.opsCtx, a.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)
	assert.Nil(t, toggled.CompletedAt)
}

func TestAssignmentService_ItemDetailsAndDelete(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)

	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)
	item, err := s.assignments.AddItem(f.opsCtx, a.ID, &domain.AddChecklistItemRequest{
		ItemType: domain.ChecklistHotel, DayNumber: 1, Description: "Book villa",
	})
	require.NoError(t, err)

	ref := "  BKG-1042 "
	notes := "Late check-in"
	updated, err := s.assignments.UpdateItemDetails(f.opsCtx, a.ID, item.ID, &domain.UpdateChecklistDetailsRequest{
		BookingReference: &ref,
		Notes:            &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "BKG-1042", updated.BookingReference)
	assert.Equal(t, "Late check-in", updated.Notes)
	assert.False(t, updated.IsCompleted)

	require.NoError(t, s.assignments.DeleteItem(f.opsCtx, a.ID, item.ID))
	err = s.assignments.DeleteItem(f.opsCtx, a.ID, item.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAssignmentService_AccessAndValidation(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)

	_, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.sales.ID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.ops.ID,
		GenerateChecklist:  true,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput, "no itinerary to generate from")

	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	outsider := testutil.CreateTestUser(t, s.db, domain.RoleOperations, "Outsider")
	_, err = s.assignments.Get(testutil.ContextFor(outsider), a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	done, err := s.assignments.UpdateStatus(f.opsCtx, a.ID, domain.AssignmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusCompleted, done.Status)

	unread, err := s.notifications.GetUnreadCount(f.salesCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Count)
}

func TestAssignmentService_RejectsItineraryOfAnotherUser(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)

	agent := testutil.CreateTestUser(t, s.db, domain.RoleAgent, "Agent")
	agentCtx := testutil.ContextFor(agent)
	client := s.newCabClient(t, agentCtx, 1)
	foreign, err := s.itineraries.Create(agentCtx, &domain.CreateItineraryRequest{
		ClientID: client.ID,
		DayPlans: []domain.DayPlan{s.seed.DayPlan(1)},
	})
	require.NoError(t, err)

	_, err = s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.ops.ID,
		ItineraryID:        &foreign.ID,
		GenerateChecklist:  true,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	page, err := s.assignments.List(f.opsCtx, repository.AssignmentFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, page.Total, "nothing was created")

	// the lead's own link is checked the same way
	_, err = s.followUps.Update(f.salesCtx, f.lead.ID, &domain.SalesClientRequest{
		Name: "Walker family", Adults: 2, Destination: "Bali", ItineraryID: &foreign.ID,
	})
	require.NoError(t, err)
	_, err = s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{
		SalesClientID:      f.lead.ID,
		OperationsPersonID: f.ops.ID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
