package service_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
	"go.uber.org/zap"
)

func TestNotificationService_ReadFlow(t *testing.T) {
	s := newServices(t)
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Putu Sales")
	other := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Other Sales")
	ctx := testutil.ContextFor(sales)

	leadID := uuid.New()
	first, err := s.notifications.CreateForUser(context.Background(), sales.ID, domain.NotificationTypeAssignment, "New assignment", "Walker family", "assignment", &leadID)
	require.NoError(t, err)
	_, err = s.notifications.CreateForUser(context.Background(), sales.ID, domain.NotificationTypeChatMessage, "New message", "hello", "assignment", &leadID)
	require.NoError(t, err)

	count, err := s.notifications.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Count)

	// another user cannot mark it
	err = s.notifications.MarkAsRead(testutil.ContextFor(other), first.ID)
	assert.ErrorIs(t, err, service.ErrNotificationNotFound)

	require.NoError(t, s.notifications.MarkAsRead(ctx, first.ID))
	unread, err := s.notifications.GetForCurrentUser(ctx, 1, 20, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread.Total)

	require.NoError(t, s.notifications.MarkAllAsReadForUser(ctx))
	count, err = s.notifications.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count.Count)

	_, err = s.notifications.GetUnreadCount(context.Background())
	assert.ErrorIs(t, err, service.ErrUserContextRequired)
}

func TestNotificationService_CreateOnce(t *testing.T) {
	s := newServices(t)
	sales := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Putu Sales")
	leadID := uuid.New()
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)

	created, err := s.notifications.CreateOnce(context.Background(), sales.ID, domain.NotificationTypeFollowUpDue, "Follow-up due", "Walker family", "sales_client", leadID, dayStart)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.notifications.CreateOnce(context.Background(), sales.ID, domain.NotificationTypeFollowUpDue, "Follow-up due", "Walker family", "sales_client", leadID, dayStart)
	require.NoError(t, err)
	assert.False(t, created)

	// a later window sends again
	created, err = s.notifications.CreateOnce(context.Background(), sales.ID, domain.NotificationTypeFollowUpDue, "Follow-up due", "Walker family", "sales_client", leadID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestAuditLogService_LogListPurge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	audit := service.NewAuditLogService(repo, zap.NewNop())
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin, "Admin")

	req := httptest.NewRequest("POST", "/api/v1/clients", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	entityID := uuid.New()
	require.NoError(t, audit.Log(testutil.ContextFor(admin), req, service.LogEntry{
		Action:     domain.AuditActionCreate,
		EntityType: "Client",
		EntityID:   &entityID,
		StatusCode: 201,
	}))
	require.NoError(t, repo.Create(context.Background(), &domain.AuditLog{
		Action:      domain.AuditActionDelete,
		EntityType:  "Client",
		PerformedAt: time.Now().UTC().AddDate(0, 0, -400),
	}))

	action := domain.AuditActionCreate
	page, err := audit.List(context.Background(), &repository.AuditLogFilter{Action: &action}, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	logs := page.Data.([]domain.AuditLogDTO)
	assert.Equal(t, "203.0.113.7", logs[0].IPAddress)

	deleted, err := audit.Purge(context.Background(), 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	page, err = audit.List(context.Background(), nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}
