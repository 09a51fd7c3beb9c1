package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/testutil"
)

func TestChatService_SendPublishesAndCountsUnread(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)
	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	subCtx, cancel := context.WithCancel(f.opsCtx)
	defer cancel()
	sub, err := s.chat.Subscribe(subCtx, a.ID)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	msg, err := s.chat.Send(f.salesCtx, a.ID, &domain.SendChatMessageRequest{Message: "  Client wants an ocean view  "})
	require.NoError(t, err)
	assert.Equal(t, "Client wants an ocean view", msg.Message)
	assert.Equal(t, domain.RoleSales, msg.SenderRole)

	select {
	case event := <-sub.C:
		assert.Equal(t, service.ChatEventMessage, event.Type)
		var payload domain.ChatMessageDTO
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, msg.ID, payload.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a live chat event")
	}

	_, err = s.chat.Send(f.salesCtx, a.ID, &domain.SendChatMessageRequest{Message: "And a late checkout"})
	require.NoError(t, err)
	_, err = s.chat.Send(f.opsCtx, a.ID, &domain.SendChatMessageRequest{Message: "On it"})
	require.NoError(t, err)

	opsUnread, err := s.chat.UnreadCount(f.opsCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, opsUnread.Count)

	salesUnread, err := s.chat.UnreadCount(f.salesCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, salesUnread.Count)

	marked, err := s.chat.MarkRead(f.opsCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	opsUnread, err = s.chat.UnreadCount(f.opsCtx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, opsUnread.Count)

	messages, err := s.chat.List(f.salesCtx, a.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "On it", messages[2].Message)
}

func TestChatService_OnlyParticipants(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)
	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	outsider := testutil.CreateTestUser(t, s.db, domain.RoleSales, "Outsider")
	_, err = s.chat.Send(testutil.ContextFor(outsider), a.ID, &domain.SendChatMessageRequest{Message: "hello"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = s.chat.Send(f.salesCtx, a.ID, &domain.SendChatMessageRequest{Message: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestChatService_NotifiesCounterpart(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)
	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	_, err = s.chat.Send(f.opsCtx, a.ID, &domain.SendChatMessageRequest{Message: "Hotel confirmed"})
	require.NoError(t, err)

	unread, err := s.notifications.GetUnreadCount(f.salesCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Count)

	page, err := s.notifications.GetForCurrentUser(f.salesCtx, 1, 20, true)
	require.NoError(t, err)
	items, ok := page.Data.([]domain.NotificationDTO)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, string(domain.NotificationTypeChatMessage), items[0].Type)
	assert.Equal(t, "Hotel confirmed", items[0].Message)
}

func TestChatService_ListKeepsLatestMessages(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)
	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	messages := make([]domain.ChatMessage, 501)
	for i := range messages {
		messages[i] = domain.ChatMessage{
			AssignmentID: a.ID,
			SenderID:     f.sales.ID,
			SenderName:   "Sales",
			SenderRole:   domain.RoleSales,
			Message:      fmt.Sprintf("m%d", i),
			CreatedAt:    start.Add(time.Duration(i) * time.Second),
		}
	}
	require.NoError(t, s.db.CreateInBatches(&messages, 100).Error)

	listed, err := s.chat.List(f.opsCtx, a.ID)
	require.NoError(t, err)
	require.Len(t, listed, 500)
	assert.Equal(t, "m1", listed[0].Message, "the oldest message is dropped")
	assert.Equal(t, "m500", listed[499].Message)
}

func TestChatService_NotificationPreviewKeepsCharactersWhole(t *testing.T) {
	s := newServices(t)
	f := newAssignmentFixture(t, s, false)
	a, err := s.assignments.Create(f.salesCtx, &domain.CreateAssignmentRequest{SalesClientID: f.lead.ID, OperationsPersonID: f.ops.ID})
	require.NoError(t, err)

	// one ASCII byte shifts every two-byte rune off the 120 byte mark
	text := "a" + strings.Repeat("é", 130)
	_, err = s.chat.Send(f.salesCtx, a.ID, &domain.SendChatMessageRequest{Message: text})
	require.NoError(t, err)

	page, err := s.notifications.GetForCurrentUser(f.opsCtx, 1, 20, true)
	require.NoError(t, err)
	items, ok := page.Data.([]domain.NotificationDTO)
	require.True(t, ok)
	var preview string
	for _, n := range items {
		if n.Type == string(domain.NotificationTypeChatMessage) {
			preview = n.Message
		}
	}
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, "a"+strings.Repeat("é", 119)+"...", preview)
}
