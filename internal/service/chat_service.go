package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/realtime"
	"github.com/tripdesk/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Chat event types published on an assignment's topic
const (
	ChatEventMessage = "message"
	ChatEventRead    = "read"
)

const (
	maxChatHistory    = 500
	chatPreviewLength = 120
)

// ChatService runs the per-assignment channel between sales and operations
type ChatService struct {
	chatRepo       *repository.ChatRepository
	assignmentRepo *repository.AssignmentRepository
	broker         realtime.Broker
	notifications  *NotificationService
	logger         *zap.Logger
}

// NewChatService creates a new chat service. broker may be nil, in which
// case messages are stored but not pushed live.
func NewChatService(
	chatRepo *repository.ChatRepository,
	assignmentRepo *repository.AssignmentRepository,
	broker realtime.Broker,
	notifications *NotificationService,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:       chatRepo,
		assignmentRepo: assignmentRepo,
		broker:         broker,
		notifications:  notifications,
		logger:         logger,
	}
}

// ReadReceipt is published when a participant reads the channel
type ReadReceipt struct {
	AssignmentID uuid.UUID `json:"assignmentId"`
	ReaderID     uuid.UUID `json:"readerId"`
	Count        int64     `json:"count"`
}

// Send appends a message, pushes it to live subscribers and notifies the
// other participant
func (s *ChatService) Send(ctx context.Context, assignmentID uuid.UUID, req *domain.SendChatMessageRequest) (*domain.ChatMessageDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, invalid("message cannot be empty")
	}
	assignment, err := s.participantAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		AssignmentID: assignmentID,
		SenderID:     userCtx.UserID,
		SenderName:   userCtx.DisplayName,
		SenderRole:   userCtx.Role,
		Message:      text,
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	dto := mapper.ToChatMessageDTO(msg)

	s.publish(ctx, assignmentID, ChatEventMessage, dto)

	preview := truncateRunes(text, chatPreviewLength)
	for _, recipient := range counterparts(assignment, userCtx.UserID) {
		s.notify(ctx, recipient, "New message from "+userCtx.DisplayName, preview, assignmentID)
	}

	s.logger.Debug("chat message sent",
		zap.String("assignmentID", assignmentID.String()),
		zap.String("senderID", userCtx.UserID.String()),
	)
	return &dto, nil
}

// List returns the channel's latest messages oldest first
func (s *ChatService) List(ctx context.Context, assignmentID uuid.UUID) ([]domain.ChatMessageDTO, error) {
	if _, err := s.participantAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListByAssignment(ctx, assignmentID, maxChatHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	dtos := make([]domain.ChatMessageDTO, len(messages))
	for i := range messages {
		dtos[i] = mapper.ToChatMessageDTO(&messages[i])
	}
	return dtos, nil
}

// UnreadCount counts messages the current user has not read
func (s *ChatService) UnreadCount(ctx context.Context, assignmentID uuid.UUID) (*domain.UnreadCountDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	if _, err := s.participantAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	count, err := s.chatRepo.CountUnread(ctx, assignmentID, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return &domain.UnreadCountDTO{Count: count}, nil
}

// MarkRead marks every message from the other side as read
func (s *ChatService) MarkRead(ctx context.Context, assignmentID uuid.UUID) (int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return 0, ErrUserContextRequired
	}
	if _, err := s.participantAssignment(ctx, assignmentID); err != nil {
		return 0, err
	}
	n, err := s.chatRepo.MarkRead(ctx, assignmentID, userCtx.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	if n > 0 {
		s.publish(ctx, assignmentID, ChatEventRead, ReadReceipt{AssignmentID: assignmentID, ReaderID: userCtx.UserID, Count: n})
	}
	return n, nil
}

// Subscribe opens a live feed of the channel. The caller must Unsubscribe.
func (s *ChatService) Subscribe(ctx context.Context, assignmentID uuid.UUID) (*realtime.Subscription, error) {
	if s.broker == nil {
		return nil, fmt.Errorf("%w: live chat is not enabled", ErrInvalidInput)
	}
	if _, err := s.participantAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	sub, err := s.broker.Subscribe(ctx, realtime.ChatTopic(assignmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// participantAssignment loads the assignment if the current user is its
// sales or operations person, or an admin
func (s *ChatService) participantAssignment(ctx context.Context, assignmentID uuid.UUID) (*domain.PackageAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, ErrAssignmentNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *ChatService) publish(ctx context.Context, assignmentID uuid.UUID, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	event, err := realtime.NewEvent(realtime.ChatTopic(assignmentID), eventType, payload)
	if err != nil {
		s.logger.Warn("failed to encode chat event", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish chat event",
			zap.String("assignmentID", assignmentID.String()),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func (s *ChatService) notify(ctx context.Context, userID uuid.UUID, title, message string, assignmentID uuid.UUID) {
	if s.notifications == nil {
		return
	}
	id := assignmentID
	if _, err := s.notifications.CreateForUser(ctx, userID, domain.NotificationTypeChatMessage, title, message, "assignment", &id); err != nil {
		s.logger.Warn("failed to send chat notification", zap.String("userID", userID.String()), zap.Error(err))
	}
}

// counterparts returns the participants other than sender
func counterparts(a *domain.PackageAssignment, sender uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range []uuid.UUID{a.SalesPersonID, a.OperationsPersonID} {
		if id != sender && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// truncateRunes cuts s to at most n characters, marking the cut with "..."
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
