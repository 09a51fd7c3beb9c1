package repository

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create appends a message. Messages are never edited or deleted.
func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByAssignment returns the most recent messages, up to limit, oldest first
func (r *ChatRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	query := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

// CountUnread counts messages the viewer has not read and did not send
func (r *ChatRepository) CountUnread(ctx context.Context, assignmentID, viewerID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("assignment_id = ? AND is_read = ? AND sender_id <> ?", assignmentID, false, viewerID).
		Count(&count).Error
	return int(count), err
}

// MarkRead marks every message in one assignment not sent by the viewer as read
func (r *ChatRepository) MarkRead(ctx context.Context, assignmentID, viewerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("assignment_id = ? AND is_read = ? AND sender_id <> ?", assignmentID, false, viewerID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
