package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

type ItineraryDocumentRepository struct {
	db *gorm.DB
}

func NewItineraryDocumentRepository(db *gorm.DB) *ItineraryDocumentRepository {
	return &ItineraryDocumentRepository{db: db}
}

func (r *ItineraryDocumentRepository) Create(ctx context.Context, doc *domain.ItineraryDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *ItineraryDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ItineraryDocument, error) {
	var doc domain.ItineraryDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByItinerary returns documents newest version first
func (r *ItineraryDocumentRepository) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryDocument, error) {
	var docs []domain.ItineraryDocument
	err := r.db.WithContext(ctx).
		Where("itinerary_id = ?", itineraryID).
		Order("version DESC, created_at DESC").
		Find(&docs).Error
	return docs, err
}
