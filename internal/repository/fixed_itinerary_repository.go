package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

type FixedItineraryRepository struct {
	db *gorm.DB
}

func NewFixedItineraryRepository(db *gorm.DB) *FixedItineraryRepository {
	return &FixedItineraryRepository{db: db}
}

func (r *FixedItineraryRepository) Create(ctx context.Context, fixed *domain.FixedItinerary) error {
	return r.db.WithContext(ctx).Create(fixed).Error
}

func (r *FixedItineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FixedItinerary, error) {
	var fixed domain.FixedItinerary
	if err := r.db.WithContext(ctx).First(&fixed, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fixed, nil
}

func (r *FixedItineraryRepository) Update(ctx context.Context, fixed *domain.FixedItinerary) error {
	return r.db.WithContext(ctx).Save(fixed).Error
}

func (r *FixedItineraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.FixedItinerary{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns templates, optionally filtered by trip length and mode
func (r *FixedItineraryRepository) List(ctx context.Context, days *int, mode *domain.TransportationMode, activeOnly bool) ([]domain.FixedItinerary, error) {
	var items []domain.FixedItinerary
	query := r.db.WithContext(ctx).Model(&domain.FixedItinerary{})
	if days != nil {
		query = query.Where("number_of_days = ?", *days)
	}
	if mode != nil {
		query = query.Where("transportation_mode = ?", *mode)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("number_of_days ASC, name ASC").Find(&items).Error
	return items, err
}
