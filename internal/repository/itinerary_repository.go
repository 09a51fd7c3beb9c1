package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when an itinerary changed since it was read
var ErrVersionConflict = errors.New("itinerary version conflict")

var itinerarySortFields = map[string]string{
	"finalPrice": "final_price",
	"status":     "status",
	"version":    "version",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// ItineraryFilter narrows itinerary listings
type ItineraryFilter struct {
	ClientID *uuid.UUID
	Status   *domain.ItineraryStatus
}

type ItineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// CreateWithChange inserts a new itinerary and its first change entry
func (r *ItineraryRepository) CreateWithChange(ctx context.Context, itinerary *domain.Itinerary, change *domain.ItineraryChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(itinerary).Error; err != nil {
			return err
		}
		change.ItineraryID = itinerary.ID
		change.Version = itinerary.Version
		return tx.Create(change).Error
	})
}

// SaveVersioned persists an itinerary whose Version has already been
// incremented, together with exactly one change entry. The row is only
// written if the stored version is still Version-1.
func (r *ItineraryRepository) SaveVersioned(ctx context.Context, itinerary *domain.Itinerary, change *domain.ItineraryChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(itinerary).
			Where("version = ?", itinerary.Version-1).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(itinerary)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		change.ItineraryID = itinerary.ID
		change.Version = itinerary.Version
		return tx.Create(change).Error
	})
}

// GetByID returns an itinerary visible to the current user, with its change log
func (r *ItineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	var itinerary domain.Itinerary
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx), "created_by_id").
		Preload("Changes", func(db *gorm.DB) *gorm.DB {
			return db.Order("version ASC, created_at ASC")
		})
	if err := query.First(&itinerary, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &itinerary, nil
}

// GetReadable returns an itinerary with its change log if the current user
// owns it or is the sales or operations person of an assignment linked to it.
func (r *ItineraryRepository) GetReadable(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	var itinerary domain.Itinerary
	query := r.applyReadFilter(ctx, r.db.WithContext(ctx)).
		Preload("Changes", func(db *gorm.DB) *gorm.DB {
			return db.Order("version ASC, created_at ASC")
		})
	if err := query.First(&itinerary, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &itinerary, nil
}

func (r *ItineraryRepository) applyReadFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return query
	}
	owner := userCtx.OwnerFilter()
	if owner == nil {
		return query
	}
	assigned := r.db.WithContext(ctx).Model(&domain.PackageAssignment{}).
		Select("itinerary_id").
		Where("itinerary_id IS NOT NULL AND (sales_person_id = ? OR operations_person_id = ?)", *owner, *owner)
	return query.Where("(created_by_id = ? OR id IN (?))", *owner, assigned)
}

func (r *ItineraryRepository) ListChanges(ctx context.Context, itineraryID uuid.UUID) ([]domain.ItineraryChange, error) {
	var changes []domain.ItineraryChange
	err := r.db.WithContext(ctx).
		Where("itinerary_id = ?", itineraryID).
		Order("version ASC, created_at ASC").
		Find(&changes).Error
	return changes, err
}

func (r *ItineraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyOwnerFilter(ctx, tx, "created_by_id").Delete(&domain.Itinerary{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("itinerary_id = ?", id).Delete(&domain.ItineraryChange{}).Error; err != nil {
			return err
		}
		return tx.Where("itinerary_id = ?", id).Delete(&domain.ItineraryDocument{}).Error
	})
}

func (r *ItineraryRepository) List(ctx context.Context, filter ItineraryFilter, page, pageSize int, sort SortConfig) ([]domain.Itinerary, int64, error) {
	var itineraries []domain.Itinerary
	var total int64

	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.Itinerary{}), "created_by_id")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := BuildOrderClause(sort, itinerarySortFields, "updated_at")
	err := Paginate(query.Order(order), page, pageSize).Find(&itineraries).Error
	return itineraries, total, err
}
