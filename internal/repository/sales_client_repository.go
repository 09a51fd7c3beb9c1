package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

var salesClientSortFields = map[string]string{
	"name":             "name",
	"travelDate":       "travel_date",
	"nextFollowUpDate": "next_follow_up_date",
	"status":           "current_follow_up_status",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
}

// SalesClientFilter narrows sales client listings
type SalesClientFilter struct {
	Status *domain.FollowUpStatus
	Search string
}

type SalesClientRepository struct {
	db *gorm.DB
}

func NewSalesClientRepository(db *gorm.DB) *SalesClientRepository {
	return &SalesClientRepository{db: db}
}

func (r *SalesClientRepository) Create(ctx context.Context, client *domain.SalesClient) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *SalesClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SalesClient, error) {
	var client domain.SalesClient
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx), "sales_person_id")
	if err := query.First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *SalesClientRepository) Update(ctx context.Context, client *domain.SalesClient) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *SalesClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyOwnerFilter(ctx, tx, "sales_person_id").Delete(&domain.SalesClient{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("sales_client_id = ?", id).Delete(&domain.FollowUpHistory{}).Error
	})
}

func (r *SalesClientRepository) List(ctx context.Context, filter SalesClientFilter, page, pageSize int, sort SortConfig) ([]domain.SalesClient, int64, error) {
	var clients []domain.SalesClient
	var total int64

	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.SalesClient{}), "sales_person_id")
	if filter.Status != nil {
		query = query.Where("current_follow_up_status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(destination) LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := BuildOrderClause(sort, salesClientSortFields, "updated_at")
	err := Paginate(query.Order(order), page, pageSize).Find(&clients).Error
	return clients, total, err
}

// ListDueOn returns the current user's clients whose next follow-up date
// equals date exactly, ordered by time.
func (r *SalesClientRepository) ListDueOn(ctx context.Context, date string) ([]domain.SalesClient, error) {
	var clients []domain.SalesClient
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx), "sales_person_id")
	err := query.
		Where("next_follow_up_date = ?", date).
		Order("next_follow_up_time ASC, name ASC").
		Find(&clients).Error
	return clients, err
}

// ListAllDueOn is ListDueOn across every sales person
func (r *SalesClientRepository) ListAllDueOn(ctx context.Context, date string) ([]domain.SalesClient, error) {
	var clients []domain.SalesClient
	err := r.db.WithContext(ctx).
		Where("next_follow_up_date = ?", date).
		Order("sales_person_id ASC, next_follow_up_time ASC").
		Find(&clients).Error
	return clients, err
}

// SaveStatus persists the client and its history row together
func (r *SalesClientRepository) SaveStatus(ctx context.Context, client *domain.SalesClient, history *domain.FollowUpHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(client).Error; err != nil {
			return err
		}
		history.SalesClientID = client.ID
		return tx.Create(history).Error
	})
}

func (r *SalesClientRepository) ListHistory(ctx context.Context, clientID uuid.UUID) ([]domain.FollowUpHistory, error) {
	var history []domain.FollowUpHistory
	err := r.db.WithContext(ctx).
		Where("sales_client_id = ?", clientID).
		Order("changed_at ASC").
		Find(&history).Error
	return history, err
}
