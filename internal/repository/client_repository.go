package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

var clientSortFields = map[string]string{
	"name":      "name",
	"startDate": "start_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// GetByID returns a client visible to the current user
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx), "created_by_id")
	if err := query.First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx), "created_by_id")
	result := query.Delete(&domain.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, page, pageSize int, search string, sort SortConfig) ([]domain.Client, int64, error) {
	var clients []domain.Client
	var total int64

	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.Client{}), "created_by_id")
	if search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := BuildOrderClause(sort, clientSortFields, "updated_at")
	err := Paginate(query.Order(order), page, pageSize).Find(&clients).Error
	return clients, total, err
}
