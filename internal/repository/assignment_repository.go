package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentFilter narrows assignment listings
type AssignmentFilter struct {
	Status *domain.AssignmentStatus
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// applyParticipantFilter limits non-admins to assignments they are the
// sales or operations person of.
func applyParticipantFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return query
	}
	if owner := userCtx.OwnerFilter(); owner != nil {
		return query.Where("(sales_person_id = ? OR operations_person_id = ?)", *owner, *owner)
	}
	return query
}

// Create inserts the assignment and any checklist items it carries
func (r *AssignmentRepository) Create(ctx context.Context, assignment *domain.PackageAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := assignment.Items
		assignment.Items = nil
		if err := tx.Omit(clause.Associations).Create(assignment).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].AssignmentID = assignment.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		assignment.Items = items
		return nil
	})
}

// GetByID loads an assignment with its client and checklist
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PackageAssignment, error) {
	var assignment domain.PackageAssignment
	err := applyParticipantFilter(ctx, r.db.WithContext(ctx)).
		Preload("SalesClient").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC, created_at ASC")
		}).
		First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentFilter, page, pageSize int) ([]domain.PackageAssignment, int64, error) {
	var assignments []domain.PackageAssignment
	var total int64

	query := applyParticipantFilter(ctx, r.db.WithContext(ctx).Model(&domain.PackageAssignment{}))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := Paginate(query.Preload("SalesClient").Preload("Items").Order("updated_at DESC"), page, pageSize).
		Find(&assignments).Error
	return assignments, total, err
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.PackageAssignment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Checklist items

func (r *AssignmentRepository) CreateItem(ctx context.Context, item *domain.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *AssignmentRepository) GetItem(ctx context.Context, assignmentID, itemID uuid.UUID) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND assignment_id = ?", itemID, assignmentID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *AssignmentRepository) SaveItem(ctx context.Context, item *domain.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *AssignmentRepository) DeleteItem(ctx context.Context, assignmentID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&domain.ChecklistItem{}, "id = ? AND assignment_id = ?", itemID, assignmentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountItems returns the total and completed checklist item counts
func (r *AssignmentRepository) CountItems(ctx context.Context, assignmentID uuid.UUID) (total, completed int, err error) {
	var counts struct {
		Total     int64
		Completed int64
	}
	err = r.db.WithContext(ctx).Model(&domain.ChecklistItem{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed").
		Where("assignment_id = ?", assignmentID).
		Scan(&counts).Error
	return int(counts.Total), int(counts.Completed), err
}
