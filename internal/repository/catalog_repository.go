package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/gorm"
)

// CatalogEntity is any of the catalog tables
type CatalogEntity interface {
	domain.Transportation | domain.Hotel | domain.Sightseeing | domain.Activity | domain.EntryTicket | domain.Meal
}

// CatalogRepository is CRUD over one catalog table. Hotels and activities
// preload and replace their nested rows.
type CatalogRepository[T CatalogEntity] struct {
	db           *gorm.DB
	order        string
	searchColumn string
	preload      func(*gorm.DB) *gorm.DB
	pruneNested  func(tx *gorm.DB, entity *T) error
}

func NewTransportationRepository(db *gorm.DB) *CatalogRepository[domain.Transportation] {
	return &CatalogRepository[domain.Transportation]{db: db, order: "name ASC", searchColumn: "name"}
}

func NewHotelRepository(db *gorm.DB) *CatalogRepository[domain.Hotel] {
	return &CatalogRepository[domain.Hotel]{
		db:           db,
		order:        "place ASC, name ASC",
		searchColumn: "name",
		preload: func(q *gorm.DB) *gorm.DB {
			return q.Preload("RoomTypes", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC")
			})
		},
		pruneNested: func(tx *gorm.DB, h *domain.Hotel) error {
			keep := make([]uuid.UUID, 0, len(h.RoomTypes))
			for i := range h.RoomTypes {
				h.RoomTypes[i].HotelID = h.ID
				h.RoomTypes[i].SortOrder = i
				if h.RoomTypes[i].ID != uuid.Nil {
					keep = append(keep, h.RoomTypes[i].ID)
				}
			}
			return deleteChildrenExcept(tx, &domain.RoomType{}, "hotel_id", h.ID, keep)
		},
	}
}

func NewSightseeingRepository(db *gorm.DB) *CatalogRepository[domain.Sightseeing] {
	return &CatalogRepository[domain.Sightseeing]{db: db, order: "name ASC", searchColumn: "name"}
}

func NewActivityRepository(db *gorm.DB) *CatalogRepository[domain.Activity] {
	return &CatalogRepository[domain.Activity]{
		db:           db,
		order:        "name ASC",
		searchColumn: "name",
		preload: func(q *gorm.DB) *gorm.DB {
			return q.Preload("Options", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC")
			})
		},
		pruneNested: func(tx *gorm.DB, a *domain.Activity) error {
			keep := make([]uuid.UUID, 0, len(a.Options))
			for i := range a.Options {
				a.Options[i].ActivityID = a.ID
				a.Options[i].SortOrder = i
				if a.Options[i].ID != uuid.Nil {
					keep = append(keep, a.Options[i].ID)
				}
			}
			return deleteChildrenExcept(tx, &domain.ActivityOption{}, "activity_id", a.ID, keep)
		},
	}
}

func NewEntryTicketRepository(db *gorm.DB) *CatalogRepository[domain.EntryTicket] {
	return &CatalogRepository[domain.EntryTicket]{db: db, order: "name ASC", searchColumn: "name"}
}

func NewMealRepository(db *gorm.DB) *CatalogRepository[domain.Meal] {
	return &CatalogRepository[domain.Meal]{db: db, order: "type ASC, place ASC", searchColumn: "place"}
}

func deleteChildrenExcept(tx *gorm.DB, model interface{}, parentColumn string, parentID uuid.UUID, keep []uuid.UUID) error {
	q := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(model).Error
}

// WithTx returns a copy of the repository bound to tx
func (r *CatalogRepository[T]) WithTx(tx *gorm.DB) *CatalogRepository[T] {
	clone := *r
	clone.db = tx
	return &clone
}

func (r *CatalogRepository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.preload != nil {
		q = r.preload(q)
	}
	return q
}

func (r *CatalogRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *CatalogRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.query(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update saves the entity. Nested rows missing from the entity are deleted,
// the rest are upserted so their IDs stay stable for existing day plans.
func (r *CatalogRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.pruneNested != nil {
			if err := r.pruneNested(tx, entity); err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(entity).Error
	})
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var entity T
	result := r.db.WithContext(ctx).Delete(&entity, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CatalogRepository[T]) List(ctx context.Context, page, pageSize int, search string) ([]T, int64, error) {
	var items []T
	var total int64

	var model T
	countQuery := r.db.WithContext(ctx).Model(&model)
	if search != "" {
		countQuery = countQuery.Where("LOWER("+r.searchColumn+") LIKE ?", likePattern(search))
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.query(ctx)
	if search != "" {
		q = q.Where("LOWER("+r.searchColumn+") LIKE ?", likePattern(search))
	}
	err := Paginate(q.Order(r.order), page, pageSize).Find(&items).Error
	return items, total, err
}

// All returns every row with nested rows loaded
func (r *CatalogRepository[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	err := r.query(ctx).Order(r.order).Find(&items).Error
	return items, err
}

// ReplaceAll deletes every row and inserts items in one transaction
func (r *CatalogRepository[T]) ReplaceAll(ctx context.Context, items []T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model T
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
