package repository

import (
	"context"
	"strings"

	"github.com/tripdesk/agency-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string // API field name
	Order SortOrder
}

// DefaultSortConfig returns updatedAt descending
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: "updatedAt", Order: SortOrderDesc}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause maps an API field through a whitelist to an ORDER BY
// clause. Unknown fields sort by defaultColumn.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}
	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}
	return column + " " + order
}

// Paginate applies offset and limit, clamping the page size
func Paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	page, pageSize = NormalizePage(page, pageSize)
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// NormalizePage clamps page to >= 1 and pageSize to 1..MaxPageSize
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyOwnerFilter restricts a query to records owned by the current user.
// Admins and API key requests are not filtered.
func ApplyOwnerFilter(ctx context.Context, query *gorm.DB, column string) *gorm.DB {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return query
	}
	if owner := userCtx.OwnerFilter(); owner != nil {
		return query.Where(column+" = ?", *owner)
	}
	return query
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
