package service

import (
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/repository"
)

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	page, pageSize = repository.NormalizePage(page, pageSize)
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
