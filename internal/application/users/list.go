package users

import (
	"context"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// List returns one page of users ordered by creation time. Only the
// default first page goes through the cache; deeper pages are rare
// enough to always hit the database.
func (s *Service) List(ctx context.Context, page, pageSize int) (Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	cacheable := s.cache != nil && page == 1 && pageSize == DefaultPageSize
	if cacheable {
		var cached Page
		if found, err := s.cache.Get(ctx, listCacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	offset := (page - 1) * pageSize
	items, total, err := s.users.List(ctx, offset, pageSize)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []domain.User{}
	}

	p := Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}

	if cacheable {
		_ = s.cache.Set(ctx, listCacheKey, p, listCacheTTL)
	}
	return p, nil
}

// Get returns a single user by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return s.users.GetByID(ctx, id)
}
