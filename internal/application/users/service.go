package users

import (
	"context"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	listCacheKey = "users:list:p1:s20"
	listCacheTTL = 30 * time.Second
)

type Service struct {
	users    UserRepo
	hasher   Hasher
	sessions SessionRevoker
	cache    Cache

	audit func(action string, fields map[string]string)
}

func NewService(users UserRepo, hasher Hasher, sessions SessionRevoker, cache Cache) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		cache:    cache,
		audit:    func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// Page is the pagination envelope shared by list endpoints.
type Page struct {
	Items      []domain.User
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ProfileUpdate carries a partial self-service update. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Email    *string
	Username *string
	FullName *string
	Bio      *string
	Password *string
}

// AdminUpdate extends ProfileUpdate with moderation fields.
type AdminUpdate struct {
	ProfileUpdate
	Active *bool
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// invalidateList drops the cached first page after any mutation.
func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, listCacheKey)
}
