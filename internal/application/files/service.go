package files

import (
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Config struct {
	MaxUploadSize int64
	AllowedMIME   []string
	PresignTTL    time.Duration
}

type Service struct {
	repo  FileRepo
	store ObjectStore

	maxUploadSize int64
	allowedMIME   map[string]struct{}
	presignTTL    time.Duration
}

func NewService(repo FileRepo, store ObjectStore, cfg Config) *Service {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIME) == 0 {
		cfg.AllowedMIME = []string{
			"image/jpeg", "image/png", "image/webp", "image/gif",
			"application/pdf", "text/plain",
		}
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 5 * time.Minute
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIME))
	for _, m := range cfg.AllowedMIME {
		allowed[m] = struct{}{}
	}
	return &Service{
		repo:          repo,
		store:         store,
		maxUploadSize: cfg.MaxUploadSize,
		allowedMIME:   allowed,
		presignTTL:    cfg.PresignTTL,
	}
}

// Page is the pagination envelope for file listings.
type Page struct {
	Items      []domain.StoredFile
	Total      int
	Page       int
	PageSize   int
	TotalPages int
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

// canAccess implements the owner-or-admin rule for file reads/deletes.
func canAccess(f domain.StoredFile, actorID, actorRole string) bool {
	if f.OwnerID == actorID {
		return true
	}
	return domain.RoleRank(actorRole) >= domain.RoleRank(domain.RoleAdmin)
}
