package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

/*
FileRepo
--------
In-memory file metadata store with the same surface as the Postgres
repo. ListByOwner returns newest first.
*/
type FileRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.StoredFile
}

func NewFileRepo() *FileRepo {
	return &FileRepo{byID: make(map[string]domain.StoredFile)}
}

func (r *FileRepo) Create(ctx context.Context, f domain.StoredFile) (domain.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == "" {
		return domain.StoredFile{}, domain.ErrInternal(nil)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	r.byID[f.ID] = f
	return f, nil
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (domain.StoredFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return domain.StoredFile{}, domain.ErrFileNotFound()
	}
	return f, nil
}

func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.StoredFile, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]domain.StoredFile, 0)
	for _, f := range r.byID {
		if f.OwnerID == ownerID {
			owned = append(owned, f)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID < owned[j].ID
	})

	total := len(owned)
	if offset >= total {
		return []domain.StoredFile{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrFileNotFound()
	}
	delete(r.byID, id)
	return nil
}
