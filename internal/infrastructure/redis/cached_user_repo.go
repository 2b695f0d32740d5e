package redis

import (
	"context"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// UserStore is the full persistence surface the rest of the app needs;
// the postgres repo satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
	SetRole(ctx context.Context, userID string, role string) error
	Delete(ctx context.Context, userID string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

// CachedUserRepo is a read-through cache over a UserStore. Only GetByID
// is cached: it is the hot path (token refresh, /me, ownership checks)
// and the one lookup whose key survives profile edits. Every mutation
// drops the entry; a Redis hiccup silently falls through to Postgres.
type CachedUserRepo struct {
	inner UserStore
	cache *Client
	ttl   time.Duration
}

func NewCachedUserRepo(inner UserStore, cache *Client, ttl time.Duration) *CachedUserRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUserRepo{inner: inner, cache: cache, ttl: ttl}
}

func userKey(id string) string { return "user:" + id }

func (r *CachedUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	if r.cache != nil {
		var u domain.User
		if found, err := r.cache.Get(ctx, userKey(id), &u); err == nil && found {
			return u, nil
		}
	}

	u, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, userKey(id), u, r.ttl)
	}
	return u, nil
}

func (r *CachedUserRepo) invalidate(ctx context.Context, id string) {
	if r.cache != nil {
		_ = r.cache.Delete(ctx, userKey(id))
	}
}

// --- passthrough reads ---

func (r *CachedUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.inner.GetByEmail(ctx, email)
}

func (r *CachedUserRepo) GetByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	return r.inner.GetByIdentifier(ctx, identifier)
}

func (r *CachedUserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	return r.inner.List(ctx, offset, limit)
}

func (r *CachedUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	return r.inner.CountByRole(ctx, role)
}

// --- writes invalidate ---

func (r *CachedUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return r.inner.Create(ctx, u)
}

func (r *CachedUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	if err := r.inner.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedUserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	if err := r.inner.SetEmailVerified(ctx, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	updated, err := r.inner.Update(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	r.invalidate(ctx, u.ID)
	return updated, nil
}

func (r *CachedUserRepo) SetRole(ctx context.Context, userID string, role string) error {
	if err := r.inner.SetRole(ctx, userID, role); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedUserRepo) Delete(ctx context.Context, userID string) error {
	if err := r.inner.Delete(ctx, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
