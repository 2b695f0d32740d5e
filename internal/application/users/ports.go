package users

import (
	"context"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

/*
UserRepo
--------
Persistence port for user management. Update persists the whole mutable
field set; uniqueness violations come back as conflict errors.
*/
type UserRepo interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
	SetRole(ctx context.Context, userID string, role string) error
	Delete(ctx context.Context, userID string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

/*
Hasher
------
Only Hash is needed here; login-time comparison lives in the auth flows.
*/
type Hasher interface {
	Hash(password string) (string, error)
}

/*
SessionRevoker
--------------
Lets user management kill sessions without owning the session store.
*/
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

/*
Cache
-----
Read-through cache for the hot first page of the user list. Get reports
found=false on miss; a nil Cache disables caching entirely.
*/
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
