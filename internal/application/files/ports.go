package files

import (
	"context"
	"io"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

/*
FileRepo
--------
Metadata persistence for uploaded objects.
*/
type FileRepo interface {
	Create(ctx context.Context, f domain.StoredFile) (domain.StoredFile, error)
	GetByID(ctx context.Context, id string) (domain.StoredFile, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.StoredFile, int, error)
	Delete(ctx context.Context, id string) error
}

/*
ObjectStore
-----------
Byte storage port. The bucket is bound at construction; keys are
relative. Backed by S3/MinIO in deployment.
*/
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
