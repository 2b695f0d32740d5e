package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/baechuer/go-api-starter/internal/domain"
)

const fileColumns = `id, owner_id, object_key, file_name, content_type, size_bytes, created_at`

type FileRepo struct {
	db *sql.DB
}

func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

func scanFile(s rowScanner) (domain.StoredFile, error) {
	var f domain.StoredFile
	err := s.Scan(
		&f.ID,
		&f.OwnerID,
		&f.ObjectKey,
		&f.FileName,
		&f.ContentType,
		&f.SizeBytes,
		&f.CreatedAt,
	)
	return f, err
}

func (r *FileRepo) Create(ctx context.Context, f domain.StoredFile) (domain.StoredFile, error) {
	if f.ID == "" {
		return domain.StoredFile{}, domain.ErrMissingField("id")
	}
	if f.OwnerID == "" {
		return domain.StoredFile{}, domain.ErrMissingField("owner_id")
	}
	if f.ObjectKey == "" {
		return domain.StoredFile{}, domain.ErrMissingField("object_key")
	}

	const q = `
INSERT INTO files (id, owner_id, object_key, file_name, content_type, size_bytes)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + fileColumns + `;
`
	out, err := scanFile(r.db.QueryRowContext(ctx, q,
		f.ID, f.OwnerID, f.ObjectKey, f.FileName, f.ContentType, f.SizeBytes,
	))
	if err != nil {
		return domain.StoredFile{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (domain.StoredFile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoredFile{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + fileColumns + `
FROM files
WHERE id = $1
LIMIT 1;
`
	f, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return domain.StoredFile{}, domain.ErrFileNotFound()
		}
		return domain.StoredFile{}, domain.ErrDBUnavailable(err)
	}
	return f, nil
}

// ListByOwner returns the owner's files, newest first.
func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.StoredFile, int, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, 0, domain.ErrMissingField("owner_id")
	}

	const qCount = `SELECT COUNT(1) FROM files WHERE owner_id = $1;`

	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}

	const q = `
SELECT ` + fileColumns + `
FROM files
WHERE owner_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.StoredFile, 0, limit)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, domain.ErrDBUnavailable(err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	return out, total, nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrMissingField("id")
	}

	const q = `DELETE FROM files WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrFileNotFound()
	}
	return nil
}
