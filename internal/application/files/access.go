package files

import (
	"context"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Get returns file metadata plus a short-lived download URL. Readers
// must own the file or hold admin rank; non-owners get the same 404 an
// unknown ID produces, so IDs cannot be probed.
func (s *Service) Get(ctx context.Context, actorID, actorRole, fileID string) (domain.StoredFile, string, error) {
	if fileID == "" {
		return domain.StoredFile{}, "", domain.ErrMissingField("id")
	}

	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return domain.StoredFile{}, "", err
	}
	if !canAccess(f, actorID, actorRole) {
		return domain.StoredFile{}, "", domain.ErrFileNotFound()
	}

	url, err := s.store.PresignGet(ctx, f.ObjectKey, s.presignTTL)
	if err != nil {
		return domain.StoredFile{}, "", err
	}
	return f, url, nil
}

// List returns one page of the caller's own uploads, newest first.
func (s *Service) List(ctx context.Context, ownerID string, page, pageSize int) (Page, error) {
	if ownerID == "" {
		return Page{}, domain.ErrTokenMissing()
	}
	page, pageSize = normalizePage(page, pageSize)

	offset := (page - 1) * pageSize
	items, total, err := s.repo.ListByOwner(ctx, ownerID, offset, pageSize)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []domain.StoredFile{}
	}

	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Delete removes the row first, then the object. A failed object
// delete leaves an orphan in the bucket, which is preferable to a row
// pointing at nothing.
func (s *Service) Delete(ctx context.Context, actorID, actorRole, fileID string) error {
	if fileID == "" {
		return domain.ErrMissingField("id")
	}

	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !canAccess(f, actorID, actorRole) {
		return domain.ErrFileNotFound()
	}

	if err := s.repo.Delete(ctx, fileID); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, f.ObjectKey)
	return nil
}
