package files

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/go-api-starter/internal/domain"
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// Upload validates and stores one object. The declared size and
// filename come from the multipart header; the content type is sniffed
// from the payload because client headers lie.
func (s *Service) Upload(ctx context.Context, ownerID, fileName string, size int64, body io.Reader) (domain.StoredFile, error) {
	if ownerID == "" {
		return domain.StoredFile{}, domain.ErrTokenMissing()
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return domain.StoredFile{}, domain.ErrMissingField("file")
	}
	if size <= 0 {
		return domain.StoredFile{}, domain.ErrInvalidField("file", "empty")
	}
	if size > s.maxUploadSize {
		return domain.StoredFile{}, domain.ErrFileTooLarge(strconv.FormatInt(s.maxUploadSize, 10))
	}

	// Sniff the real content type from the head of the stream, then
	// stitch the consumed bytes back on.
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return domain.StoredFile{}, domain.ErrInvalidField("file", "unreadable")
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if _, ok := s.allowedMIME[contentType]; !ok {
		return domain.StoredFile{}, domain.ErrUnsupportedFileType(contentType)
	}
	full := io.MultiReader(bytes.NewReader(head), body)

	fileID := uuid.NewString()
	key := objectKey(ownerID, fileID, fileName)

	if err := s.store.Put(ctx, key, full, size, contentType); err != nil {
		return domain.StoredFile{}, err
	}

	f := domain.StoredFile{
		ID:          fileID,
		OwnerID:     ownerID,
		ObjectKey:   key,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   size,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, f)
	if err != nil {
		// Roll back the orphaned object; the row is the source of truth.
		_ = s.store.Delete(ctx, key)
		return domain.StoredFile{}, err
	}
	return created, nil
}

// objectKey shapes keys as uploads/<owner>/<fileID><ext> so per-user
// prefixes stay listable and keys never collide.
func objectKey(ownerID, fileID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	return "uploads/" + ownerID + "/" + fileID + ext
}
