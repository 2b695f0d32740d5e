package http_handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/go-api-starter/internal/application/files"
	"github.com/baechuer/go-api-starter/internal/infrastructure/memory"
)

// fakeObjectStore keeps object bytes in a map and presigns with a
// recognizable fake URL.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://files.test/" + key + "?sig=fake", nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeObjectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func newTestFilesHandler(t *testing.T, maxUploadSize int64) (*FilesHandler, *fakeObjectStore) {
	t.Helper()

	store := newFakeObjectStore()
	svc := files.NewService(memory.NewFileRepo(), store, files.Config{
		MaxUploadSize: maxUploadSize,
		PresignTTL:    5 * time.Minute,
	})
	return NewFilesHandler(svc, maxUploadSize), store
}

// pngBytes carries the PNG signature so content sniffing sees image/png.
func pngBytes(extra int) []byte {
	sig := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	return append(sig, bytes.Repeat([]byte{0x00}, extra)...)
}

// uploadFile posts one multipart file as the given owner.
func uploadFile(t *testing.T, h *FilesHandler, ownerID, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := mustMultipartFile(t, "file", fileName, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	req = withUserCtx(req, ownerID, "user")

	rr := httptest.NewRecorder()
	h.Upload(rr, req)
	return rr
}

// mustUploadID uploads and returns the stored file's ID.
func mustUploadID(t *testing.T, h *FilesHandler, ownerID, fileName string, content []byte) string {
	t.Helper()

	rr := uploadFile(t, h, ownerID, fileName, content)
	if rr.Result().StatusCode != http.StatusCreated {
		t.Fatalf("setup upload expected 201, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}

	var data struct {
		ID string `json:"id"`
	}
	mustReadJSON(t, strings.NewReader(rr.Body.String()), &data)
	if data.ID == "" {
		t.Fatalf("expected file id in upload response; body=%s", rr.Body.String())
	}
	return data.ID
}

// -------------------------
// Upload
// -------------------------

func TestFilesHandler_Upload_NoContext_Returns401(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	body, contentType := mustMultipartFile(t, "file", "a.png", pngBytes(16))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)
	if rr.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Result().StatusCode)
	}
}

func TestFilesHandler_Upload_MissingFilePart_Returns400(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	// multipart body with the wrong field name
	body, contentType := mustMultipartFile(t, "attachment", "a.png", pngBytes(16))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	req = withUserCtx(req, "u-1", "user")
	rr := httptest.NewRecorder()

	h.Upload(rr, req)
	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Result().StatusCode)
	}
}

func TestFilesHandler_Upload_OK_Returns201(t *testing.T) {
	h, store := newTestFilesHandler(t, 1<<20)

	rr := uploadFile(t, h, "u-1", "avatar.png", pngBytes(64))
	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body=%s", res.StatusCode, rr.Body.String())
	}

	var data struct {
		ID          string `json:"id"`
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
	}
	mustReadJSON(t, strings.NewReader(rr.Body.String()), &data)

	if data.ID == "" {
		t.Fatalf("expected file id")
	}
	if data.FileName != "avatar.png" {
		t.Fatalf("expected file_name avatar.png, got %q", data.FileName)
	}
	// sniffed from the payload, not taken from the client
	if data.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %q", data.ContentType)
	}
	if data.SizeBytes != int64(len(pngBytes(64))) {
		t.Fatalf("expected size %d, got %d", len(pngBytes(64)), data.SizeBytes)
	}
	if store.count() != 1 {
		t.Fatalf("expected 1 stored object, got %d", store.count())
	}
}

func TestFilesHandler_Upload_TextFile_OK(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	rr := uploadFile(t, h, "u-1", "notes.txt", []byte("plain text content here"))
	if rr.Result().StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}

	var data struct {
		ContentType string `json:"content_type"`
	}
	mustReadJSON(t, strings.NewReader(rr.Body.String()), &data)
	if data.ContentType != "text/plain" {
		t.Fatalf("expected text/plain, got %q", data.ContentType)
	}
}

func TestFilesHandler_Upload_UnsupportedType_Returns400(t *testing.T) {
	h, store := newTestFilesHandler(t, 1<<20)

	// sniffs as application/octet-stream, which is not allowed
	raw := []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}
	rr := uploadFile(t, h, "u-1", "mystery.bin", raw)

	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "unsupported_file_type") {
		t.Fatalf("expected unsupported_file_type, got body=%s", rr.Body.String())
	}
	if store.count() != 0 {
		t.Fatalf("rejected upload must not leave objects behind, got %d", store.count())
	}
}

func TestFilesHandler_Upload_TooLarge_Returns400(t *testing.T) {
	h, _ := newTestFilesHandler(t, 64) // 64 byte cap

	rr := uploadFile(t, h, "u-1", "big.png", pngBytes(512))
	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "file_too_large") {
		t.Fatalf("expected file_too_large, got body=%s", rr.Body.String())
	}
}

// -------------------------
// List
// -------------------------

func TestFilesHandler_List_OwnFilesOnly(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	mustUploadID(t, h, "owner-a", "one.png", pngBytes(16))
	mustUploadID(t, h, "owner-a", "two.png", pngBytes(16))
	mustUploadID(t, h, "owner-b", "other.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req = withUserCtx(req, "owner-a", "user")
	rr := httptest.NewRecorder()

	h.List(rr, req)
	if rr.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}

	var page pageBody
	mustReadJSON(t, strings.NewReader(rr.Body.String()), &page)

	if page.Total != 2 {
		t.Fatalf("expected total=2 for owner-a, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
}

func TestFilesHandler_List_NoContext_Returns401(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)
	if rr.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Result().StatusCode)
	}
}

// -------------------------
// Get
// -------------------------

func TestFilesHandler_Get_Owner_GetsPresignedURL(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	fileID := mustUploadID(t, h, "owner-a", "pic.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID, nil)
	req = withURLParam(req, "id", fileID)
	req = withUserCtx(req, "owner-a", "user")
	rr := httptest.NewRecorder()

	h.Get(rr, req)
	if rr.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}

	var data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	mustReadJSON(t, strings.NewReader(rr.Body.String()), &data)

	if data.ID != fileID {
		t.Fatalf("expected id %q, got %q", fileID, data.ID)
	}
	if !strings.HasPrefix(data.URL, "https://files.test/uploads/owner-a/") {
		t.Fatalf("expected presigned URL for the object, got %q", data.URL)
	}
}

func TestFilesHandler_Get_NonOwner_Returns404(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	fileID := mustUploadID(t, h, "owner-a", "pic.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID, nil)
	req = withURLParam(req, "id", fileID)
	req = withUserCtx(req, "someone-else", "user")
	rr := httptest.NewRecorder()

	h.Get(rr, req)
	// non-owners see the same 404 as an unknown ID
	if rr.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}
}

func TestFilesHandler_Get_Admin_OK(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	fileID := mustUploadID(t, h, "owner-a", "pic.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID, nil)
	req = withURLParam(req, "id", fileID)
	req = withUserCtx(req, "admin-1", "admin")
	rr := httptest.NewRecorder()

	h.Get(rr, req)
	if rr.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}
}

func TestFilesHandler_Get_Unknown_Returns404(t *testing.T) {
	h, _ := newTestFilesHandler(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/ghost", nil)
	req = withURLParam(req, "id", "ghost")
	req = withUserCtx(req, "u-1", "user")
	rr := httptest.NewRecorder()

	h.Get(rr, req)
	if rr.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Result().StatusCode)
	}
}

// -------------------------
// Delete
// -------------------------

func TestFilesHandler_Delete_Owner_Returns204(t *testing.T) {
	h, store := newTestFilesHandler(t, 1<<20)

	fileID := mustUploadID(t, h, "owner-a", "pic.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID, nil)
	req = withURLParam(req, "id", fileID)
	req = withUserCtx(req, "owner-a", "user")
	rr := httptest.NewRecorder()

	h.Delete(rr, req)
	if rr.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d; body=%s", rr.Result().StatusCode, rr.Body.String())
	}
	if store.count() != 0 {
		t.Fatalf("expected object removed from store, got %d left", store.count())
	}

	// gone for real
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID, nil)
	req2 = withURLParam(req2, "id", fileID)
	req2 = withUserCtx(req2, "owner-a", "user")
	rr2 := httptest.NewRecorder()

	h.Get(rr2, req2)
	if rr2.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr2.Result().StatusCode)
	}
}

func TestFilesHandler_Delete_NonOwner_Returns404(t *testing.T) {
	h, store := newTestFilesHandler(t, 1<<20)

	fileID := mustUploadID(t, h, "owner-a", "pic.png", pngBytes(16))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID, nil)
	req = withURLParam(req, "id", fileID)
	req = withUserCtx(req, "someone-else", "user")
	rr := httptest.NewRecorder()

	h.Delete(rr, req)
	if rr.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Result().StatusCode)
	}
	if store.count() != 1 {
		t.Fatalf("object must survive a non-owner delete, got %d", store.count())
	}
}
