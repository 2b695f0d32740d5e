package http_handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/go-api-starter/internal/application/files"
	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/logger"
	"github.com/baechuer/go-api-starter/internal/metrics"
	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
	"github.com/baechuer/go-api-starter/internal/transport/http/dto"
	"github.com/baechuer/go-api-starter/internal/transport/http/response"
)

// multipart framing overhead on top of the payload cap
const uploadFormSlack = 1 << 20

type FilesHandler struct {
	svc           *files.Service
	maxUploadSize int64
}

func NewFilesHandler(svc *files.Service, maxUploadSize int64) *FilesHandler {
	return &FilesHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// Upload accepts one multipart field named "file".
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := reqctx.UserID(r.Context())
	if ownerID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	// The service checks the declared size; this caps what a client can
	// actually send regardless of what the header claims.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+uploadFormSlack)

	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.WriteError(w, r, domain.ErrFileTooLarge(strconv.FormatInt(h.maxUploadSize, 10)))
			return
		}
		response.WriteError(w, r, domain.ErrMissingField("file"))
		return
	}
	defer file.Close()

	f, err := h.svc.Upload(r.Context(), ownerID, header.Filename, header.Size, file)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", ownerID).
		Str("file_id", f.ID).
		Int64("size_bytes", f.SizeBytes).
		Msg("file_uploaded")
	metrics.RecordFileUpload()

	response.Created(w, dto.NewFileView(f))
}

// List returns the caller's own files.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := reqctx.UserID(r.Context())
	if ownerID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	page, pageSize := dto.ParsePagination(r)

	res, err := h.svc.List(r.Context(), ownerID, page, pageSize)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	items := make([]dto.FileView, 0, len(res.Items))
	for _, f := range res.Items {
		items = append(items, dto.NewFileView(f))
	}

	response.OK(w, dto.PageView{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// Get returns file metadata plus a short-lived presigned download URL.
// Owners and admins only.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID := reqctx.UserID(r.Context())
	actorRole := reqctx.Role(r.Context())

	fileID := strings.TrimSpace(chi.URLParam(r, "id"))
	if fileID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	f, url, err := h.svc.Get(r.Context(), actorID, actorRole, fileID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	view := dto.NewFileView(f)
	view.URL = url
	response.OK(w, view)
}

func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := reqctx.UserID(r.Context())
	actorRole := reqctx.Role(r.Context())

	fileID := strings.TrimSpace(chi.URLParam(r, "id"))
	if fileID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.Delete(r.Context(), actorID, actorRole, fileID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", actorID).
		Str("file_id", fileID).
		Msg("file_deleted")

	response.NoContent(w)
}
