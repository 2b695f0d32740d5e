package http_handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/go-api-starter/internal/application/users"
	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/logger"
	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
	"github.com/baechuer/go-api-starter/internal/transport/http/dto"
	"github.com/baechuer/go-api-starter/internal/transport/http/response"
)

type UsersHandler struct {
	svc *users.Service
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// List is admin-only (enforced by the router's RequireAtLeast guard).
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := dto.ParsePagination(r)

	res, err := h.svc.List(r.Context(), page, pageSize)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	items := make([]dto.UserView, 0, len(res.Items))
	for _, u := range res.Items {
		items = append(items, dto.NewUserView(u))
	}

	response.OK(w, dto.PageView{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := reqctx.UserID(r.Context())
	if userID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.UpdateMeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateSelf(r.Context(), userID, users.ProfileUpdate{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Bio:      req.Bio,
		Password: req.Password,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

func (h *UsersHandler) UpdateByAdmin(w http.ResponseWriter, r *http.Request) {
	actorID := reqctx.UserID(r.Context())

	targetID := strings.TrimSpace(chi.URLParam(r, "id"))
	if targetID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	var req dto.AdminUpdateUserRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateByAdmin(r.Context(), actorID, targetID, users.AdminUpdate{
		ProfileUpdate: users.ProfileUpdate{
			Email:    req.Email,
			Username: req.Username,
			FullName: req.FullName,
			Bio:      req.Bio,
			Password: req.Password,
		},
		Active: req.Active,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("user_id", targetID).
		Msg("user_updated_by_admin")

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := reqctx.UserID(r.Context())

	targetID := strings.TrimSpace(chi.URLParam(r, "id"))
	if targetID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.Delete(r.Context(), actorID, targetID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("user_id", targetID).
		Msg("user_deleted")

	response.NoContent(w)
}

func (h *UsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actorID := reqctx.UserID(r.Context())
	actorRole := reqctx.Role(r.Context())

	targetID := strings.TrimSpace(chi.URLParam(r, "id"))
	if targetID == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	var req dto.SetUserRoleRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.SetRole(r.Context(), actorID, actorRole, targetID, req.Role); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("user_id", targetID).
		Str("role", req.Role).
		Msg("user_role_updated")

	response.OK(w, map[string]string{
		"status":  "role_updated",
		"user_id": targetID,
		"role":    req.Role,
	})
}
