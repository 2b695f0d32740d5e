package http_handlers

import (
	"net/http"
	"time"

	"github.com/baechuer/go-api-starter/internal/application/auth"
	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/infrastructure/security"
	"github.com/baechuer/go-api-starter/internal/logger"
	"github.com/baechuer/go-api-starter/internal/metrics"
	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
	"github.com/baechuer/go-api-starter/internal/transport/http/dto"
	"github.com/baechuer/go-api-starter/internal/transport/http/response"
)

type AuthHandler struct {
	svc           *auth.Service
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(svc *auth.Service, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Username, req.Password, req.FullName)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Str("username", res.User.Username).
		Msg("user_registered")
	metrics.RecordRegistration()

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)

	response.Created(w, dto.AuthData{
		User:   dto.NewUserView(res.User),
		Tokens: tokensView(res.Tokens),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		metrics.RecordLoginFailed()
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")
	metrics.RecordLogin()

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.AuthData{
		User:   dto.NewUserView(res.User),
		Tokens: tokensView(res.Tokens),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshTok := h.refreshTokenFromRequest(r)
	if refreshTok == "" {
		response.WriteError(w, r, domain.ErrRefreshTokenInvalid())
		return
	}

	toks, err := h.svc.Refresh(r.Context(), refreshTok)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	metrics.RecordTokenRefresh()
	security.SetRefreshToken(w, toks.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.RefreshData{Tokens: tokensView(toks)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshTok := h.refreshTokenFromRequest(r); refreshTok != "" {
		_ = h.svc.Logout(r.Context(), refreshTok) // keep idempotent
	}

	security.ClearRefreshToken(w, h.secureCookies)
	response.NoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := reqctx.UserID(r.Context())
	if userID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	u, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

func (h *AuthHandler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	userID := reqctx.UserID(r.Context())
	if userID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.PasswordChangeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.PasswordChange(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	// The service revoked every session; clear the cookie so the browser
	// notices immediately.
	security.ClearRefreshToken(w, h.secureCookies)
	response.NoContent(w)
}

// ---- Password Reset ----

func (h *AuthHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	// Always 202. A failure to store or queue must not turn into a
	// different status for registered addresses (enumeration oracle).
	if err := h.svc.PasswordResetRequest(r.Context(), req.Email); err != nil {
		logger.WithCtx(r.Context()).Error().
			Err(err).
			Msg("password reset request failed")
	} else {
		metrics.RecordPasswordReset()
	}

	response.Accepted(w, dto.StatusData{Status: "accepted"})
}

// PasswordResetValidate lets a front-end pre-check a token before showing
// the new-password form. The token stays usable.
func (h *AuthHandler) PasswordResetValidate(w http.ResponseWriter, r *http.Request) {
	q := dto.PasswordResetValidateQuery{Token: r.URL.Query().Get("token")}
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.PasswordResetValidate(r.Context(), q.Token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.TokenValidData{Valid: true})
}

func (h *AuthHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.PasswordResetConfirm(r.Context(), req.Token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

// ---- Verify Email ----

// VerifyEmailRequest queues a verification email for the current user. It is
// authenticated, so the address comes from the account, not the body.
func (h *AuthHandler) VerifyEmailRequest(w http.ResponseWriter, r *http.Request) {
	userID := reqctx.UserID(r.Context())
	if userID == "" {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	u, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.VerifyEmailRequest(r.Context(), u.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.Accepted(w, dto.StatusData{Status: "accepted"})
}

func (h *AuthHandler) VerifyEmailConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.VerifyEmailConfirm(r.Context(), req.Token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	metrics.RecordEmailVerification()
	response.OK(w, dto.StatusData{Status: "verified"})
}

// refreshTokenFromRequest prefers the HttpOnly cookie and falls back to a
// JSON body {"refresh_token": ...} for non-browser clients.
func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	if tok, err := security.ReadRefreshToken(r); err == nil && tok != "" {
		return tok
	}

	var req dto.RefreshRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		return ""
	}
	_ = req.Validate()
	return req.RefreshToken
}

func tokensView(t auth.AuthTokens) dto.TokensView {
	return dto.TokensView{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
}
