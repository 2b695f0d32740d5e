package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/go-api-starter/internal/transport/http/docs"
	appmw "github.com/baechuer/go-api-starter/internal/transport/http/middleware"
)

type MetaHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	PasswordChange(w http.ResponseWriter, r *http.Request)
	PasswordResetRequest(w http.ResponseWriter, r *http.Request)
	PasswordResetValidate(w http.ResponseWriter, r *http.Request)
	PasswordResetConfirm(w http.ResponseWriter, r *http.Request)
	VerifyEmailRequest(w http.ResponseWriter, r *http.Request)
	VerifyEmailConfirm(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)
	UpdateByAdmin(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SetRole(w http.ResponseWriter, r *http.Request)
}

type FilesHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Meta   MetaHandler
	Health HealthHandler
	Auth   AuthHandler
	Users  UsersHandler
	Files  FilesHandler

	// Required guards.
	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler

	// Optional slots; nil disables the feature.
	CORS            func(http.Handler) http.Handler
	GlobalRateLimit func(http.Handler) http.Handler
	BodyLimit       func(http.Handler) http.Handler
	RegisterRL      func(http.Handler) http.Handler
	LoginRL         func(http.Handler) http.Handler
	PasswordResetRL func(http.Handler) http.Handler

	Metrics     http.Handler
	DocsEnabled bool
}

func New(deps Deps) (http.Handler, error) {
	if deps.Meta == nil {
		return nil, fmt.Errorf("nil Meta handler")
	}
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.Files == nil {
		return nil, fmt.Errorf("nil Files handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(appmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	if deps.CORS != nil {
		r.Use(deps.CORS)
	}
	r.Use(middleware.Recoverer)
	r.Use(appmw.AccessLog)
	r.Use(appmw.Metrics)
	if deps.GlobalRateLimit != nil {
		r.Use(deps.GlobalRateLimit)
	}

	// --- Operational ---
	r.Get("/", deps.Meta.Root)
	r.Get("/health", deps.Health.Health)
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Get("/ping", deps.Health.Ping)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.DocsEnabled {
		r.Get("/docs", docs.UIHandler)
		r.Get("/api/v1/openapi.json", docs.OpenAPIHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// --- Auth ---
		r.Route("/auth", func(r chi.Router) {
			if deps.BodyLimit != nil {
				r.Use(deps.BodyLimit)
			}

			with(r, deps.RegisterRL).Post("/register", deps.Auth.Register)
			with(r, deps.LoginRL).Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.Post("/logout", deps.Auth.Logout)
			r.With(deps.AuthMW).Get("/me", deps.Auth.Me)
			r.With(deps.AuthMW).Post("/password", deps.Auth.PasswordChange)

			with(r, deps.PasswordResetRL).Post("/password-reset/request", deps.Auth.PasswordResetRequest)
			r.Get("/password-reset/validate", deps.Auth.PasswordResetValidate) // ?token=...
			r.Post("/password-reset/confirm", deps.Auth.PasswordResetConfirm)

			r.With(deps.AuthMW).Post("/verify-email/request", deps.Auth.VerifyEmailRequest)
			r.Post("/verify-email/confirm", deps.Auth.VerifyEmailConfirm)
		})

		// --- Users ---
		r.Route("/users", func(r chi.Router) {
			if deps.BodyLimit != nil {
				r.Use(deps.BodyLimit)
			}
			r.Use(deps.AuthMW)

			r.With(deps.AdminMW).Get("/", deps.Users.List)
			r.Put("/me", deps.Users.UpdateMe)
			r.Get("/{id}", deps.Users.Get)
			r.With(deps.AdminMW).Put("/{id}", deps.Users.UpdateByAdmin)
			r.With(deps.AdminMW).Delete("/{id}", deps.Users.Delete)
			r.With(deps.AdminMW).Post("/{id}/role", deps.Users.SetRole)
		})

		// --- Files ---
		r.Route("/files", func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Post("/", deps.Files.Upload)
			r.Get("/", deps.Files.List)
			r.Get("/{id}", deps.Files.Get)
			r.Delete("/{id}", deps.Files.Delete)
		})
	})

	return r, nil
}

// with applies an optional middleware; a nil slot leaves the route bare.
func with(r chi.Router, mw func(http.Handler) http.Handler) chi.Router {
	if mw == nil {
		return r
	}
	return r.With(mw)
}
