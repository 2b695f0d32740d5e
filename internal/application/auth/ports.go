package auth

import (
	"context"
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth flows need, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email address.
	GetByIdentifier(ctx context.Context, identifier string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Role   string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, role string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
SessionStore
------------
Refresh token / session management.
Backed by Redis in deployment, memory in tests.
*/
type SessionStore interface {
	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (newToken string, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
	GetUserIDByRefreshToken(ctx context.Context, token string) (string, error)
}

/*
OneTimeTokenStore
-----------------
Opaque one-time tokens for:
- email verification
- password reset
*/
type OneTimeTokenKind string

const (
	TokenVerifyEmail   OneTimeTokenKind = "verify_email"
	TokenPasswordReset OneTimeTokenKind = "password_reset"
)

type OneTimeTokenStore interface {
	Save(ctx context.Context, kind OneTimeTokenKind, token string, userID string, ttl time.Duration) error
	Consume(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error)
	Peek(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error) // for validate endpoint
}

/*
EventPublisher
--------------
Publishes events to the broker. The mail worker consumes these and
sends emails; the API never talks SMTP itself.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
	PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error
	PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error
}

type UserRegisteredEvent struct {
	UserID   string
	Email    string
	Username string
}

type VerifyEmailEvent struct {
	UserID string
	Email  string
	URL    string
}

type PasswordResetEvent struct {
	UserID string
	Email  string
	URL    string
}
