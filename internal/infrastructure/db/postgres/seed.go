package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/go-api-starter/internal/domain"
	"github.com/baechuer/go-api-starter/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type SuperuserSeed struct {
	Email    string
	Username string
	Password string
}

// EnsureSuperuser creates the initial admin account when no admin
// exists yet. Runs on every start; does nothing once an admin is there.
func EnsureSuperuser(ctx context.Context, repo SeederRepo, hasher SeederHasher, seed SuperuserSeed) error {
	n, err := repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if seed.Password == "" {
		logger.Logger.Warn().Msg("no admin account exists and FIRST_SUPERUSER_PASSWORD is unset; skipping superuser seed")
		return nil
	}

	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:            uuid.NewString(),
		Email:         seed.Email,
		Username:      seed.Username,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		Active:        true,
		EmailVerified: true,
	}

	created, err := repo.Create(ctx, u)
	if err != nil {
		// A non-admin user may already own the configured email or
		// username; that is not fatal for startup.
		if domain.Is(err, "email_already_exists") || domain.Is(err, "username_already_exists") {
			logger.Logger.Warn().Str("email", seed.Email).Msg("superuser seed skipped: identifier already taken")
			return nil
		}
		return err
	}

	logger.Logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("initial superuser created")
	return nil
}
