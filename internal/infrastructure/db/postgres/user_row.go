package postgres

import (
	"time"

	"github.com/baechuer/go-api-starter/internal/domain"
)

type userRow struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	FullName      string
	Bio           string
	AvatarFileID  string
	Role          string
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:            ur.ID,
		Email:         ur.Email,
		Username:      ur.Username,
		PasswordHash:  ur.PasswordHash,
		FullName:      ur.FullName,
		Bio:           ur.Bio,
		AvatarFileID:  ur.AvatarFileID,
		Role:          ur.Role,
		Active:        ur.Active,
		EmailVerified: ur.EmailVerified,
		CreatedAt:     ur.CreatedAt,
		UpdatedAt:     ur.UpdatedAt,
	}
}
