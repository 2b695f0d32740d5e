package users

import (
	"context"
	"strings"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// UpdateSelf applies a partial profile update for the calling user.
// Email and username changes collide with existing rows as 409s; a
// password change revokes every session so stolen refresh tokens die
// with the old password.
func (s *Service) UpdateSelf(ctx context.Context, userID string, upd ProfileUpdate) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrTokenMissing()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	passwordChanged, err := s.applyProfile(&u, upd)
	if err != nil {
		return domain.User{}, err
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	if passwordChanged {
		_ = s.sessions.RevokeAll(ctx, userID)
	}
	s.invalidateList(ctx)

	s.audit("users.update_self", map[string]string{"user_id": userID})
	return updated, nil
}

// UpdateByAdmin applies a partial update to any account, including the
// active flag. Deactivation revokes the target's sessions immediately;
// an admin cannot deactivate their own account.
func (s *Service) UpdateByAdmin(ctx context.Context, actorID, targetID string, upd AdminUpdate) (domain.User, error) {
	if targetID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}

	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return domain.User{}, err
	}

	deactivating := upd.Active != nil && !*upd.Active && u.Active
	if deactivating && actorID == targetID {
		return domain.User{}, domain.ErrCannotAffectSelf()
	}

	passwordChanged, err := s.applyProfile(&u, upd.ProfileUpdate)
	if err != nil {
		return domain.User{}, err
	}
	if upd.Active != nil {
		u.Active = *upd.Active
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	if passwordChanged || deactivating {
		_ = s.sessions.RevokeAll(ctx, targetID)
	}
	s.invalidateList(ctx)

	s.audit("users.update_by_admin", map[string]string{
		"actor_id":  actorID,
		"target_id": targetID,
	})
	return updated, nil
}

// applyProfile mutates u in place and reports whether the password was
// replaced.
func (s *Service) applyProfile(u *domain.User, upd ProfileUpdate) (bool, error) {
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" {
			return false, domain.ErrInvalidField("email", "empty")
		}
		if email != u.Email {
			u.Email = email
			u.EmailVerified = false
		}
	}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return false, domain.ErrInvalidField("username", "empty")
		}
		u.Username = username
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.Bio != nil {
		u.Bio = strings.TrimSpace(*upd.Bio)
	}

	if upd.Password == nil {
		return false, nil
	}
	if len(*upd.Password) < 8 {
		return false, domain.ErrWeakPassword("min length 8")
	}
	hash, err := s.hasher.Hash(*upd.Password)
	if err != nil {
		return false, domain.ErrHashFailed(err)
	}
	u.PasswordHash = hash
	return true, nil
}
