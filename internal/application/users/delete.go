package users

import (
	"context"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Delete removes an account. Hard rules: admins cannot delete
// themselves, and the last admin cannot be removed.
func (s *Service) Delete(ctx context.Context, actorID, targetID string) error {
	const action = "users.delete"

	if targetID == "" {
		return domain.ErrMissingField("user_id")
	}
	if actorID != "" && actorID == targetID {
		return domain.ErrCannotAffectSelf()
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.Role == domain.RoleAdmin {
		cnt, err := s.users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if cnt <= 1 {
			return domain.ErrLastAdminProtected()
		}
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	_ = s.sessions.RevokeAll(ctx, targetID)
	s.invalidateList(ctx)

	s.audit(action, map[string]string{
		"actor_id":  actorID,
		"target_id": targetID,
	})
	return nil
}
