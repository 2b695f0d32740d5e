package users

import (
	"context"
	"strings"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// SetRole assigns a role to a user. The route is admin-gated by
// middleware; the rank check here is defense in depth for any future
// caller that skips the router.
func (s *Service) SetRole(ctx context.Context, actorID, actorRole, targetID, newRole string) error {
	const action = "users.set_role"

	actorID = strings.TrimSpace(actorID)
	actorRole = strings.TrimSpace(actorRole)
	targetID = strings.TrimSpace(targetID)
	newRole = strings.TrimSpace(newRole)

	audit := func(result string, err error, extra map[string]string) {
		fields := map[string]string{
			"actor_id":   actorID,
			"actor_role": actorRole,
			"target_id":  targetID,
			"result":     result,
		}
		if err != nil {
			fields["error_code"] = domain.Code(err)
		}
		for k, v := range extra {
			fields[k] = v
		}
		s.audit(action, fields)
	}

	if targetID == "" {
		err := domain.ErrMissingField("user_id")
		audit("error", err, nil)
		return err
	}
	if newRole == "" {
		err := domain.ErrMissingField("role")
		audit("error", err, nil)
		return err
	}
	if !domain.IsValidRole(newRole) {
		err := domain.ErrInvalidRole(newRole)
		audit("error", err, nil)
		return err
	}

	if domain.RoleRank(actorRole) < domain.RoleRank(domain.RoleAdmin) {
		err := domain.ErrInsufficientRole(domain.RoleAdmin)
		audit("error", err, map[string]string{"required_role": domain.RoleAdmin})
		return err
	}

	if actorID != "" && actorID == targetID {
		err := domain.ErrCannotAffectSelf()
		audit("error", err, nil)
		return err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		audit("error", err, nil)
		return err
	}

	// protect last admin
	if target.Role == domain.RoleAdmin && newRole != domain.RoleAdmin {
		cnt, err := s.users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			audit("error", err, nil)
			return err
		}
		if cnt <= 1 {
			err := domain.ErrLastAdminProtected()
			audit("error", err, nil)
			return err
		}
	}

	if err := s.users.SetRole(ctx, targetID, newRole); err != nil {
		audit("error", err, nil)
		return err
	}

	s.invalidateList(ctx)

	audit("success", nil, map[string]string{"new_role": newRole})
	return nil
}
