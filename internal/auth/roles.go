package auth

import (
	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// Authorize passes when no role is required or the user holds any of the roles.
func Authorize(user *domain.User, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	if user.HasAnyRole(roles...) {
		return nil
	}
	return apperrors.NewForbidden()
}

// RoleNames converts roles to the names Authorize compares against.
func RoleNames(roles ...domain.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}
