package auth

import (
	"pokedex/internal/common"
	"pokedex/internal/models"
)

// RequireAuthenticated fails when nobody is logged in.
func RequireAuthenticated(user *models.User) error {
	if user == nil {
		return common.ErrUnauthorized
	}
	return nil
}

// RequireOwnership fails unless user is logged in and owns the resource.
// Both failures return the same error.
func RequireOwnership(ownerID uint, user *models.User) error {
	if user == nil || user.ID != ownerID {
		return common.ErrUnauthorized
	}
	return nil
}
