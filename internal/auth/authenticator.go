package auth

import (
	"context"
	"errors"
	"fmt"

	"pokedex/internal/common"
	"pokedex/internal/models"
	"pokedex/internal/utils"
)

// UserFinder is the part of the credential store the authenticator needs.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

// Login returns the user when username and password match, and (nil, nil)
// otherwise. An unknown username and a wrong password are indistinguishable.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, nil
	}
	return user, nil
}

// VerifyPassword re-checks the password of an already loaded user.
func VerifyPassword(user *models.User, password string) bool {
	return user != nil && utils.CheckPasswordHash(password, user.Password)
}
