package middleware

import (
	"context"
	"errors"

	"pokedex/internal/auth"
	"pokedex/internal/common"
	"pokedex/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CurrentUserKey = "current_user"

// UserLoader is the lookup LoadUser needs.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser retrieves the user from the session and sets it on the context.
// A session pointing at a deleted user is cleared.
func LoadUser(users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := auth.SessionUserID(session)
		if !ok {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(CurrentUserKey, user)
		case errors.Is(err, common.ErrNotFound):
			if err := auth.ClearSession(session); err != nil {
				logger.Warn("Failed to clear stale session", zap.Error(err))
			}
		default:
			logger.Error("Failed to load session user", zap.Uint("user_id", userID), zap.Error(err))
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser attached, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CurrentUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// AuthRequired hands anonymous visitors to deny and stops the chain.
func AuthRequired(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireAuthenticated(CurrentUser(c)); err != nil {
			deny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
