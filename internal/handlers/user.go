package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"pokedex/internal/auth"
	"pokedex/internal/common"
	"pokedex/internal/forms"
	"pokedex/internal/middleware"
	"pokedex/internal/models"
	"pokedex/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileCommentLimit caps the comments listed on a profile page.
const ProfileCommentLimit = 20

type UserHandler struct {
	users    *store.UserStore
	comments *store.CommentStore
	logger   *zap.Logger
}

func NewUserHandler(users *store.UserStore, comments *store.CommentStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, comments: comments, logger: logger}
}

// Profile - /users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, MsgNotFound)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	comments, err := h.comments.ListByUser(c.Request.Context(), user.ID, ProfileCommentLimit)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	Render(c, http.StatusOK, "users/profile.html", gin.H{
		"Title":    user.Username,
		"User":     user,
		"Comments": comments,
		"IsOwner":  auth.RequireOwnership(user.ID, middleware.CurrentUser(c)) == nil,
	})
}

// loadOwned resolves :id and checks the current user is that user.
func (h *UserHandler) loadOwned(c *gin.Context) (*models.User, bool) {
	current := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, MsgNotFound)
		return nil, false
	}
	if err := auth.RequireOwnership(id, current); err != nil {
		Unauthorized(c)
		return nil, false
	}
	return current, true
}

func (h *UserHandler) ShowEdit(c *gin.Context) {
	user, ok := h.loadOwned(c)
	if !ok {
		return
	}
	form := forms.ProfileEditForm{Username: user.Username, Email: user.Email, ImageURL: user.ImageURL}
	h.renderEdit(c, user, form, nil)
}

// Edit updates username, email and avatar after re-checking the password.
func (h *UserHandler) Edit(c *gin.Context) {
	user, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var form forms.ProfileEditForm
	_ = c.ShouldBind(&form)
	if err := forms.ValidateProfileEdit(&form); err != nil {
		h.renderEdit(c, user, form, fieldErrors(err))
		return
	}

	if !auth.VerifyPassword(user, form.Password) {
		flash(c, FlashDanger, "Incorrect Password!")
		redirect(c, profilePath(user.ID))
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, form.Username, form.Email, form.ImageURL)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			flash(c, FlashDanger, duplicateMessage(err))
			h.renderEdit(c, user, form, nil)
			return
		}
		handleError(c, h.logger, err)
		return
	}

	flash(c, FlashSuccess, "Profile updated.")
	redirect(c, profilePath(updated.ID))
}

func (h *UserHandler) renderEdit(c *gin.Context, user *models.User, form forms.ProfileEditForm, errs map[string][]string) {
	form.Password = ""
	Render(c, http.StatusOK, "users/edit.html", gin.H{
		"Title":  "Edit profile",
		"User":   user,
		"Form":   form,
		"Errors": errs,
	})
}

// Delete removes the account and its comments, then logs out.
func (h *UserHandler) Delete(c *gin.Context) {
	user, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}
	if err := auth.ClearSession(sessions.Default(c)); err != nil {
		h.logger.Warn("Failed to clear session after delete", zap.Error(err))
	}
	h.logger.Info("User deleted", zap.Uint("user_id", user.ID))

	flash(c, FlashInfo, "User profile deleted.")
	redirect(c, "/signup")
}

func profilePath(id uint) string {
	return fmt.Sprintf("/users/%d", id)
}
