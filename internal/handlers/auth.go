package handlers

import (
	"errors"
	"net/http"

	"pokedex/internal/auth"
	"pokedex/internal/common"
	"pokedex/internal/forms"
	"pokedex/internal/middleware"
	"pokedex/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users  *store.UserStore
	auth   *auth.Authenticator
	logger *zap.Logger
}

func NewAuthHandler(users *store.UserStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		auth:   auth.NewAuthenticator(users),
		logger: logger,
	}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Sign up", "Form": forms.SignupForm{}})
}

// Signup creates the account and logs the new user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form forms.SignupForm
	_ = c.ShouldBind(&form)

	if err := forms.ValidateSignup(&form); err != nil {
		h.renderSignup(c, form, fieldErrors(err))
		return
	}

	user, err := h.users.Create(c.Request.Context(), form.Username, form.Email, form.Password, form.ImageURL)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			flash(c, FlashDanger, duplicateMessage(err))
			h.renderSignup(c, form, nil)
			return
		}
		handleError(c, h.logger, err)
		return
	}

	if err := auth.EstablishSession(sessions.Default(c), user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.logger.Info("User signed up", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	flash(c, FlashSuccess, "Welcome to the community, "+user.Username+"!")
	redirect(c, "/pokedex-generations")
}

func (h *AuthHandler) renderSignup(c *gin.Context, form forms.SignupForm, errs map[string][]string) {
	form.Password = ""
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Title": "Sign up", "Form": form, "Errors": errs})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in", "Form": forms.LoginForm{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	_ = c.ShouldBind(&form)

	if err := forms.ValidateLogin(&form); err != nil {
		form.Password = ""
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in", "Form": form, "Errors": fieldErrors(err)})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if user == nil {
		flash(c, FlashDanger, "Invalid credentials.")
		form.Password = ""
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in", "Form": form})
		return
	}

	if err := auth.EstablishSession(sessions.Default(c), user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	flash(c, FlashSuccess, "Welcome back, "+user.Username+"!")
	redirect(c, "/pokedex-generations")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		if err := auth.ClearSession(sessions.Default(c)); err != nil {
			handleError(c, h.logger, err)
			return
		}
	}
	flash(c, FlashSuccess, "You Have Logged Out")
	redirect(c, "/login")
}
