package handlers

import (
	"errors"
	"net/http"
	"strings"

	"pokedex/internal/common"
	"pokedex/internal/middleware"
	"pokedex/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"

	MsgUnauthorized = "Access unauthorized."
	MsgUpstream     = "Pokémon data is unavailable right now."
	MsgNotFound     = "Page not found."
	MsgInternal     = "Something went wrong."
)

var flashCategories = []string{FlashSuccess, FlashInfo, FlashDanger}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Render helper to inject common variables like current user and flashes.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["Flashes"] = takeFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the generic error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Error": message, "Code": code})
}

func flash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	_ = session.Save()
}

// Flashes are stored per category so plain strings suffice in the session.
func takeFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var out []Flash
	for _, category := range flashCategories {
		for _, v := range session.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = session.Save()
	}
	return out
}

// redirect answers POSTs with 303 so the browser follows up with a GET.
func redirect(c *gin.Context, location string) {
	code := http.StatusFound
	if c.Request.Method != http.MethodGet {
		code = http.StatusSeeOther
	}
	c.Redirect(code, location)
}

// Unauthorized flashes the access error and sends the visitor home.
func Unauthorized(c *gin.Context) {
	flash(c, FlashDanger, MsgUnauthorized)
	redirect(c, "/")
}

// handleError maps an error from the stores or gateway onto a response.
// Validation and duplicate errors are handled by the form handlers first.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		Unauthorized(c)
	case errors.Is(err, common.ErrNotFound):
		RenderError(c, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, common.ErrUpstream):
		logger.Warn("Upstream request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		RenderError(c, http.StatusBadGateway, MsgUpstream)
	default:
		_ = c.Error(err)
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, MsgInternal)
	}
}

// fieldErrors returns messages keyed by form field, or nil when err is not
// a validation error.
func fieldErrors(err error) map[string][]string {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return verr.ByField()
	}
	return nil
}

// duplicateMessage builds the "<Field> already taken" text for a uniqueness
// violation.
func duplicateMessage(err error) string {
	var dup *common.DuplicateKeyError
	field := "Value"
	if errors.As(err, &dup) && dup.Field != "" {
		field = strings.ToUpper(dup.Field[:1]) + dup.Field[1:]
	}
	return field + " already taken"
}

func paramID(c *gin.Context) (uint, bool) {
	return utils.ParseID(c.Param("id"))
}
