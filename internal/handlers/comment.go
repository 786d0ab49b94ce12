package handlers

import (
	"errors"
	"net/http"

	"pokedex/internal/auth"
	"pokedex/internal/common"
	"pokedex/internal/forms"
	"pokedex/internal/middleware"
	"pokedex/internal/models"
	"pokedex/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *store.CommentStore
	pokemon  *store.PokemonStore
	logger   *zap.Logger
}

func NewCommentHandler(comments *store.CommentStore, pokemon *store.PokemonStore, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, pokemon: pokemon, logger: logger}
}

// ShowAdd - /pokemon/:name/add-comment
func (h *CommentHandler) ShowAdd(c *gin.Context) {
	ref, err := h.pokemon.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.renderAdd(c, ref, forms.CommentForm{}, nil)
}

func (h *CommentHandler) Add(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ref, err := h.pokemon.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	var form forms.CommentForm
	_ = c.ShouldBind(&form)

	if _, err := h.comments.Add(c.Request.Context(), form.Comment, user.ID, ref.ID); err != nil {
		if errors.Is(err, common.ErrValidation) {
			h.renderAdd(c, ref, form, fieldErrors(err))
			return
		}
		handleError(c, h.logger, err)
		return
	}

	flash(c, FlashSuccess, "Comment added successfully!")
	redirect(c, detailPath(ref.Name))
}

func (h *CommentHandler) renderAdd(c *gin.Context, ref *models.PokemonReference, form forms.CommentForm, errs map[string][]string) {
	Render(c, http.StatusOK, "comments/add.html", gin.H{
		"Title":   "Add New Comment",
		"Pokemon": ref,
		"Form":    form,
		"Errors":  errs,
	})
}

// loadOwned fetches :id and checks the current user wrote it.
func (h *CommentHandler) loadOwned(c *gin.Context) (*models.Comment, *models.User, bool) {
	id, ok := paramID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, MsgNotFound)
		return nil, nil, false
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return nil, nil, false
	}
	user := middleware.CurrentUser(c)
	if err := auth.RequireOwnership(comment.UserID, user); err != nil {
		Unauthorized(c)
		return nil, nil, false
	}
	return comment, user, true
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	comment, _, ok := h.loadOwned(c)
	if !ok {
		return
	}
	h.renderEdit(c, comment, forms.CommentForm{Comment: comment.Text}, nil)
}

func (h *CommentHandler) Edit(c *gin.Context) {
	comment, user, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var form forms.CommentForm
	_ = c.ShouldBind(&form)

	if _, err := h.comments.Update(c.Request.Context(), comment.ID, form.Comment, user.ID); err != nil {
		if errors.Is(err, common.ErrValidation) {
			h.renderEdit(c, comment, form, fieldErrors(err))
			return
		}
		handleError(c, h.logger, err)
		return
	}

	flash(c, FlashSuccess, "Comment updated.")
	redirect(c, profilePath(user.ID))
}

func (h *CommentHandler) renderEdit(c *gin.Context, comment *models.Comment, form forms.CommentForm, errs map[string][]string) {
	Render(c, http.StatusOK, "comments/edit.html", gin.H{
		"Title":   "Edit Comment",
		"Comment": comment,
		"Form":    form,
		"Errors":  errs,
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, user, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), comment.ID, user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	flash(c, FlashInfo, "Comment deleted.")
	redirect(c, profilePath(user.ID))
}
