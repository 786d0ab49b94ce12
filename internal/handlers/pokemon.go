package handlers

import (
	"context"
	"net/http"

	"pokedex/internal/middleware"
	"pokedex/internal/services"
	"pokedex/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PokemonHandler struct {
	pokemon     *store.PokemonStore
	comments    *store.CommentStore
	api         *services.PokeAPIClient
	generations *services.GenerationService
	logger      *zap.Logger
}

func NewPokemonHandler(
	pokemon *store.PokemonStore,
	comments *store.CommentStore,
	api *services.PokeAPIClient,
	generations *services.GenerationService,
	logger *zap.Logger,
) *PokemonHandler {
	return &PokemonHandler{
		pokemon:     pokemon,
		comments:    comments,
		api:         api,
		generations: generations,
		logger:      logger,
	}
}

// Home shows the landing page to visitors and sends members to the dex.
func (h *PokemonHandler) Home(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/pokedex-generations")
		return
	}
	Render(c, http.StatusOK, "home.html", gin.H{"Title": "Pokédex Community"})
}

func (h *PokemonHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// Generations lists the local references grouped by generation.
func (h *PokemonHandler) Generations(c *gin.Context) {
	groups, err := h.generations.Grouped(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "pokemon/generations.html", gin.H{
		"Title":       "Pokédex Generations",
		"Generations": groups,
	})
}

// Pokedex - /pokedex-generations/:name, fetched live.
func (h *PokemonHandler) Pokedex(c *gin.Context) {
	dex, err := h.api.FetchPokedex(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "pokemon/pokedex.html", gin.H{
		"Title":   dex.DisplayName,
		"Pokedex": dex,
	})
}

// Detail - /pokemon/:name/detail. Only names present in the reference
// table are served.
func (h *PokemonHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()

	ref, err := h.pokemon.FindByName(ctx, c.Param("name"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	detail, err := h.api.FetchDetail(ctx, ref.Name)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	comments, err := h.comments.ListByPokemon(ctx, ref.ID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	Render(c, http.StatusOK, "pokemon/detail.html", gin.H{
		"Title":    ref.Name,
		"Pokemon":  ref,
		"Detail":   detail,
		"Comments": comments,
	})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Healthz reports whether the database answers.
func Healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func detailPath(name string) string {
	return "/pokemon/" + name + "/detail"
}
