package router

import (
	"net/http"

	"pokedex/internal/handlers"
	"pokedex/internal/middleware"
	"pokedex/internal/services"
	"pokedex/internal/store"
	"pokedex/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the routes need. StaticDir, when set, overrides the
// embedded assets.
type Deps struct {
	Users       *store.UserStore
	Comments    *store.CommentStore
	Pokemon     *store.PokemonStore
	PokeAPI     *services.PokeAPIClient
	Generations *services.GenerationService
	DB          handlers.Pinger
	Sessions    sessions.Store
	SessionName string
	StaticDir   string
	SiteURL     string
	Logger      *zap.Logger
}

// New builds the engine with middleware, templates and every route.
func New(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(sessions.Sessions(d.SessionName, d.Sessions))
	r.Use(middleware.LoadUser(d.Users, d.Logger))

	renderer, err := LoadTemplates(web.Templates())
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	} else {
		r.StaticFS("/static", http.FS(web.Static()))
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, handlers.MsgNotFound)
	})

	RegisterRoutes(r, d)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Users, d.Logger)
	userHandler := handlers.NewUserHandler(d.Users, d.Comments, d.Logger)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Pokemon, d.Logger)
	pokemonHandler := handlers.NewPokemonHandler(d.Pokemon, d.Comments, d.PokeAPI, d.Generations, d.Logger)
	seoHandler := handlers.NewSEOHandler(d.SiteURL, d.Pokemon, d.Comments, d.Logger)

	// Public routes
	r.GET("/", pokemonHandler.Home)
	r.GET("/about", pokemonHandler.About)
	r.GET("/healthz", handlers.Healthz(d.DB))
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/pokedex-generations", pokemonHandler.Generations)
	r.GET("/pokedex-generations/:name", pokemonHandler.Pokedex)
	r.GET("/pokemon/:name/detail", pokemonHandler.Detail)

	r.GET("/signup", authHandler.ShowSignup)
	r.POST("/signup", authHandler.Signup)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Routes for logged-in users; ownership is checked per handler
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(handlers.Unauthorized))
	{
		authorized.GET("/users/:id", userHandler.Profile)
		authorized.GET("/users/:id/edit", userHandler.ShowEdit)
		authorized.POST("/users/:id/edit", userHandler.Edit)
		authorized.POST("/users/:id/delete", userHandler.Delete)

		authorized.GET("/pokemon/:name/add-comment", commentHandler.ShowAdd)
		authorized.POST("/pokemon/:name/add-comment", commentHandler.Add)

		authorized.GET("/comments/:id/edit", commentHandler.ShowEdit)
		authorized.POST("/comments/:id/edit", commentHandler.Edit)
		authorized.POST("/comments/:id/delete", commentHandler.Delete)
	}
}
