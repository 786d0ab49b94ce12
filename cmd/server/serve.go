package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pokedex/internal/db"
	"pokedex/internal/router"
	"pokedex/internal/services"
	"pokedex/internal/store"
	"pokedex/internal/utils"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	users := store.NewUserStore(gdb)
	comments := store.NewCommentStore(gdb)
	pokemon := store.NewPokemonStore(gdb)
	api := services.NewPokeAPIClient(cfg.PokeAPIBaseURL, nil)

	pageCache, err := utils.NewCache(64)
	if err != nil {
		return err
	}
	generations := services.NewGenerationService(pokemon, pageCache)

	if cfg.SeedOnStart {
		seeder := services.NewSeeder(api, pokemon, logger)
		if _, err := seeder.PopulateIfEmpty(cmd.Context()); err != nil {
			// The site still works without references; detail pages will 404.
			logger.Error("Seeding Pokemon references failed", zap.Error(err))
		}
	}

	// Sessions live server-side; the cookie only carries the signed session id.
	sessionStore := gormsessions.NewStore(gdb, true, []byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	engine, err := router.New(router.Deps{
		Users:       users,
		Comments:    comments,
		Pokemon:     pokemon,
		PokeAPI:     api,
		Generations: generations,
		DB:          sqlDB,
		Sessions:    sessionStore,
		SessionName: cfg.SessionName,
		StaticDir:   cfg.StaticDir,
		SiteURL:     cfg.SiteURL,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Pokedex server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
