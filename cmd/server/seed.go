package main

import (
	"pokedex/internal/db"
	"pokedex/internal/services"
	"pokedex/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the Pokémon reference table from the national Pokédex",
	Long: `seed fetches the national Pokédex from PokeAPI and inserts one
reference row per species. Rows that already exist are skipped, so it is
safe to run more than once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cfg, logger)
		if err != nil {
			return err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}

		api := services.NewPokeAPIClient(cfg.PokeAPIBaseURL, nil)
		seeder := services.NewSeeder(api, store.NewPokemonStore(gdb), logger)

		inserted, err := seeder.Populate(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("Seeding finished", zap.Int64("inserted", inserted))
		return nil
	},
}
