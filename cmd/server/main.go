package main

import (
	"fmt"
	"os"

	"pokedex/internal/config"
	"pokedex/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
)

// rootCmd represents the base command; it serves when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "pokedex",
	Short: "Pokédex community web server",
	Long: `pokedex serves a community site where members browse Pokémon data
from PokeAPI and leave short comments on their favourites.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		var err error
		logger, err = logging.New(cfg.IsProduction(), verbose)
		if err != nil {
			return err
		}
		if !cfg.EnvFileLoaded {
			logger.Debug("No .env file found, using environment variables")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
