package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvProduction = "production"
)

type Config struct {
	Port           string
	Env            string
	DatabaseDriver string
	DatabaseURL    string
	SessionSecret  string
	SessionName    string
	PokeAPIBaseURL string
	// SiteURL is the public origin used in the sitemap and RSS feed.
	SiteURL     string
	SeedOnStart bool
	// StaticDir serves assets from disk instead of the embedded copy when set.
	StaticDir string

	// EnvFileLoaded is false when no .env file was found; values then come from the system.
	EnvFileLoaded bool
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "development"),
		DatabaseDriver: getenv("DATABASE_DRIVER", DriverPostgres),
		// Fallback for local dev if not set
		DatabaseURL:    getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=pokeapi_db port=5432 sslmode=disable"),
		SessionSecret:  getenv("SESSION_SECRET", "it's a secret"),
		SessionName:    getenv("SESSION_NAME", "pokedex_session"),
		PokeAPIBaseURL: getenv("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2"),
		SiteURL:        getenv("SITE_URL", "http://localhost:8080"),
		SeedOnStart:    getbool("SEED_ON_START", false),
		StaticDir:      getenv("STATIC_DIR", ""),
		EnvFileLoaded:  loaded,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
