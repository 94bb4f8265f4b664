package config

import (
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	// RateLimit uses the ulule/limiter formatted notation, e.g. "100-M".
	RateLimit string
	// UnitMultipliers maps the "unidade" labels accepted at ingestion to the
	// factor applied once to the amount. Overridable via the
	// UNIT_MULTIPLIERS env var as a JSON object.
	UnitMultipliers map[string]float64
}

// DefaultUnitMultipliers is the built-in unit lookup table. Only the
// millions label is observed in the source spreadsheets; the identity and
// thousands entries are conservative companions.
func DefaultUnitMultipliers() map[string]float64 {
	return map[string]float64{
		"R$":           1,
		"R$ (mil)":     1_000,
		"R$ (milhões)": 1_000_000,
	}
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("UNIT_MULTIPLIERS", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.UnitMultipliers = DefaultUnitMultipliers()
	if raw := viper.GetString("UNIT_MULTIPLIERS"); raw != "" {
		overrides := map[string]float64{}
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			log.Printf("Warning: Invalid value for UNIT_MULTIPLIERS (%q). Using defaults.\n", raw)
		} else {
			cfg.UnitMultipliers = overrides
		}
	}

	return cfg, nil
}
