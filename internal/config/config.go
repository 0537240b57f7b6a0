// internal/config/config.go
//
// Process configuration.
//
// Values come from the environment (a .env file is loaded first if present)
// with development defaults. An optional YAML rules file can override the
// group-size scoring table:
//
//	scoring:
//	  points:
//	    2: 1
//	    3: 3
//
// Environment variables:
//
//	PORT, LOG_LEVEL, CLIENT_ORIGIN, MATCH_TOKEN_SECRET, MATCH_TOKEN_TTL_HOURS,
//	COOKIE_SECURE, DB_PATH, ICON_DIR, GAME_SEED, GAME_RULES_FILE, DAILY_SALT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/toy-store-tussle/internal/game"
)

const devSecret = "dev_secret_change_me"

// Config is the resolved process configuration.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string
	TokenSecret  string
	TokenTTL     time.Duration
	SecureCookie bool   // set when the client is served over HTTPS
	DBPath       string // empty disables the results archive
	IconDir      string // empty skips the sprite check
	Seed         uint64 // 0 seeds each match from the clock
	DailySalt    string
	Points       game.Table
}

// Rules is the shape of GAME_RULES_FILE.
type Rules struct {
	Scoring struct {
		Points map[int]int `yaml:"points"`
	} `yaml:"scoring"`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		TokenSecret:  getEnv("MATCH_TOKEN_SECRET", devSecret),
		TokenTTL:     time.Duration(envInt("MATCH_TOKEN_TTL_HOURS", 12)) * time.Hour,
		SecureCookie: getEnv("COOKIE_SECURE", "false") == "true",
		DBPath:       os.Getenv("DB_PATH"),
		IconDir:      os.Getenv("ICON_DIR"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		Points:       game.DefaultTable,
	}

	if v := os.Getenv("GAME_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GAME_SEED: %w", err)
		}
		c.Seed = seed
	}

	if path := os.Getenv("GAME_RULES_FILE"); path != "" {
		t, err := LoadRules(path)
		if err != nil {
			return nil, err
		}
		c.Points = t
	}
	return c, nil
}

// UsingDevSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsingDevSecret() bool { return c.TokenSecret == devSecret }

// LoadRules parses a rules file and returns its validated scoring table.
func LoadRules(path string) (game.Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	t := game.Table(r.Scoring.Points)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return t, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
