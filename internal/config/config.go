package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/pool"
)

type Config struct {
	Addr            string
	DatabasePath    string
	MigrationsURL   string
	SessionLifetime time.Duration
	SecureCookies   bool

	// Single deadline policy for every matchday: predictions close this long before the
	// first kickoff.
	DeadlineOffset time.Duration

	AdminEmails []string

	LogLevel  string
	LogFormat string

	LeaderboardCacheSize int
	LeaderboardCacheTTL  time.Duration

	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

// Load reads the configuration from the environment. Missing values fall back to defaults
// that work for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:               getEnv("ADDR", ":8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "matchday_pool.db?_journal_mode=WAL"),
		MigrationsURL:      getEnv("MIGRATIONS_URL", "file://migrations"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		DiscordKey:         os.Getenv("DISCORD_KEY"),
		DiscordSecret:      os.Getenv("DISCORD_SECRET"),
		DiscordCallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
		GoogleKey:          os.Getenv("GOOGLE_KEY"),
		GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
	}

	var err error
	if cfg.SessionLifetime, err = getDuration("SESSION_LIFETIME", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DeadlineOffset, err = getDuration("DEADLINE_OFFSET", pool.DefaultDeadlineOffset); err != nil {
		return nil, err
	}
	if cfg.DeadlineOffset < 0 {
		return nil, fmt.Errorf("DEADLINE_OFFSET must not be negative, got %s", cfg.DeadlineOffset)
	}
	if cfg.LeaderboardCacheTTL, err = getDuration("LEADERBOARD_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.LeaderboardCacheSize, err = getInt("LEADERBOARD_CACHE_SIZE", 128); err != nil {
		return nil, err
	}
	if cfg.LeaderboardCacheSize <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_CACHE_SIZE must be positive, got %d", cfg.LeaderboardCacheSize)
	}
	if cfg.SecureCookies, err = getBool("SECURE_COOKIES", false); err != nil {
		return nil, err
	}

	for _, email := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			cfg.AdminEmails = append(cfg.AdminEmails, email)
		}
	}

	return cfg, nil
}

func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return b, nil
}
