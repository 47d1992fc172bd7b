// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	STTConfigPath  string
	WebDir         string
	OIDC           OIDCConfig
}

// OIDCConfig configures the optional SSO login. SSO is enabled only when the
// issuer is set.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO login is configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != ""
}

// Load reads and validates the configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Addr:          getEnv("ADDR", ":8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		STTConfigPath: getEnv("STT_CONFIG_PATH", "config/stt.json"),
		WebDir:        getEnv("WEB_DIR", "web"),
		OIDC: OIDCConfig{
			Issuer:       getEnv("OIDC_ISSUER", ""),
			ClientID:     getEnv("OIDC_CLIENT_ID", ""),
			ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
		},
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "30h"))
	if err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be > 0")
	}
	if cfg.OIDC.Enabled() && (cfg.OIDC.ClientID == "" || cfg.OIDC.ClientSecret == "" || cfg.OIDC.RedirectURL == "") {
		return Config{}, fmt.Errorf("OIDC_ISSUER set but OIDC_CLIENT_ID, OIDC_CLIENT_SECRET or OIDC_REDIRECT_URL missing")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
