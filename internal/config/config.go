package config

import (
	"crypto/rand"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds application configuration sourced from environment variables
// and an optional .env file in the working directory.
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	DBPath   string `mapstructure:"DB_PATH"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	AdminEmail      string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword   string `mapstructure:"ADMIN_PASSWORD"`
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	LoginRatePerMin int    `mapstructure:"LOGIN_RATE_PER_MINUTE"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `mapstructure:"TRUST_PROXY_HEADERS"`

	StorageBackend     string `mapstructure:"STORAGE_BACKEND"` // local | supabase
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	UploadBaseURL      string `mapstructure:"UPLOAD_BASE_URL"`
	SupabaseURL        string `mapstructure:"SUPABASE_URL"`
	SupabaseServiceKey string `mapstructure:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket     string `mapstructure:"SUPABASE_BUCKET"`

	AnalysisURL            string `mapstructure:"ANALYSIS_URL"`
	AnalysisAPIKey         string `mapstructure:"ANALYSIS_API_KEY"`
	AnalysisTimeoutSeconds int    `mapstructure:"ANALYSIS_TIMEOUT_SECONDS"`
}

var keys = []string{
	"APP_ENV", "PORT", "DB_PATH", "LOG_LEVEL",
	"ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET", "SESSION_TTL_HOURS", "LOGIN_RATE_PER_MINUTE",
	"TRUST_PROXY_HEADERS",
	"STORAGE_BACKEND", "UPLOAD_DIR", "UPLOAD_BASE_URL", "SUPABASE_URL", "SUPABASE_SERVICE_KEY", "SUPABASE_BUCKET",
	"ANALYSIS_URL", "ANALYSIS_API_KEY", "ANALYSIS_TIMEOUT_SECONDS",
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	return load(".")
}

func load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "./dev.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("TRUST_PROXY_HEADERS", false)
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_BASE_URL", "/files")
	v.SetDefault("SUPABASE_BUCKET", "models")
	v.SetDefault("ANALYSIS_TIMEOUT_SECONDS", 60)

	// Unmarshal only sees keys viper already knows about; env-only keys
	// without a default must be bound explicitly.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// Best-effort: production should use real env injection.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if cfg.AdminEmail == "" {
		log.Warn().Msg("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, ErrMissingSessionSecret
		}
		cfg.SessionSecret = rand.Text()
		log.Warn().Msg("SESSION_SECRET is not set, using a random secret; sessions end on restart")
	}
	if cfg.StorageBackend == "supabase" && (cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "") {
		log.Warn().Msg("STORAGE_BACKEND=supabase but SUPABASE_URL or SUPABASE_SERVICE_KEY is not set")
	}

	return cfg, nil
}

// ErrMissingSessionSecret is returned outside development when no signing
// secret is configured.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set outside development")

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development"
}
