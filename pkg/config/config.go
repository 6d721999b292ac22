// Package config loads process configuration.
//
// Values are layered, lowest precedence first:
//  1. defaults (Default())
//  2. a YAML or JSON file named by SCHEDULER_CONFIG
//  3. the legacy unprefixed variables (PORT, DATABASE_URL, JWT_SECRET, ...)
//  4. SCHEDULER_ prefixed variables; "__" separates nested keys, so
//     SCHEDULER_SOLVER__MAX_STEPS sets solver.max_steps
//
// A .env file, when present, is read into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/arnavshah/tabling-scheduler/pkg/scheduler"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration variable
const EnvPrefix = "SCHEDULER_"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// legacyKeys maps the variable names older deployments already set
var legacyKeys = map[string]string{
	"PORT":              "port",
	"GIN_MODE":          "gin_mode",
	"DATABASE_URL":      "database_url",
	"DATA_PATH":         "data_path",
	"JWT_SECRET":        "jwt_secret",
	"API_MASTER_SECRET": "api_master_secret",
	"ADMIN_USERNAME":    "admin_username",
	"ADMIN_PASSWORD":    "admin_password",
}

// Config contains process configuration
type Config struct {
	// Port is the HTTP listen port.
	Port     string `koanf:"port"`
	GinMode  string `koanf:"gin_mode"`
	LogLevel string `koanf:"log_level"`

	// DatabaseURL selects postgres; otherwise sqlite at DataPath is used.
	DatabaseURL string `koanf:"database_url"`
	DataPath    string `koanf:"data_path"`

	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	APIMasterSecret string        `koanf:"api_master_secret"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	AdminUsername   string        `koanf:"admin_username"`
	AdminPassword   string        `koanf:"admin_password"`
	RateLimit       int           `koanf:"rate_limit"`

	// Days are the active days used when a request names none.
	Days []string `koanf:"days"`
	// MaxUploadMB caps roster uploads.
	MaxUploadMB int               `koanf:"max_upload_mb"`
	Solver      scheduler.Options `koanf:"solver"`
}

// Default returns the built-in configuration
func Default() *Config {
	days := make([]string, len(models.DefaultDays))
	for i, d := range models.DefaultDays {
		days[i] = string(d)
	}
	return &Config{
		Port:          "8000",
		GinMode:       "release",
		LogLevel:      "info",
		DataPath:      "scheduler.db",
		TokenTTL:      24 * time.Hour,
		BcryptCost:    14,
		AdminUsername: "admin",
		AdminPassword: "admin123",
		RateLimit:     10000,
		Days:          days,
		MaxUploadMB:   8,
		Solver:        scheduler.DefaultOptions(),
	}
}

// LoadDotEnv reads the first .env found in the working directory or its parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load builds a Config from defaults, the optional file and the environment
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyKeys[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, err
	}

	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		if s == "config" {
			return ""
		}
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port must not be empty", ErrInvalidConfig)
	}
	if c.Solver.MaxSteps <= 0 || c.Solver.MaxCandidates <= 0 {
		return fmt.Errorf("%w: solver limits must be positive", ErrInvalidConfig)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("%w: bcrypt_cost %d out of range 4-31", ErrInvalidConfig, c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	}
	if _, err := c.ActiveDays(); err != nil {
		return err
	}
	return nil
}

// ActiveDays parses Days
func (c *Config) ActiveDays() ([]models.Day, error) {
	if len(c.Days) == 0 {
		return nil, fmt.Errorf("%w: at least one active day is required", ErrInvalidConfig)
	}
	out := make([]models.Day, 0, len(c.Days))
	for _, s := range c.Days {
		d, err := models.ParseDay(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// UsesPostgres reports whether a DATABASE_URL was configured
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
