// Package config loads service settings from config.yaml, .env and the
// process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Plant3D/internal/equipment"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL          string        `yaml:"url"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnLifetime time.Duration `yaml:"conn_lifetime"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProgramsConfig points at optional external viewers. Empty or missing
// paths only switch the matching capability off.
type ProgramsConfig struct {
	CADPath        string `yaml:"cad_path"`
	GameEnginePath string `yaml:"game_engine_path"`
}

type PathsConfig struct {
	Input     string `yaml:"input"`
	Extracted string `yaml:"extracted"`
	Models    string `yaml:"models"`
	Reports   string `yaml:"reports"`
	Uploads   string `yaml:"uploads"`
}

type Config struct {
	Server   ServerConfig       `yaml:"server"`
	Database DatabaseConfig     `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
	Programs ProgramsConfig     `yaml:"programs"`
	Paths    PathsConfig        `yaml:"paths"`
	Variant  string             `yaml:"geometry_variant"`
	Defaults equipment.Defaults `yaml:"defaults"`

	// TokenKey signs session cookies. It is read from the environment only.
	TokenKey string `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8443",
			CertFile:        "server.crt",
			KeyFile:         "server.key",
			ShutdownTimeout: 5 * time.Second,
			RateLimit:       1,
			RateBurst:       3,
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			URL:          "user=postgres dbname=postgres password=password sslmode=disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			ConnLifetime: 5 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		Paths: PathsConfig{
			Input:     "data/input",
			Extracted: "data/extracted",
			Models:    "output/models",
			Reports:   "output/reports",
			Uploads:   "data/uploads",
		},
		Variant:  "standard",
		Defaults: equipment.DefaultFallbacks(),
	}
}

// Load reads the yaml file at path on top of the defaults. A missing file is
// not an error. Values from .env and the environment win over the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("HTTP_ADDR", &c.Server.Addr)
	str("TLS_CERT_FILE", &c.Server.CertFile)
	str("TLS_KEY_FILE", &c.Server.KeyFile)
	str("DATABASE_URL", &c.Database.URL)
	str("LOG_LEVEL", &c.Logging.Level)
	str("CAD_PATH", &c.Programs.CADPath)
	str("GAME_ENGINE_PATH", &c.Programs.GameEnginePath)
	str("MODELS_DIR", &c.Paths.Models)
	str("REPORTS_DIR", &c.Paths.Reports)
	str("GEOMETRY_VARIANT", &c.Variant)
	str("TOKEN_KEY", &c.TokenKey)

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid SHUTDOWN_TIMEOUT")
		}
		c.Server.ShutdownTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid RATE_LIMIT")
		}
		c.Server.RateLimit = f
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	if c.Variant != "standard" && c.Variant != "precise" {
		return fmt.Errorf("unknown geometry variant %q", c.Variant)
	}
	if c.Defaults.FlowRate <= 0 || c.Defaults.D50Micron <= 0 || c.Defaults.CylinderDiameterMM <= 0 {
		return errors.New("fallback flow rate, d50 and diameter must be positive")
	}
	return nil
}
