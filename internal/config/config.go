package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"gopkg.in/yaml.v3"
)

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds settings for `roster serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// Config is the in-memory representation of ~/.roster/roster.yaml.
type Config struct {
	MatchCutoff       float64      `yaml:"match_cutoff"`
	AnomalyCutoff     float64      `yaml:"anomaly_cutoff"`
	AnomalyLimit      int          `yaml:"anomaly_limit"`
	Sentinel          string       `yaml:"sentinel"`
	DefaultDepartment string       `yaml:"default_department"`
	NameAliases       []string     `yaml:"name_aliases,omitempty"`
	OutputDir         string       `yaml:"output_dir,omitempty"`
	Log               LogConfig    `yaml:"log"`
	Server            ServerConfig `yaml:"server"`
}

// RosterDir returns the absolute path to ~/.roster/.
func RosterDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".roster"), nil
}

// ConfigPath returns the absolute path to ~/.roster/roster.yaml.
func ConfigPath() (string, error) {
	dir, err := RosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roster.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no file exists and the
// file written by roster init.
func DefaultConfig() *Config {
	return &Config{
		MatchCutoff:       0.85,
		AnomalyCutoff:     0.75,
		AnomalyLimit:      3,
		Sentinel:          "N",
		DefaultDepartment: "Engineering",
		NameAliases:       []string{"Faculty Name", "Name", "faculty name", "faculty_name"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:        ":8081",
			MaxUploadMB: 16,
		},
	}
}

// Load reads the config file at path, or ~/.roster/roster.yaml when path is
// empty. Fields missing from the file keep their defaults, and a missing
// file yields the defaults. ROSTER_* variables from the environment or
// ~/.roster/.env override the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	// Expand ~ in OutputDir at load time.
	cfg.OutputDir, err = ExpandPath(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), apperrors.ErrInvalidInput)
	}
	if c.MatchCutoff <= 0 || c.MatchCutoff > 1 {
		return invalid("match_cutoff must be in (0, 1], got %v", c.MatchCutoff)
	}
	if c.AnomalyCutoff <= 0 || c.AnomalyCutoff > c.MatchCutoff {
		return invalid("anomaly_cutoff must be in (0, match_cutoff], got %v", c.AnomalyCutoff)
	}
	if c.AnomalyLimit < 0 {
		return invalid("anomaly_limit must not be negative, got %d", c.AnomalyLimit)
	}
	if strings.TrimSpace(c.Sentinel) == "" {
		return invalid("sentinel must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Server.MaxUploadMB <= 0 {
		return invalid("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// EnvKeys lists the ROSTER_* overrides understood by Load.
var EnvKeys = []string{
	"ROSTER_MATCH_CUTOFF",
	"ROSTER_ANOMALY_CUTOFF",
	"ROSTER_ANOMALY_LIMIT",
	"ROSTER_SENTINEL",
	"ROSTER_DEFAULT_DEPARTMENT",
	"ROSTER_OUTPUT_DIR",
	"ROSTER_LOG_LEVEL",
	"ROSTER_LOG_FORMAT",
	"ROSTER_SERVER_ADDR",
	"ROSTER_MAX_UPLOAD_MB",
}

func applyEnv(cfg *Config) error {
	dotenv, err := LoadDotEnv()
	if err != nil {
		return err
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	}
	float := func(key string, dst *float64) error {
		if v := lookup(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s=%q: %w", key, v, apperrors.ErrInvalidInput)
			}
			*dst = f
		}
		return nil
	}
	integer := func(key string, dst *int) error {
		if v := lookup(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s=%q: %w", key, v, apperrors.ErrInvalidInput)
			}
			*dst = n
		}
		return nil
	}
	str := func(key string, dst *string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}

	if err := float("ROSTER_MATCH_CUTOFF", &cfg.MatchCutoff); err != nil {
		return err
	}
	if err := float("ROSTER_ANOMALY_CUTOFF", &cfg.AnomalyCutoff); err != nil {
		return err
	}
	if err := integer("ROSTER_ANOMALY_LIMIT", &cfg.AnomalyLimit); err != nil {
		return err
	}
	if err := integer("ROSTER_MAX_UPLOAD_MB", &cfg.Server.MaxUploadMB); err != nil {
		return err
	}
	str("ROSTER_SENTINEL", &cfg.Sentinel)
	str("ROSTER_DEFAULT_DEPARTMENT", &cfg.DefaultDepartment)
	str("ROSTER_OUTPUT_DIR", &cfg.OutputDir)
	str("ROSTER_LOG_LEVEL", &cfg.Log.Level)
	str("ROSTER_LOG_FORMAT", &cfg.Log.Format)
	str("ROSTER_SERVER_ADDR", &cfg.Server.Addr)
	return nil
}
