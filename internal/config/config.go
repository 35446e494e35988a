// Package config loads cmdgate settings from a YAML file, the environment
// and command-line flags, and serves the strict-mode setting live.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/cmdgate/internal/policy"
)

// StrictModeKey is the configuration key holding the strict-mode setting.
const StrictModeKey = "strict_mode"

// Config is the decoded configuration.
type Config struct {
	StrictMode      string       `mapstructure:"strict_mode"`
	ProjectCommands []string     `mapstructure:"project_commands"`
	Audit           AuditConfig  `mapstructure:"audit"`
	Log             LogConfig    `mapstructure:"log"`
	Server          ServerConfig `mapstructure:"server"`
	Exec            ExecConfig   `mapstructure:"exec"`
}

// AuditConfig controls the decision audit log.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig controls process logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig controls the gRPC gate server.
type ServerConfig struct {
	Port   int  `mapstructure:"port"`
	Reload bool `mapstructure:"reload"`
}

// ExecConfig controls command execution.
type ExecConfig struct {
	Shell        string        `mapstructure:"shell"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RedactOutput bool          `mapstructure:"redact_output"`
}

// Dir returns the cmdgate configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("failed to resolve home directory, using current directory", "error", err)
		home = "."
	}
	return filepath.Join(home, ".cmdgate")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.path", filepath.Join(Dir(), "audit.jsonl"))
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.reload", true)
	v.SetDefault("exec.shell", "sh")
	v.SetDefault("exec.timeout", "5m")
	v.SetDefault("exec.redact_output", true)
}

// DefaultYAML renders the default configuration as a commented YAML file.
func DefaultYAML() (string, error) {
	v := viper.New()
	setDefaults(v)
	v.SetDefault(StrictModeKey, false)
	v.SetDefault("project_commands", []string{})

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return "", fmt.Errorf("marshal defaults: %w", err)
	}
	header := "# cmdgate configuration.\n" +
		"# strict_mode is overridden by SECURITY_STRICT_MODE / CMDGATE_STRICT_MODE\n" +
		"# and by the --strict flag. Other keys read CMDGATE_<SECTION>_<KEY>.\n\n"
	return header + string(data), nil
}

// Validate checks value ranges and normalises the log level.
func (c *Config) Validate() error {
	if err := policy.CheckProjectCommands(c.ProjectCommands); err != nil {
		return err
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "":
		c.Log.Level = "info"
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Exec.Timeout < 0 {
		return fmt.Errorf("exec.timeout must not be negative, got %s", c.Exec.Timeout)
	}
	if strings.TrimSpace(c.Exec.Shell) == "" {
		c.Exec.Shell = "sh"
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		return fmt.Errorf("audit.path must be set when audit.enabled is true")
	}
	return nil
}

// Store holds the live configuration. The decoded Config is replaced on
// Reload; the strict-mode setting is looked up on every call so that
// environment changes apply to the next decision.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	cfg  Config
	path string
}

// Load reads the configuration file at path (DefaultPath when empty).
// A missing file yields defaults.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CMDGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(StrictModeKey, "SECURITY_STRICT_MODE", "CMDGATE_STRICT_MODE"); err != nil {
		return nil, fmt.Errorf("bind strict mode env: %w", err)
	}
	setDefaults(v)

	s := &Store{v: v, path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the configuration file. On error the previous
// configuration stays in effect.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", s.path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config %s: %w", s.path, err)
	}

	var cfg Config
	if err := s.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	s.cfg = cfg
	return nil
}

// BindFlags binds command-line flags to configuration keys. A flag only
// overrides when it was set explicitly.
func (s *Store) BindFlags(bindings map[string]*pflag.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, f := range bindings {
		if f == nil {
			continue
		}
		if err := s.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	}
	return nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.ProjectCommands = append([]string(nil), s.cfg.ProjectCommands...)
	cfg.StrictMode = s.v.GetString(StrictModeKey)
	return cfg
}

// Path returns the configuration file path.
func (s *Store) Path() string { return s.path }

// Lookup returns the current strict-mode setting, consulting flags, the
// environment and the last loaded file in that order. It satisfies
// mode.Source.
func (s *Store) Lookup() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.v.IsSet(StrictModeKey) {
		return "", false
	}
	return s.v.GetString(StrictModeKey), true
}
