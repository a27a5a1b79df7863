// Package config loads mend.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"mend/internal/checker"
	"mend/internal/diag"
	"mend/internal/rules"
)

// FileName is the configuration file looked up from the project root upwards.
const FileName = "mend.toml"

const (
	DefaultMaxIterations = 20
	DefaultMaxLocations  = 5
)

// Config is the decoded mend.toml.
type Config struct {
	Check CheckConfig `toml:"check"`
	Loop  LoopConfig  `toml:"loop"`
	Rules RulesConfig `toml:"rules"`
	Scan  ScanConfig  `toml:"scan"`
}

// CheckConfig describes the checker invocation.
type CheckConfig struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env,omitempty"`
	// EnvFile is a dotenv file, relative to mend.toml, merged under Env.
	EnvFile string   `toml:"env_file,omitempty"`
	Timeout Duration `toml:"timeout"`
	Marker  string   `toml:"marker"`
}

// LoopConfig bounds the repair loop.
type LoopConfig struct {
	MaxIterations int  `toml:"max_iterations"`
	MaxLocations  int  `toml:"max_locations"`
	Journal       bool `toml:"journal"`
}

// RulesConfig selects catalog rules.
type RulesConfig struct {
	Disable []string `toml:"disable"`
}

// ScanConfig drives `mend scan`.
type ScanConfig struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
}

// Duration is a time.Duration written as "10m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no mend.toml exists.
func Default() Config {
	return Config{
		Check: CheckConfig{
			Command: "cargo",
			Args:    []string{"check"},
			Timeout: Duration{checker.DefaultTimeout},
			Marker:  diag.DefaultMarker,
		},
		Loop: LoopConfig{
			MaxIterations: DefaultMaxIterations,
			MaxLocations:  DefaultMaxLocations,
		},
		Scan: ScanConfig{
			Extensions: []string{".rs"},
			Exclude:    []string{"target", ".git"},
		},
	}
}

// Find walks up from startDir to locate mend.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "command") && strings.TrimSpace(cfg.Check.Command) == "" {
		return Config{}, fmt.Errorf("%s: [check].command is empty", path)
	}
	if cfg.Check.EnvFile != "" {
		if err := cfg.Check.loadEnvFile(filepath.Dir(path)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadEnvFile merges the dotenv file into Env; keys set in [check.env] win.
func (c *CheckConfig) loadEnvFile(dir string) error {
	file := c.EnvFile
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	vars, err := godotenv.Read(file)
	if err != nil {
		return fmt.Errorf("[check].env_file: %w", err)
	}
	if c.Env == nil {
		c.Env = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
	return nil
}

// Resolve finds and loads the configuration for root. When no file exists
// the defaults are returned with an empty path.
func Resolve(root string) (Config, string, error) {
	path, ok, err := Find(root)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Check.Command) == "":
		return errors.New("[check].command is required")
	case c.Check.Timeout.Duration <= 0:
		return errors.New("[check].timeout must be positive")
	case strings.TrimSpace(c.Check.Marker) == "":
		return errors.New("[check].marker must not be empty")
	case c.Loop.MaxIterations < 1:
		return errors.New("[loop].max_iterations must be at least 1")
	case c.Loop.MaxLocations < 1:
		return errors.New("[loop].max_locations must be at least 1")
	}
	if _, err := rules.New(c.Rules.Disable); err != nil {
		return fmt.Errorf("[rules].disable: %w", err)
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[scan].extensions: %q must start with '.'", ext)
		}
	}
	return nil
}

// Invocation builds the checker invocation.
func (c CheckConfig) Invocation() checker.Command {
	env := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return checker.Command{
		Name:    c.Command,
		Args:    append([]string(nil), c.Args...),
		Env:     env,
		Timeout: c.Timeout.Duration,
	}
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if _, err := io.WriteString(w, "# mend configuration\n\n"); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(cfg)
}
