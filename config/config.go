// Package config loads the client settings.
//
// Values are layered: defaults, then the YAML file, then the environment
// (a .env file in the working directory is loaded first), then flags applied
// by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvAPIURL       = "ARTHAX_API_URL"
	EnvStateDir     = "ARTHAX_STATE_DIR"
	EnvCurrency     = "ARTHAX_CURRENCY"
	EnvTimeout      = "ARTHAX_TIMEOUT"
	EnvVerbose      = "ARTHAX_VERBOSE"
	EnvDiscardStale = "ARTHAX_DISCARD_STALE"
)

// Defaults.
const (
	DefaultAPIURL   = "http://localhost:5000"
	DefaultCurrency = "INR"
	DefaultTimeout  = 60 * time.Second
)

// Config holds the client settings.
type Config struct {
	APIURL       string        `yaml:"api_url"`
	StateDir     string        `yaml:"state_dir"`
	Currency     string        `yaml:"currency"`
	Timeout      time.Duration `yaml:"timeout"`
	Verbose      bool          `yaml:"verbose"`
	DiscardStale bool          `yaml:"discard_stale"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		StateDir: defaultStateDir(),
		Currency: DefaultCurrency,
		Timeout:  DefaultTimeout,
	}
}

// DefaultPath returns the location of the configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "arthax", "config.yaml")
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "arthax")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arthax"
	}
	return filepath.Join(home, ".local", "state", "arthax")
}

// Load reads the file at path, if any, then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: failed to load .env file: %v", err)
	}
	if err := cfg.readEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("no configuration file at %q, using defaults", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing configuration %q: %w", path, err)
	}
	return nil
}

func (c *Config) readEnv() error {
	if v, ok := lookup(EnvAPIURL); ok {
		c.APIURL = v
	}
	if v, ok := lookup(EnvStateDir); ok {
		c.StateDir = v
	}
	if v, ok := lookup(EnvCurrency); ok {
		c.Currency = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %q", EnvTimeout, v)
		}
		c.Timeout = d
	}
	var err error
	if c.Verbose, err = parseBool(EnvVerbose, c.Verbose); err != nil {
		return err
	}
	if c.DiscardStale, err = parseBool(EnvDiscardStale, c.DiscardStale); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings once every layer is applied.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseBool(key string, def bool) (bool, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return b, nil
}
