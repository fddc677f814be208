// Package config provides configuration loading and validation for dnssift.
// It handles reading configuration from files, providing defaults, and
// ensuring all required settings are properly set.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lc/dnssift/internal/filesys"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfig is returned when the configuration file is not found.
	ErrNoConfig = errors.New("configuration file not found")
)

const (
	// DefaultConfigPath is the default path for the configuration file,
	// relative to the user's home directory.
	DefaultConfigPath = ".dnssift/config.yaml"
	// DefaultQueryDomain is the domain queried against each candidate server.
	DefaultQueryDomain = "google.com"
	// DefaultTimeout is the combined per-probe time budget.
	DefaultTimeout = 1 * time.Second
	// DefaultWorkers is the number of probes allowed in flight at once.
	DefaultWorkers = 10
)

// Config holds the application configuration.
type Config struct {
	Probe ProbeConfig `yaml:"probe"`
}

// ProbeConfig holds probe-related configuration.
type ProbeConfig struct {
	Domain  string        `yaml:"domain"`
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`
}

// UnmarshalYAML decodes ProbeConfig, accepting Go duration syntax ("500ms",
// "2s") for the timeout. yaml.v3 has no native time.Duration support.
func (p *ProbeConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Domain  string `yaml:"domain"`
		Timeout string `yaml:"timeout"`
		Workers int    `yaml:"workers"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.Domain = raw.Domain
	p.Workers = raw.Workers
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parsing probe timeout: %w", err)
		}
		p.Timeout = d
	}
	return nil
}

// Provider defines the interface for loading configuration.
type Provider interface {
	Load() (*Config, error)
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

// Verify FSProvider implements Provider interface.
var _ Provider = (*FSProvider)(nil)

// New creates a new configuration provider using the default configuration path.
// It uses the OS filesystem and the user's home directory to locate the
// configuration file. If the home directory cannot be determined, it falls
// back to the current directory.
func New() Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine home directory: %v\n", err)
		home = ""
	}
	return NewWithPath(filesys.OS(), filepath.Join(home, DefaultConfigPath))
}

// NewWithPath creates a new provider with a specific config path.
// It allows specifying both the filesystem implementation and the path to use.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Default returns a default configuration with preset values.
// This is used when no configuration file exists.
func Default() *Config {
	return &Config{
		Probe: ProbeConfig{
			Domain:  DefaultQueryDomain,
			Timeout: DefaultTimeout,
			Workers: DefaultWorkers,
		},
	}
}

// Load loads the configuration from the specified path.
func (p *FSProvider) Load() (*Config, error) {
	_ = p.ensureConfigDir()

	cfg, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			return Default(), nil
		}
		return nil, err
	}

	// File values fill in only what they set; everything else keeps defaults.
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Validate checks the configuration to ensure all required fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Probe.Domain) == "" {
		return errors.New("query domain cannot be empty")
	}
	if c.Probe.Timeout < 100*time.Millisecond {
		return errors.New("probe timeout must be at least 100ms")
	}
	if c.Probe.Workers < 1 {
		return errors.New("worker count must be at least 1")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Probe.Domain == "" {
		c.Probe.Domain = DefaultQueryDomain
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = DefaultTimeout
	}
	if c.Probe.Workers == 0 {
		c.Probe.Workers = DefaultWorkers
	}
}

func (p *FSProvider) ensureConfigDir() error {
	dir := filepath.Dir(p.path)
	if _, err := p.fs.Stat(dir); os.IsNotExist(err) {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return nil
}

func (p *FSProvider) loadAndParse() (*Config, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty config file means "all defaults".
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	return &cfg, nil
}
