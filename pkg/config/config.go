// Package config loads and validates the buddy profile configuration.
//
// A profile directory contains a buddy.yaml describing the assistant (name,
// model, instructions file, file bundles) plus optional api/run/events
// sections. Unset fields fall back to documented defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/buddy/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProfileFile is the configuration file name inside a profile directory.
const ProfileFile = "buddy.yaml"

// Default configuration values exported for documentation and validation
const (
	DefaultModel          = "gpt-4o"
	DefaultAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultPollIntervalMS = 500
	DefaultListLimit      = 100
	DefaultNATSSubject    = "buddy.event"
)

// Config represents a buddy profile configuration.
type Config struct {
	Name             string       `yaml:"name"`
	Model            string       `yaml:"model"`
	InstructionsFile string       `yaml:"instructions_file"`
	FileBundles      []FileBundle `yaml:"file_bundles"`

	API         APIConfig         `yaml:"api"`
	Run         RunConfig         `yaml:"run"`
	Events      EventsConfig      `yaml:"events"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// FileBundle describes one glob-selected source file set aggregated into a
// single uploadable artifact.
type FileBundle struct {
	BundleName string   `yaml:"bundle_name"`
	SrcDir     string   `yaml:"src_dir"`
	SrcGlobs   []string `yaml:"src_globs"`
	DstExt     string   `yaml:"dst_ext"`
}

// APIConfig defines remote service settings.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// RunConfig defines run-polling behavior.
type RunConfig struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// MaxWaitSeconds bounds one run's polling loop. Zero means no bound,
	// matching the historical behavior.
	MaxWaitSeconds int `yaml:"max_wait_seconds"`
}

// EventsConfig defines optional external event publication.
type EventsConfig struct {
	NATS NATSConfig `yaml:"nats"`
}

// NATSConfig mirrors domain events onto a NATS subject tree.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DiagnosticsConfig toggles debug aids.
type DiagnosticsConfig struct {
	NetworkLogsEnabled bool `yaml:"network_logs"`
}

// LoadFromDir loads and validates the profile config from dir/buddy.yaml.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, ProfileFile))
}

// Load loads and validates a profile config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "reading profile config").
			WithContext("path", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigParse, "parsing profile config").
			WithContext("path", path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.APIKeyEnv == "" {
		c.API.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Run.PollIntervalMS == 0 {
		c.Run.PollIntervalMS = DefaultPollIntervalMS
	}
	if c.Events.NATS.SubjectPrefix == "" {
		c.Events.NATS.SubjectPrefix = DefaultNATSSubject
	}
}

// Validate checks the config for structural problems.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "profile name is required")
	}
	for i, b := range c.FileBundles {
		if strings.TrimSpace(b.BundleName) == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "bundle name is required").
				WithContext("index", i)
		}
		if strings.TrimSpace(b.SrcDir) == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "bundle src_dir is required").
				WithContext("bundle", b.BundleName)
		}
		if len(b.SrcGlobs) == 0 {
			return errors.New(errors.ErrCodeConfigInvalid, "bundle src_globs is required").
				WithContext("bundle", b.BundleName)
		}
		if strings.TrimSpace(b.DstExt) == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "bundle dst_ext is required").
				WithContext("bundle", b.BundleName)
		}
	}
	if c.Run.PollIntervalMS < 0 || c.Run.MaxWaitSeconds < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "run intervals must be non-negative")
	}
	return nil
}

// APIKey resolves the remote API key from the configured environment
// variable.
func (c *Config) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(c.API.APIKeyEnv))
	if key == "" {
		return "", errors.New(errors.ErrCodeAPIKeyMissing, "remote API key not set").
			WithContext("env", c.API.APIKeyEnv)
	}
	return key, nil
}

// PollInterval returns the run-poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Run.PollIntervalMS) * time.Millisecond
}

// MaxWait returns the optional run-poll ceiling; zero means unbounded.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.Run.MaxWaitSeconds) * time.Second
}
