// Package config loads portal configuration from defaults, an optional YAML
// file and PORTAL_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lirancohen/portal/internal/storage"
)

// Defaults applied to fields left empty by every source.
const (
	DefaultAddr          = ":8080"
	DefaultStorage       = storage.BackendCookie
	DefaultDB            = "portal.db"
	DefaultLogLevel      = "info"
	DefaultRuntimeGlobal = "MyGameInstance"
	DefaultEventKeep     = 1000
)

// Config holds every deploy-time setting of the portal.
type Config struct {
	Addr     string `yaml:"addr" env:"PORTAL_ADDR"`
	CertFile string `yaml:"cert_file,omitempty" env:"PORTAL_CERT_FILE"`
	KeyFile  string `yaml:"key_file,omitempty" env:"PORTAL_KEY_FILE"`
	LogLevel string `yaml:"log_level" env:"PORTAL_LOG_LEVEL"`

	// Reference credentials. PasswordHash (bcrypt) wins over Password.
	Username     string `yaml:"username" env:"PORTAL_USERNAME"`
	Password     string `yaml:"password,omitempty" env:"PORTAL_PASSWORD"`
	PasswordHash string `yaml:"password_hash,omitempty" env:"PORTAL_PASSWORD_HASH"`

	Storage       string `yaml:"storage" env:"PORTAL_STORAGE"`
	DB            string `yaml:"db" env:"PORTAL_DB"`
	SigningSeed   string `yaml:"signing_seed,omitempty" env:"PORTAL_SIGNING_SEED"`
	SecureCookies bool   `yaml:"secure_cookies" env:"PORTAL_SECURE_COOKIES"`

	Runtime RuntimeConfig `yaml:"runtime"`
}

// RuntimeConfig describes the embedded Unity build served on the dashboard.
type RuntimeConfig struct {
	Global    string   `yaml:"global" env:"PORTAL_RUNTIME_GLOBAL"`
	LoaderURL string   `yaml:"loader_url,omitempty" env:"PORTAL_RUNTIME_LOADER_URL"`
	BuildURL  string   `yaml:"build_url,omitempty" env:"PORTAL_RUNTIME_BUILD_URL"`
	Events    []string `yaml:"events,omitempty" env:"PORTAL_RUNTIME_EVENTS" envSeparator:","`
	EventKeep int      `yaml:"event_keep,omitempty" env:"PORTAL_RUNTIME_EVENT_KEEP"`
}

// ServiceStatus reports whether one optional feature is configured.
type ServiceStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Status returns the configuration status of the optional features.
func (c *Config) Status() []ServiceStatus {
	return []ServiceStatus{
		{Name: "tls", Configured: c.CertFile != "" && c.KeyFile != ""},
		{Name: "bcrypt", Configured: c.PasswordHash != ""},
		{Name: "signing_seed", Configured: c.SigningSeed != ""},
		{Name: "runtime_build", Configured: c.Runtime.LoaderURL != ""},
		{Name: "event_log", Configured: len(c.Runtime.Events) > 0},
	}
}

// envVarPattern matches ${VAR_NAME} patterns for environment variable expansion
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR_NAME} patterns in the input string with environment variable values
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply. ${VAR_NAME} references inside the file are
// expanded before parsing.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Storage == "" {
		c.Storage = DefaultStorage
	}
	if c.DB == "" {
		c.DB = DefaultDB
	}
	if c.Runtime.Global == "" {
		c.Runtime.Global = DefaultRuntimeGlobal
	}
	if c.Runtime.EventKeep <= 0 {
		c.Runtime.EventKeep = DefaultEventKeep
	}

	events := c.Runtime.Events[:0]
	for _, name := range c.Runtime.Events {
		if name = strings.TrimSpace(name); name != "" {
			events = append(events, name)
		}
	}
	c.Runtime.Events = events
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Password == "" && c.PasswordHash == "" {
		errs = append(errs, errors.New("password or password_hash is required"))
	}
	if err := storage.ValidateBackend(c.Storage); err != nil {
		errs = append(errs, err)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		errs = append(errs, errors.New("cert_file and key_file must be set together"))
	}
	return errors.Join(errs...)
}
