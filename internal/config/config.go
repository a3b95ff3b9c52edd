// Package config owns the .rohis dotdir: user settings in config.yaml and
// the stored credential in credentials.yaml. The credential lives in its
// own file so logout can clear it without rewriting user settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the dotdir created under the user's home directory.
	DirName = ".rohis"

	configFile     = "config.yaml"
	credentialFile = "credentials.yaml"

	// EnvDir overrides the dotdir location (used by tests).
	EnvDir = "ROHIS_DIR"
	// EnvAPIURL overrides the configured backend base URL.
	EnvAPIURL = "ROHIS_API_URL"

	defaultBaseURL = "http://localhost:5000"
)

const defaultConfigYAML = `# rohis client configuration
version: 1

server:
  # Base URL of the ROHIS backend API.
  base_url: http://localhost:5000
`

// ServerConfig names the backend this client talks to.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// FileConfig models config.yaml.
type FileConfig struct {
	Version int          `yaml:"version"`
	Server  ServerConfig `yaml:"server"`
}

// Config holds the runtime configuration for the client.
type Config struct {
	// Dir is the resolved dotdir (usually ~/.rohis).
	Dir  string
	File FileConfig
}

// Init creates the dotdir structure and seeds a default config.yaml when
// none exists. Called once at startup.
func Init(dir string) error {
	dirs := []string{
		dir,
		filepath.Join(dir, "logs"),
		filepath.Join(dir, "exports"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("config: ensure dir: %w", err)
		}
	}
	return ensureConfigFile(filepath.Join(dir, configFile))
}

// ResolveDir returns the dotdir location, honoring the ROHIS_DIR override.
func ResolveDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvDir)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// New loads the configuration from dir, applying env overrides.
func New(dir string) (*Config, error) {
	cfg := &Config{
		Dir:  dir,
		File: defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	if override := strings.TrimSpace(os.Getenv(EnvAPIURL)); override != "" {
		cfg.File.Server.BaseURL = strings.TrimRight(override, "/")
	}
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// BaseURL returns the backend base URL.
func (c *Config) BaseURL() string {
	return c.File.Server.BaseURL
}

// LogsDir returns the directory for activity logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Dir, "logs")
}

// ExportsDir returns the directory downloaded documents are written to.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.Dir, "exports")
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, configFile)
}

func (c *Config) credentialPath() string {
	return filepath.Join(c.Dir, credentialFile)
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	c.File = parsed
	return nil
}

// Save writes config.yaml back to disk.
func (c *Config) Save() error {
	c.File.applyDefaults()
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Server:  ServerConfig{BaseURL: defaultBaseURL},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.Server.BaseURL) == "" {
		fc.Server.BaseURL = defaultBaseURL
	}
}

func (fc *FileConfig) normalize() {
	fc.Server.BaseURL = strings.TrimRight(strings.TrimSpace(fc.Server.BaseURL), "/")
}

func (fc FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(fc.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.base_url must be an absolute URL")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
