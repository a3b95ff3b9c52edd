package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// credentials models credentials.yaml. The token is opaque: the client
// never introspects it, it only replays it as a bearer credential.
type credentials struct {
	Token string `yaml:"token"`
}

// Token returns the stored credential token, or "" when none exists.
// Unreadable or malformed credential files read as logged out.
func (c *Config) Token() string {
	data, err := os.ReadFile(c.credentialPath())
	if err != nil {
		return ""
	}
	var creds credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return strings.TrimSpace(creds.Token)
}

// SetToken persists the credential token. The file is user-readable only.
func (c *Config) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return c.ClearToken()
	}
	data, err := yaml.Marshal(credentials{Token: token})
	if err != nil {
		return fmt.Errorf("config: encode credentials: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := os.WriteFile(c.credentialPath(), data, 0o600); err != nil {
		return fmt.Errorf("config: write credentials: %w", err)
	}
	return nil
}

// ClearToken removes the stored credential. A missing file is not an
// error: clearing must always succeed client-side.
func (c *Config) ClearToken() error {
	err := os.Remove(c.credentialPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: clear credentials: %w", err)
	}
	return nil
}
