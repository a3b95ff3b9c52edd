package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitSeedsDotdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, sub := range []string{"logs", "exports"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("missing %s dir: %v", sub, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		t.Fatalf("missing config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatalf("seeded config.yaml missing base_url:\n%s", data)
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	custom := "version: 1\nserver:\n  base_url: https://rohis.example.org\n"
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.BaseURL() != "https://rohis.example.org" {
		t.Fatalf("BaseURL = %q, want custom value preserved", cfg.BaseURL())
	}
}

func TestNewDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.BaseURL() != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL(), defaultBaseURL)
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://override.example.org/")
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.BaseURL() != "https://override.example.org" {
		t.Fatalf("BaseURL = %q, want override without trailing slash", cfg.BaseURL())
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	dir := t.TempDir()
	bad := "version: 1\nserver:\n  base_url: not-a-url\n"
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatal("New accepted a relative base_url")
	}
}

func TestResolveDirHonorsEnv(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/rohis-test-dir")
	dir, err := ResolveDir()
	if err != nil {
		t.Fatalf("ResolveDir failed: %v", err)
	}
	if dir != "/tmp/rohis-test-dir" {
		t.Fatalf("dir = %q", dir)
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := cfg.Token(); got != "" {
		t.Fatalf("Token = %q before any login", got)
	}
	if err := cfg.SetToken("tok-xyz"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if got := cfg.Token(); got != "tok-xyz" {
		t.Fatalf("Token = %q, want tok-xyz", got)
	}

	info, err := os.Stat(cfg.credentialPath())
	if err != nil {
		t.Fatalf("stat credentials: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("credentials mode = %o, want 600", perm)
	}

	if err := cfg.ClearToken(); err != nil {
		t.Fatalf("ClearToken failed: %v", err)
	}
	if got := cfg.Token(); got != "" {
		t.Fatalf("Token = %q after clear", got)
	}
	// Clearing twice must stay a no-op.
	if err := cfg.ClearToken(); err != nil {
		t.Fatalf("second ClearToken failed: %v", err)
	}
}

func TestSetTokenEmptyClears(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := cfg.SetToken("tok"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetToken("  "); err != nil {
		t.Fatalf("SetToken(blank) failed: %v", err)
	}
	if got := cfg.Token(); got != "" {
		t.Fatalf("Token = %q, want cleared", got)
	}
}

func TestMalformedCredentialFileReadsAsLoggedOut(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := os.WriteFile(cfg.credentialPath(), []byte("{{{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Token(); got != "" {
		t.Fatalf("Token = %q, want empty for malformed file", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg.File.Server.BaseURL = "https://saved.example.org/"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.BaseURL() != "https://saved.example.org" {
		t.Fatalf("BaseURL = %q after reload", reloaded.BaseURL())
	}
}
