// cmd/rohis/main.go
//
// Entry point for the rohis terminal client. Flow:
// 1. Load .env and the .rohis dotdir configuration
// 2. Build the API client and session store
// 3. Run the TUI; the root model bootstraps the session
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/config"
	"github.com/rohishub/rohis-cli/internal/logbook"
	"github.com/rohishub/rohis-cli/internal/session"
	"github.com/rohishub/rohis-cli/internal/tui"
)

func main() {
	// A missing .env is fine; it only carries optional overrides like
	// ROHIS_API_URL.
	_ = godotenv.Load()

	dir, err := config.ResolveDir()
	if err != nil {
		fatal(err)
	}
	if err := config.Init(dir); err != nil {
		fatal(err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		fatal(err)
	}

	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "rohis.log"))
	if err != nil {
		fatal(err)
	}

	// The store is the live credential source; the client reads the
	// token from it on every request.
	var store *session.Store
	client := api.NewClient(cfg.BaseURL(), api.WithCredentials(api.CredentialFunc(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	})))
	store = session.NewStore(client.Auth, cfg, lb)

	lb.Info("client started · server %s", cfg.BaseURL())

	p := tea.NewProgram(
		tui.NewApp(cfg, client, store, lb),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "rohis: %v\n", err)
	os.Exit(1)
}
