package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/rohishub/rohis-cli/internal/api"
)

// fetchToken stamps an in-flight fetch. A screen only applies results
// carrying its current token, so a superseded or abandoned request's
// result is discarded instead of landing on a stale view.
type fetchToken = uuid.UUID

func newFetchToken() fetchToken { return uuid.New() }

func asAPIError(err error, target **api.Error) bool {
	return errors.As(err, target)
}

// errorText extracts the user-facing message from any operation failure:
// the backend's message for API errors, the error string otherwise.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if asAPIError(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1DB954"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	lockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5C07B"))
)

func joinLines(lines ...string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func clampCursor(cursor, length int) int {
	if length == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
