package cli

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every command's output
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	cmdStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// boxStyle frames command summaries
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)
