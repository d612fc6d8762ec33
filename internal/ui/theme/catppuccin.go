package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	// Meter draws the filled part of a volume bar, Track the rest.
	Meter = lipgloss.NewStyle().Foreground(Green)
	Track = lipgloss.NewStyle().Foreground(Surface1)
)

// Status colours a channel status word.
func Status(status string) string {
	switch status {
	case "ready":
		return lipgloss.NewStyle().Foreground(Green).Render(status)
	case "loading":
		return lipgloss.NewStyle().Foreground(Yellow).Render(status)
	case "failed":
		return lipgloss.NewStyle().Foreground(Red).Render(status)
	}
	return Muted.Render(status)
}
