package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ColorCyan is used for identifiable nouns: service names, file paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorYellow marks generated sidecar services.
	ColorYellow = lipgloss.Color("220")
)

var (
	StyleNoun    = lipgloss.NewStyle().Foreground(ColorCyan)
	StyleSidecar = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleDim     = lipgloss.NewStyle().Faint(true)
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// FormatCheckmark renders a green checkmark followed by msg.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return fmt.Sprintf("%s %s", check, StyleSummary.Render(msg))
}

// FormatService renders one line of the conversion summary.
func FormatService(name, source string, sidecar bool) string {
	style := StyleNoun
	if sidecar {
		style = StyleSidecar
	}
	return fmt.Sprintf("  %s %s", style.Render(name), StyleDim.Render("("+source+")"))
}
