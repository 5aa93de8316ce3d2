// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI
// output, chosen for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for completed status headers.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorWarning is amber - used for warnings.
	ColorWarning = lipgloss.Color("#F59E0B")
)

// Base styles built from the palette.
var (
	// TitleStyle is for primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StatusStyle is for the verb column of status lines such as
	// "Loaded ~/.config/sheldon/plugins.toml".
	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess).
			Width(12).
			Align(lipgloss.Right)
)

// status prints a right-aligned verb followed by a detail, the way cargo
// and friends report progress. Goes to stderr via the shared logger.
func status(verb, detail string) {
	logger.Print(StatusStyle.Render(verb) + " " + detail)
}

// statusVerbose is status gated behind --verbose.
func statusVerbose(verb, detail string) {
	if verbose {
		status(verb, detail)
	}
}
