// Package output renders the terminal summary printed by the CLI.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	ColorPrimary = lipgloss.Color("#64b5f6")
	ColorSuccess = lipgloss.Color("#66bb6a")
	ColorGood    = lipgloss.Color("#9ccc65")
	ColorWarning = lipgloss.Color("#fff59d")
	ColorError   = lipgloss.Color("#ef5350")
	ColorMuted   = lipgloss.Color("#888888")
)

var (
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleGood    = lipgloss.NewStyle().Foreground(ColorGood)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

var noColor bool

// SetNoColor swaps every style for an unstyled renderer.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleGood = plain
		StyleWarning = plain
		StyleError = plain
		StyleMuted = plain
		StyleBold = plain
	}
}

func IsNoColor() bool { return noColor }

// AutoColor disables styling when f is not a terminal.
func AutoColor(f *os.File) {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		SetNoColor(true)
	}
}
