package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the lipgloss styles for output formatting.
type Styles struct {
	Size lipgloss.Style
	Path lipgloss.Style
}

// NewStyles creates the default color styles.
func NewStyles() Styles {
	return Styles{
		Size: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true), // bold green
		Path: lipgloss.NewStyle(),
	}
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{
		Size: lipgloss.NewStyle(),
		Path: lipgloss.NewStyle(),
	}
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
