// Package style holds the colors, icons and markers shared by wipt's terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Log level colors.
var (
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Log level icons.
const (
	Cross   = "✗"
	Warning = "!"
)

// Package markers used by the product listing.
const (
	MarkStable    = "(stable)"
	MarkDevel     = "(devel)"
	MarkInstalled = "(installed)"
	MarkSuite     = "(suite)"
)
