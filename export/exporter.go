// Package export writes workspace data out of the engine: versioned JSON
// snapshots of the whole store, and PNG images of a single workspace.
package export

import "fmt"

// Format represents an export format.
type Format string

const (
	// FormatJSON exports the full versioned snapshot (all workspaces).
	FormatJSON Format = "json"
	// FormatPNG renders the current workspace to an image.
	FormatPNG Format = "png"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "png", "image":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// FileExtension returns the recommended file extension for the format.
func (f Format) FileExtension() string {
	switch f {
	case FormatPNG:
		return ".png"
	default:
		return ".json"
	}
}
