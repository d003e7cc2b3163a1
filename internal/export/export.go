// Package export renders a state report for the command line, as text
// tables or as JSON.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// Format selects the report encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Write renders rep to w in the given format.
func Write(w io.Writer, rep *models.StateReport, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatText, "":
		return WriteText(w, rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
