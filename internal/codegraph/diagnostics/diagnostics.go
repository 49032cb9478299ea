// Package diagnostics colorizes per-file build diagnostics by severity for
// a terminal-attached caller (SPEC_FULL.md §10 "Colorized diagnostics"),
// grounded on termfx-morfx's demo/cmd/main.go color.New(...).SprintFunc()
// palette, gated on a real terminal via mattn/go-isatty rather than
// fatih/color's own global color.NoColor toggle, so a caller that redirects
// Diagnostic output to a file never emits escape codes into it.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Severity classifies a Diagnostic for coloring purposes.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Diagnostic is the minimal shape this package colorizes; callers (e.g.
// the root codegraph.Diagnostic) convert their own diagnostic records into
// this one rather than this package depending on theirs, to avoid an
// import cycle back into the root package.
type Diagnostic struct {
	Path     string
	Message  string
	Severity Severity
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgBlue)
)

func colorFor(sev Severity) *color.Color {
	switch sev {
	case SeverityWarn:
		return warnColor
	case SeverityInfo:
		return infoColor
	default:
		return errorColor
	}
}

// Format renders diags as one line per diagnostic, "path: message",
// colored by severity when out is a terminal (detected via go-isatty) and
// plain text otherwise.
func Format(out *os.File, diags []Diagnostic) string {
	var colorize bool
	if out != nil {
		colorize = isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	}

	var b strings.Builder
	for _, d := range diags {
		line := fmt.Sprintf("%s: %s", d.Path, d.Message)
		if colorize {
			line = colorFor(d.Severity).Sprint(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Fprint writes Format's output to w. Unlike Format, w need not be an
// *os.File — passing anything other than os.Stdout/os.Stderr (or another
// *os.File wrapped behind the io.Writer interface) never colorizes, since
// isatty detection requires a file descriptor.
func Fprint(w io.Writer, diags []Diagnostic) error {
	var out *os.File
	if f, ok := w.(*os.File); ok {
		out = f
	}
	_, err := io.WriteString(w, Format(out, diags))
	return err
}
