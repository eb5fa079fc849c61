package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)
)

const rule = "────────────────────────────────────────"

// messages go to stdout, problems to stderr
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects user-facing messages. A nil writer leaves the
// current destination in place.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// ConfigureColors applies a color mode: "always", "never", or "auto".
// Auto disables color for NO_COLOR and dumb terminals.
func ConfigureColors(mode string) {
	switch strings.ToLower(mode) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			color.NoColor = true
		}
	}
}

// DisableColors turns color output off
func DisableColors() {
	color.NoColor = true
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(stdout, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(stderr, "%s Error: %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(stdout, "%s %s\n", color.CyanString("→"), fmt.Sprintf(format, args...))
}

func PrintKeyValue(key, value string) {
	Bold.Fprintf(stdout, "%s: ", key)
	fmt.Fprintln(stdout, value)
}

// PrintHeader prints a section title underlined by a rule
func PrintHeader(text string) {
	fmt.Fprintln(stdout)
	Bold.Fprintln(stdout, text)
	Muted.Fprintln(stdout, rule)
}

func PrintList(items []string) {
	bullet := color.HiBlackString("•")
	for _, item := range items {
		fmt.Fprintf(stdout, "  %s %s\n", bullet, item)
	}
}

// PrintProtectedNotice tells the user a library was left in place by the
// protection policy and how to override it
func PrintProtectedNotice(library string) {
	Warning.Fprintf(stderr, "Library %s will not be removed automatically.\n", Highlight.Sprint(library))
	Muted.Fprintf(stderr, "  Remove it manually, or pass --allow %s to include it.\n", library)
}

// ColorizeStatus colors a plan action or journal status
func ColorizeStatus(status string) string {
	switch status {
	case "removed", "installed", "ok", "delete":
		return Success.Sprint(status)
	case "failed":
		return Error.Sprint(status)
	case "skipped", "protected", "unknown":
		return Warning.Sprint(status)
	case "kept":
		return Info.Sprint(status)
	default:
		return status
	}
}
