package contract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color variables for console output.
var (
	InfoColor  = color.New(color.FgCyan)
	WarnColor  = color.New(color.FgYellow)
	ErrorColor = color.New(color.FgRed, color.Bold)
	TitleColor = color.New(color.FgHiWhite, color.Bold)
)

// logOutput is where the CLI status lines go.
var logOutput io.Writer = os.Stderr

// osExit is swapped in tests.
var osExit = os.Exit

// SetLogOutput redirects LogInfo, LogWarn and LogFatal.
func SetLogOutput(w io.Writer) {
	logOutput = w
}

// SetColors enables or disables coloured console output globally.
func SetColors(enabled bool) {
	color.NoColor = !enabled
}

// LogInfo prints an informational status line.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintln(logOutput, InfoColor.Sprint("•"), fmt.Sprintf(format, args...))
}

// LogWarn prints a warning.
func LogWarn(format string, args ...any) {
	_, _ = fmt.Fprintln(logOutput, WarnColor.Sprint("⚠️ "), fmt.Sprintf(format, args...))
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(logOutput, "%s %s: %v\n", ErrorColor.Sprint("❌"), msg, err)
	osExit(1)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or fallback when stdout is
// not a terminal.
func TerminalWidth(fallback int) int {
	if !IsTerminal() {
		return fallback
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// ParseColorMode interprets yes/no style flags. "auto" (or empty) enables
// colours only when stdout is a terminal.
func ParseColorMode(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return IsTerminal(), nil
	case "yes", "y", "true", "1", "on", "always":
		return true, nil
	case "no", "n", "false", "0", "off", "never":
		return false, nil
	}
	return false, fmt.Errorf("unrecognised value %q (use yes, no or auto)", s)
}
