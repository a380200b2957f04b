package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	out     io.Writer = os.Stdout
	isTTY   bool
	verbose bool

	// ANSI palette indexes
	cyan   = lipgloss.Color("6")
	green  = lipgloss.Color("2")
	red    = lipgloss.Color("1")
	yellow = lipgloss.Color("3")
	dim    = lipgloss.Color("8")

	Primary = lipgloss.NewStyle().Foreground(cyan)
	Success = lipgloss.NewStyle().Foreground(green)
	Error   = lipgloss.NewStyle().Foreground(red)
	Warning = lipgloss.NewStyle().Foreground(yellow)
	Dim     = lipgloss.NewStyle().Foreground(dim)
	Bold    = lipgloss.NewStyle().Bold(true)
)

func init() {
	isTTY = term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		// Disable colors in non-TTY
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SetOutput redirects console output, mainly for tests.
// Anything other than os.Stdout is treated as a non-TTY.
func SetOutput(w io.Writer) {
	out = w
	if w != os.Stdout {
		isTTY = false
	}
}

func SetVerbose(v bool) { verbose = v }

func IsVerbose() bool { return verbose }

// IsTTY reports whether console output goes to a terminal
func IsTTY() bool { return isTTY }

// Step prints a step indicator: [1/5] Resolving source folder
func Step(num, total int, msg string) {
	prefix := Dim.Render(fmt.Sprintf("[%d/%d]", num, total))
	fmt.Fprintf(out, "%s %s\n", prefix, msg)
}

// Detail prints indented secondary info with arrow
func Detail(msg string) {
	fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), msg)
}

// Verbose prints a message only in verbose mode (indented, dim)
func Verbose(msg string) {
	if verbose {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), Dim.Render(msg))
	}
}

// Verbosef prints a formatted message only in verbose mode
func Verbosef(format string, a ...any) {
	if verbose {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), Dim.Render(fmt.Sprintf(format, a...)))
	}
}

// SuccessMsg prints a success message with checkmark
func SuccessMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Success.Render("✓"), msg)
}

// ErrorMsg prints a failure title with its error and optional hints
func ErrorMsg(title string, err error, hints ...string) {
	fmt.Fprintf(out, "%s %s\n", Error.Render("✗"), title)
	if err != nil {
		fmt.Fprintf(out, "  %s\n", Dim.Render(err.Error()))
	}
	Hints(hints...)
}

// Hints prints follow-up suggestions, one per line
func Hints(hints ...string) {
	for _, hint := range hints {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("Hint:"), hint)
	}
}

// WarnMsg prints a warning message
func WarnMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Warning.Render("!"), msg)
}

// Executing prints the start marker for an external command
func Executing(command string) {
	fmt.Fprintf(out, "%s %s\n", Primary.Render("EXECUTION >"), command)
}

// Finished prints the end marker for an external command
func Finished() {
	fmt.Fprintf(out, "%s\n\n", Dim.Render("FINISHED"))
}

// FormatDuration formats duration nicely (e.g., "234ms" or "1.2s")
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Println is a simple wrapper for fmt.Println
func Println(a ...any) {
	fmt.Fprintln(out, a...)
}

// Printf is a simple wrapper for fmt.Printf
func Printf(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
