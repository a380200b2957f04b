package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "staticrun",
	Short: "Run the Python static analysis suite against a source folder",
	Long: `Runs, in order: black, pylint, bandit, mypy, flake8.

black reformats the source folder in place and reports to the console.
The others write their findings to ./test_outputs/, which is emptied
before every run.

The source folder comes from source_folder in ./static_analysis.json when
that file exists; otherwise from -src.`,
	Example: "  staticrun -src /home/me/repo/static_analysis/code",
	Args:    cobra.NoArgs,
	RunE:    runStatic,
}

func Execute(ctx context.Context) {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion(version+" ("+commit+", "+date+")"),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
		fang.WithErrorHandler(handleError),
	); err != nil {
		os.Exit(1)
	}
}

// handleError prints usage and parse errors the fang way and stays quiet
// for errors runStatic already showed.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var r *reportedError
	if errors.As(err, &r) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// normalizeArgs accepts the single-dash long form "-src" that pflag would
// otherwise read as the shorthand cluster -s -r -c.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-src" || strings.HasPrefix(a, "-src=") {
			a = "-" + a
		}
		out[i] = a
	}
	return out
}
