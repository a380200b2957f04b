package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/xschemadev/staticrun/config"
	"github.com/xschemadev/staticrun/environ"
	"github.com/xschemadev/staticrun/logger"
	"github.com/xschemadev/staticrun/outdir"
	"github.com/xschemadev/staticrun/runner"
	"github.com/xschemadev/staticrun/tools"
	"github.com/xschemadev/staticrun/ui"
)

const totalSteps = 5

var srcFlag string

// Replaced in tests
var (
	newLister   = func() environ.Lister { return environ.CondaLister{} }
	newExecutor = func() runner.Executor { return runner.NewExecExecutor() }
)

func init() {
	rootCmd.Flags().StringVar(&srcFlag, "src", "", "your source code full disk path (ignored when static_analysis.json exists)")
}

func runStatic(cmd *cobra.Command, args []string) error {
	start := time.Now()

	level := logger.LevelFromEnv()
	logger.SetLogger(logger.New(os.Stderr, level))
	ui.SetVerbose(level == charmlog.DebugLevel)

	ctx := cmd.Context()

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Step 1: Resolve source folder
	ui.Step(1, totalSteps, "Resolving source folder")
	cfg, err := config.Resolve(config.PathsFor(root), srcFlag)
	if err != nil {
		var missing *config.MissingSourceError
		if errors.As(err, &missing) {
			ui.ErrorMsg("No usable source folder", err,
				"Pass -src with the full path to your source code",
				"Or set source_folder in "+config.SettingsFileName)
		} else {
			ui.ErrorMsg("Failed to read "+config.SettingsFileName, err)
		}
		return reported(err)
	}
	ui.Detail(fmt.Sprintf("Source: %s", ui.Primary.Render(cfg.Source)))

	// Step 2: Environment (advisory)
	ui.Step(2, totalSteps, "Checking conda environment")
	checkEnvironment(ctx, newLister(), cfg.ExpectedEnv)

	// Step 3: Output directory
	ui.Step(3, totalSteps, "Preparing output directory")
	if err := outdir.Prepare(cfg.Paths.OutputDir); err != nil {
		ui.ErrorMsg("Failed to prepare output directory", err)
		return reported(err)
	}
	ui.Detail(cfg.Paths.OutputDir)

	// Step 4: Build commands
	ui.Step(4, totalSteps, "Building tool commands")
	cmds := tools.Build(cfg)
	if ui.IsVerbose() {
		for _, c := range cmds {
			ui.Verbose(c.Tool + ": " + c.String())
		}
	}

	// Step 5: Run them all, whatever happens
	ui.Step(5, totalSteps, "Running tools")
	ui.Println()
	if _, err := runner.New(newExecutor()).Run(ctx, cmds); err != nil {
		ui.ErrorMsg("Run interrupted", err, "Remaining tools were skipped; reports may be incomplete")
		return reported(err)
	}

	printSummary(cmds, cfg.Paths.OutputDir, time.Since(start))
	return nil
}

// checkEnvironment warns when the expected environment is not active.
// It never fails the run.
func checkEnvironment(ctx context.Context, lister environ.Lister, expected string) {
	var status environ.Status
	err := ui.RunWithSpinner(ctx, "Listing conda environments...", func(ctx context.Context) error {
		var checkErr error
		status, checkErr = environ.Check(ctx, lister, expected)
		return checkErr
	})
	if err != nil {
		logger.Debug("environment check failed", "error", err)
		ui.WarnMsg(fmt.Sprintf("WARNING: Could not check conda environment (expected %s)", expected))
		ui.Verbose(err.Error())
		return
	}

	reportEnvironment(status)
}

func reportEnvironment(status environ.Status) {
	if len(status.Active) == 0 {
		ui.Verbosef("no active conda environment reported")
		return
	}
	for _, name := range status.Active {
		if name == status.Expected {
			ui.SuccessMsg(fmt.Sprintf("Expected conda environment %s is active.", status.Expected))
			continue
		}
		ui.WarnMsg(fmt.Sprintf("WARNING: Expected conda env %s not active, active env is %s", status.Expected, name))
	}
}

// reportedError marks an error the console has already shown, so the
// error handler in Execute does not print it a second time.
type reportedError struct {
	err error
}

func reported(err error) error { return &reportedError{err: err} }

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func printSummary(cmds []tools.Command, outDir string, duration time.Duration) {
	ui.SuccessMsg(fmt.Sprintf("Tool sequence finished (%d commands, %s)", len(cmds), ui.FormatDuration(duration)))
	ui.Println()

	ui.Println("  " + ui.Bold.Render("Reports:"))
	for _, c := range cmds {
		if c.Report == "" {
			ui.Printf("    %s %s %s\n", ui.Dim.Render("•"), c.Tool, ui.Dim.Render("(formats sources in place)"))
			continue
		}
		ui.Printf("    %s %s\n", ui.Dim.Render("•"), ui.Primary.Render(c.Report))
	}
	ui.Println()

	ui.Printf("  %s Tool results are not checked; read the reports in %s\n", ui.Dim.Render("Tip:"), outDir)
}
