// Package runner executes built commands one after another.
//
// Every command runs regardless of how the previous one ended. Outcomes are
// not aggregated; the per-tool reports are meant to be read by a person.
// Only an interruption (ctx cancelled, ctrl+c on the spinner) stops the
// sequence early.
package runner

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xschemadev/staticrun/logger"
	"github.com/xschemadev/staticrun/tools"
	"github.com/xschemadev/staticrun/ui"
)

// Result records how a single command ended
type Result struct {
	Command  tools.Command
	ExitCode int   // -1 when the process never ran
	Err      error // start/wait failure
}

type Runner struct {
	exec Executor
}

func New(e Executor) *Runner {
	return &Runner{exec: e}
}

// Run executes cmds in order, printing a marker before and after each one.
// The error is non-nil only when the run was interrupted; results then
// hold the commands that were started.
func (r *Runner) Run(ctx context.Context, cmds []tools.Command) ([]Result, error) {
	results := make([]Result, 0, len(cmds))

	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		ui.Executing(c.String())
		res, err := r.runOne(ctx, c)
		ui.Finished()

		switch {
		case res.Err != nil:
			logger.Warn("tool did not run", "tool", c.Tool, "error", res.Err)
		case res.ExitCode != 0:
			logger.Debug("tool exited non-zero", "tool", c.Tool, "code", res.ExitCode)
		default:
			logger.Debug("tool finished", "tool", c.Tool)
		}

		results = append(results, res)
		if err != nil {
			return results, err
		}
	}

	return results, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, c tools.Command) (Result, error) {
	// The formatter stays attached to the console; report tools are quiet
	// enough to sit behind a spinner.
	if c.Stdout == "" || !ui.IsTTY() {
		code, err := r.exec.Execute(ctx, c)
		return Result{Command: c, ExitCode: code, Err: err}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan Result, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		code, err := r.exec.Execute(runCtx, c)
		done <- Result{Command: c, ExitCode: code, Err: err}
	}()

	spinErr := ui.RunWithSpinner(ctx, "Running "+c.Tool+"...", func(ctx context.Context) error {
		select {
		case <-finished:
		case <-ctx.Done():
		}
		return nil
	})

	var interrupted error
	if spinErr != nil {
		logger.Debug("spinner stopped", "tool", c.Tool, "error", spinErr)
		if errors.Is(spinErr, tea.ErrInterrupted) || ctx.Err() != nil {
			interrupted = fmt.Errorf("%s interrupted: %w", c.Tool, spinErr)
			cancel()
		}
	}

	// The process is bound to runCtx, so this returns once it exits or is killed
	return <-done, interrupted
}
