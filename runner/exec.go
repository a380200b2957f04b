package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/xschemadev/staticrun/tools"
)

// Executor runs one command to completion. err is only set when the process
// could not be started or waited on; a non-zero exit is just an exit code.
type Executor interface {
	Execute(ctx context.Context, c tools.Command) (exitCode int, err error)
}

// ExecExecutor runs commands as child processes
type ExecExecutor struct {
	Stdout io.Writer // used when the command has no stdout file
	Stderr io.Writer
}

// NewExecExecutor returns an executor attached to the process console
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *ExecExecutor) Execute(ctx context.Context, c tools.Command) (int, error) {
	if len(c.Args) == 0 {
		return -1, fmt.Errorf("empty command for %s", c.Tool)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if c.Stdout != "" {
		f, err := os.Create(c.Stdout)
		if err != nil {
			return -1, fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		cmd.Stdout = f
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("%s failed to run: %w", c.Args[0], err)
}
