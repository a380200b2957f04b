// Package environ checks which conda environment is active.
// The check is advisory: callers report the result and carry on.
package environ

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xschemadev/staticrun/logger"
)

// Env is one row of a `conda env list` listing
type Env struct {
	Name   string
	Path   string
	Active bool // row had the "name * path" shape
}

// Lister produces a raw environment listing
type Lister interface {
	List(ctx context.Context) ([]byte, error)
}

// CondaLister runs `conda env list`
type CondaLister struct {
	Binary string // defaults to "conda"
}

func (l CondaLister) List(ctx context.Context) ([]byte, error) {
	bin := l.Binary
	if bin == "" {
		bin = "conda"
	}

	cmd := exec.CommandContext(ctx, bin, "env", "list")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s env list failed: %w\n%s", bin, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Status is the outcome of a check
type Status struct {
	Expected string
	Active   []string // names from active rows, normally at most one
	Match    bool
}

// ParseEnvList parses a `conda env list` listing. Comment rows and rows
// that are neither "name path" nor "name * path" are skipped.
func ParseEnvList(out string) []Env {
	var envs []Env
	for line := range strings.Lines(out) {
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			envs = append(envs, Env{Name: fields[0], Path: fields[1]})
		case 3:
			envs = append(envs, Env{Name: fields[0], Path: fields[2], Active: true})
		default:
			if len(fields) > 0 {
				logger.Debug("skipping environment row", "row", strings.TrimSpace(line))
			}
		}
	}
	return envs
}

// Check lists environments and compares the active one against expected
func Check(ctx context.Context, lister Lister, expected string) (Status, error) {
	status := Status{Expected: expected}

	out, err := lister.List(ctx)
	if err != nil {
		return status, err
	}

	for _, env := range ParseEnvList(string(out)) {
		if !env.Active {
			continue
		}
		status.Active = append(status.Active, env.Name)
		if env.Name == expected {
			status.Match = true
		}
	}

	logger.Debug("environment check", "expected", expected, "active", status.Active, "match", status.Match)
	return status, nil
}
