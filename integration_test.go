package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/xschemadev/staticrun/config"
	"github.com/xschemadev/staticrun/outdir"
	"github.com/xschemadev/staticrun/runner"
	"github.com/xschemadev/staticrun/tools"
	"github.com/xschemadev/staticrun/ui"
)

// fakeTools installs shell scripts named after the real tools on PATH.
// Each one records its name in calls.log and prints a line to stdout.
func fakeTools(t *testing.T, scripts map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools need a POSIX shell")
	}

	bin := t.TempDir()
	log := filepath.Join(bin, "calls.log")
	for _, tool := range tools.Tools {
		body, ok := scripts[tool.Name]
		if !ok {
			body = "echo " + tool.Name + " ok"
		}
		script := "#!/bin/sh\necho " + tool.Name + " >> '" + log + "'\n" + body + "\n"
		if err := os.WriteFile(filepath.Join(bin, tool.Name), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write fake %s: %v", tool.Name, err)
		}
	}

	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	return log
}

// TestIntegration_FullRun walks the documented scenario: no settings file,
// source from the command line, mypy failing, everything still runs.
func TestIntegration_FullRun(t *testing.T) {
	log := fakeTools(t, map[string]string{
		"mypy": "echo 'app.py:1: error: nope'; exit 1",
		// flake8 writes its own report via --output-file
		"flake8": `for a in "$@"; do case "$a" in --output-file=*) echo "E501 line too long" > "${a#--output-file=}";; esac; done`,
	})

	root := t.TempDir()
	src := t.TempDir()

	cfg, err := config.Resolve(config.PathsFor(root), src)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Source != src {
		t.Fatalf("expected source %q, got %q", src, cfg.Source)
	}

	if err := outdir.Prepare(cfg.Paths.OutputDir); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	var console bytes.Buffer
	ui.SetOutput(&console)
	t.Cleanup(func() { ui.SetOutput(os.Stdout) })

	exec := &runner.ExecExecutor{Stdout: &console, Stderr: &console}
	results, err := runner.New(exec).Run(context.Background(), tools.Build(cfg))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("no tool ran: %v", err)
	}
	if got := strings.Fields(string(calls)); strings.Join(got, ",") != "black,pylint,bandit,mypy,flake8" {
		t.Errorf("unexpected call order: %v", got)
	}

	if results[3].ExitCode != 1 {
		t.Errorf("expected mypy exit 1, got %d", results[3].ExitCode)
	}

	reports := map[string]string{
		"pylint_output.txt": "pylint ok",
		"bandit_output.txt": "bandit ok",
		"mypy_output.txt":   "app.py:1: error: nope",
		"flake8_output.txt": "E501 line too long",
	}
	for name, want := range reports {
		data, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, name))
		if err != nil {
			t.Errorf("missing report %s: %v", name, err)
			continue
		}
		if strings.TrimSpace(string(data)) != want {
			t.Errorf("%s: expected %q, got %q", name, want, data)
		}
	}

	// black talks to the console, not a report
	if !strings.Contains(console.String(), "black ok") {
		t.Errorf("expected black output on the console, got:\n%s", console.String())
	}
}

// TestIntegration_MissingTool checks a tool absent from PATH does not stop the rest
func TestIntegration_MissingTool(t *testing.T) {
	log := fakeTools(t, nil)
	if err := os.Remove(filepath.Join(filepath.Dir(log), "bandit")); err != nil {
		t.Fatal(err)
	}
	// Keep a real bandit on the host from being picked up
	t.Setenv("PATH", filepath.Dir(log))

	root := t.TempDir()
	cfg := config.Config{Paths: config.PathsFor(root), Source: t.TempDir()}
	if err := outdir.Prepare(cfg.Paths.OutputDir); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	ui.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { ui.SetOutput(os.Stdout) })

	exec := &runner.ExecExecutor{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	results, err := runner.New(exec).Run(context.Background(), tools.Build(cfg))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if results[2].Err == nil {
		t.Error("expected bandit to fail to start")
	}

	calls, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(string(calls)); strings.Join(got, ",") != "black,pylint,mypy,flake8" {
		t.Errorf("unexpected call order: %v", got)
	}
}
