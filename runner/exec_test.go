package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xschemadev/staticrun/tools"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecExecutorRedirectsStdout(t *testing.T) {
	requireShell(t)
	report := filepath.Join(t.TempDir(), "mypy_output.txt")

	var stdout, stderr bytes.Buffer
	e := &ExecExecutor{Stdout: &stdout, Stderr: &stderr}

	code, err := e.Execute(context.Background(), tools.Command{
		Tool:   "mypy",
		Args:   []string{"sh", "-c", "echo found 3 errors; echo oops >&2; exit 1"},
		Stdout: report,
		Report: report,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != "found 3 errors" {
		t.Errorf("unexpected report content: %q", data)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should go to the report, console got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "oops") {
		t.Errorf("stderr should stay on the console, got %q", stderr.String())
	}
}

func TestExecExecutorConsoleOutput(t *testing.T) {
	requireShell(t)

	var stdout bytes.Buffer
	e := &ExecExecutor{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	code, err := e.Execute(context.Background(), tools.Command{
		Tool: "black",
		Args: []string{"sh", "-c", "echo reformatted 2 files"},
	})
	if err != nil || code != 0 {
		t.Fatalf("expected success, got code=%d err=%v", code, err)
	}
	if !strings.Contains(stdout.String(), "reformatted 2 files") {
		t.Errorf("expected console output, got %q", stdout.String())
	}
}

func TestExecExecutorMissingBinary(t *testing.T) {
	e := &ExecExecutor{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	code, err := e.Execute(context.Background(), tools.Command{
		Tool: "pylint",
		Args: []string{"staticrun-no-such-tool"},
	})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if code != -1 {
		t.Errorf("expected code -1, got %d", code)
	}
}

func TestExecExecutorEmptyCommand(t *testing.T) {
	e := NewExecExecutor()
	if _, err := e.Execute(context.Background(), tools.Command{Tool: "empty"}); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestRunWithRealProcesses(t *testing.T) {
	requireShell(t)
	captureUI(t)
	dir := t.TempDir()

	cmds := []tools.Command{
		{Tool: "first", Args: []string{"sh", "-c", "exit 2"}, Stdout: filepath.Join(dir, "first.txt")},
		{Tool: "second", Args: []string{"sh", "-c", "echo ok"}, Stdout: filepath.Join(dir, "second.txt")},
	}

	results, err := New(&ExecExecutor{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}).Run(context.Background(), cmds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].ExitCode != 2 {
		t.Errorf("expected first exit code 2, got %d", results[0].ExitCode)
	}
	data, err := os.ReadFile(filepath.Join(dir, "second.txt"))
	if err != nil {
		t.Fatalf("second report missing: %v", err)
	}
	if strings.TrimSpace(string(data)) != "ok" {
		t.Errorf("unexpected second report: %q", data)
	}
}
