// Package tools builds the fixed sequence of static-analysis invocations.
package tools

import (
	"path/filepath"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/xschemadev/staticrun/config"
)

const (
	// LineLength is the formatter's maximum line length
	LineLength = 120

	banditExcludes = "out/,packages/,pywin32/,scripts/,servicemock/,test/"
	banditSkips    = "B110,B314,B404,B405,B406"
	banditLevel    = "4"
)

// ReportMode says where a tool's findings end up
type ReportMode int

const (
	// ReportNone tools only act on the source tree (the formatter)
	ReportNone ReportMode = iota
	// ReportStdout tools print findings; stdout is redirected to the report file
	ReportStdout
	// ReportFlag tools write the report file themselves via a flag
	ReportFlag
)

type Tool struct {
	Name   string
	Report string // report file name inside the output directory
	Mode   ReportMode
	// BuildArgs returns argv without the binary
	BuildArgs func(cfg config.Config, report string) []string
}

// Tools is the run order. black rewrites sources in place, so it must
// come before anything whose report depends on them.
var Tools = []Tool{
	{
		Name: "black",
		Mode: ReportNone,
		BuildArgs: func(cfg config.Config, _ string) []string {
			return []string{"--line-length", strconv.Itoa(LineLength), cfg.Source}
		},
	},
	{
		Name:   "pylint",
		Report: "pylint_output.txt",
		Mode:   ReportStdout,
		BuildArgs: func(cfg config.Config, _ string) []string {
			return []string{"--rcfile", cfg.Paths.Pylintrc, cfg.Source}
		},
	},
	{
		Name:   "bandit",
		Report: "bandit_output.txt",
		Mode:   ReportStdout,
		BuildArgs: func(cfg config.Config, _ string) []string {
			return []string{"-r", cfg.Source, "-x", banditExcludes, "-n", banditLevel, "-s", banditSkips}
		},
	},
	{
		Name:   "mypy",
		Report: "mypy_output.txt",
		Mode:   ReportStdout,
		BuildArgs: func(cfg config.Config, _ string) []string {
			return []string{cfg.Source, "--ignore-missing-imports", "--no-strict-optional"}
		},
	},
	{
		Name:   "flake8",
		Report: "flake8_output.txt",
		Mode:   ReportFlag,
		BuildArgs: func(cfg config.Config, report string) []string {
			return []string{"--output-file=" + report, "--statistics", "--config=" + cfg.Paths.ToxIni, cfg.Source}
		},
	},
}

// Command is a fully built invocation
type Command struct {
	Tool   string
	Args   []string // argv, Args[0] is the binary
	Stdout string   // file stdout goes to; empty means the console
	Report string   // where the findings land; empty for the formatter
}

// Build returns one command per tool, in run order
func Build(cfg config.Config) []Command {
	cmds := make([]Command, 0, len(Tools))
	for _, t := range Tools {
		cmds = append(cmds, t.Command(cfg))
	}
	return cmds
}

// Command builds the invocation of t for cfg
func (t Tool) Command(cfg config.Config) Command {
	var report string
	if t.Mode != ReportNone {
		report = filepath.Join(cfg.Paths.OutputDir, t.Report)
	}

	c := Command{
		Tool:   t.Name,
		Args:   append([]string{t.Name}, t.BuildArgs(cfg, report)...),
		Report: report,
	}
	if t.Mode == ReportStdout {
		c.Stdout = report
	}
	return c
}

// String renders the command the way a shell user would type it.
// Only for display: commands never go through a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+2)
	for _, arg := range c.Args {
		parts = append(parts, quote(arg))
	}
	if c.Stdout != "" {
		parts = append(parts, ">", quote(c.Stdout))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Not representable in bash (e.g. NUL bytes)
		return strconv.Quote(s)
	}
	return q
}
