// Package check runs the validation command against a specific toolchain
// version and classifies the result.
//
// The failure model matters here: a toolchain that cannot be installed is an
// infrastructure error that aborts the run, while a validation command that
// exits nonzero (or cannot start) is an ordinary failed check — first-class
// search data, never an engine error.
package check

import (
	"context"

	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/report"
	"github.com/harrison/gomsv/internal/toolchain"
)

// Outcome is the result of one executed check. Created once per check,
// consumed immediately by the search engine and reporter.
type Outcome struct {
	// Release is the toolchain version the check ran under.
	Release release.Release

	// Passed reports whether the validation command succeeded.
	Passed bool

	// Output is the combined output of the validation command, kept for
	// diagnostics.
	Output string
}

// Checker installs toolchains and runs the validation command under them.
type Checker struct {
	manager  toolchain.Manager
	reporter report.Reporter
	dir      string
	command  []string
}

// NewChecker creates a checker that runs command in dir. Progress events
// (installing, checking) are emitted to the reporter before each phase.
func NewChecker(manager toolchain.Manager, reporter report.Reporter, dir string, command []string) *Checker {
	return &Checker{
		manager:  manager,
		reporter: reporter,
		dir:      dir,
		command:  command,
	}
}

// Check ensures the toolchain for rel is installed, then executes the
// validation command under it. An installation failure is returned as an
// error and aborts the run; a failing command is a Passed=false outcome.
func (c *Checker) Check(ctx context.Context, rel release.Release) (Outcome, error) {
	c.reporter.Progress(report.Installing(rel))

	if err := c.manager.EnsureInstalled(ctx, rel); err != nil {
		return Outcome{}, err
	}

	c.reporter.Progress(report.Checking(rel))

	out, err := c.manager.Run(ctx, rel, c.dir, c.command)
	if err != nil && ctx.Err() != nil {
		// An interrupt mid-check aborts the run; a partially completed
		// install stays cached for the next run.
		return Outcome{}, ctx.Err()
	}

	return Outcome{
		Release: rel,
		Passed:  err == nil,
		Output:  out,
	}, nil
}
