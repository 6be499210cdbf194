package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gomsv/internal/manifest"
	"github.com/harrison/gomsv/internal/search"
)

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find the minimum toolchain version the project builds with",
		Long: `Find the oldest Go toolchain version the project still passes its
validation command with.

Candidate versions come from the official release index, reduced to the
latest patch release of each minor line. Each candidate is installed on
demand and the validation command runs under it in the project directory.

Examples:
  # Bisect with the default command (go build ./...)
  gomsv find

  # Use the test suite as the compatibility check
  gomsv find --check-command "go test ./..."

  # Same, with the command after --
  gomsv find -- go test ./...

  # Constrain the candidate range
  gomsv find --min 1.18 --max 1.22

  # Exhaustive scan for projects that regress on newer toolchains
  gomsv find --linear --include-all-patches`,
		Args: cobra.ArbitraryArgs,
		RunE: findCommand,
	}

	cmd.Flags().String("check-command", "", "Validation command to run per candidate")
	cmd.Flags().String("min", "", "Inclusive lower bound for candidates (e.g. 1.18)")
	cmd.Flags().String("max", "", "Inclusive upper bound for candidates (e.g. 1.22.3)")
	cmd.Flags().Bool("include-all-patches", false, "Consider every patch release, not just the latest per minor line")
	cmd.Flags().Bool("linear", false, "Scan candidates ascending instead of bisecting")

	return cmd
}

// findCommand implements the find command logic
func findCommand(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	// The go directive is a hard floor: older toolchains refuse to build the
	// module at all, so without an explicit bound it seeds the search range.
	// Only a missing manifest leaves the range unbounded; a manifest that
	// does not parse aborts before any check.
	if app.cfg.MinimumVersion == nil {
		m, err := manifest.Load(app.cfg.ProjectDir)
		switch {
		case errors.Is(err, manifest.ErrNoManifest):
		case err != nil:
			return err
		default:
			if v, ok := m.MinimumVersion(); ok {
				app.cfg.MinimumVersion = &v
				app.log.Infof("lower bound %s from go.mod", v)
			}
		}
	}

	ctx := cmd.Context()

	cat, err := app.fetchCatalog(ctx, app.cfg.IncludeAllPatches, false)
	if err != nil {
		return err
	}

	engine, err := app.newEngine()
	if err != nil {
		return err
	}

	result, err := engine.FindMinimum(ctx, cat, app.method())
	if err != nil {
		return err
	}

	if result.Kind == search.NoneSatisfies {
		return fmt.Errorf("no toolchain version satisfies %q", app.cfg.CheckCommandString())
	}

	return nil
}
