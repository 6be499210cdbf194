package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gomsv/internal/manifest"
	"github.com/harrison/gomsv/internal/search"
	"github.com/harrison/gomsv/internal/version"
)

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [version]",
		Short: "Verify that the project builds with a declared toolchain version",
		Long: `Verify that the project passes its validation command under a specific
toolchain version.

Without an argument the version comes from the project's go.mod (the go
directive, or the toolchain directive when no go directive is present).
A two-component version verifies against the newest patch release of that
line.

Examples:
  # Verify the version declared in go.mod
  gomsv verify

  # Verify an explicit version
  gomsv verify 1.21

  # Verify with the test suite
  gomsv verify 1.21.5 -- go test ./...`,
		Args: cobra.ArbitraryArgs,
		RunE: verifyCommand,
	}

	cmd.Flags().String("check-command", "", "Validation command to run")

	return cmd
}

// verifyCommand implements the verify command logic
func verifyCommand(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	// Positional args before -- carry the version; args after -- are the
	// check command and were consumed by the config layer.
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		args = args[:at]
	}

	if len(args) > 1 {
		return fmt.Errorf("at most one version argument expected, got %d", len(args))
	}

	var declared version.Bare
	if len(args) == 1 {
		declared, err = version.Parse(args[0])
		if err != nil {
			return err
		}
	} else {
		m, err := manifest.Load(app.cfg.ProjectDir)
		if err != nil {
			return err
		}
		v, ok := m.MinimumVersion()
		if !ok {
			return fmt.Errorf("no toolchain version declared in go.mod; pass one explicitly")
		}
		declared = v
	}

	ctx := cmd.Context()

	// Resolution needs the full patch list so an explicit patch version is
	// never collapsed away.
	cat, err := app.fetchCatalog(ctx, true, false)
	if err != nil {
		return err
	}

	engine, err := app.newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Verify(ctx, cat, declared)
	if err != nil {
		return err
	}

	if result.Kind == search.VerifiedFailed {
		return fmt.Errorf("toolchain %s does not satisfy %q", result.Release.Version, app.cfg.CheckCommandString())
	}

	return nil
}
