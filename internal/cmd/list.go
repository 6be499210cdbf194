package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gomsv/internal/config"
	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/toolchain"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List released toolchain versions",
		Long: `List released toolchain versions, newest first, after applying the
configured bounds and patch collapsing. All channels are shown, including
beta and release candidates; a search only ever considers the stable ones.
No toolchains are installed and no checks run.

Examples:
  gomsv list
  gomsv list --min 1.18 --include-all-patches
  gomsv list --output json`,
		Args: cobra.NoArgs,
		RunE: listCommand,
	}

	cmd.Flags().String("min", "", "Inclusive lower bound (e.g. 1.18)")
	cmd.Flags().String("max", "", "Inclusive upper bound (e.g. 1.22.3)")
	cmd.Flags().Bool("include-all-patches", false, "List every patch release, not just the latest per minor line")

	return cmd
}

// listCommand implements the list command logic
func listCommand(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	cat, err := app.fetchCatalog(cmd.Context(), app.cfg.IncludeAllPatches, true)
	if err != nil {
		return err
	}

	engine, err := app.newEngine()
	if err != nil {
		return err
	}

	result, err := engine.List(cat)
	if err != nil {
		return err
	}

	if app.cfg.Output == config.OutputJSON {
		return writeReleasesJSON(cmd, result.Catalog)
	}

	for _, rel := range result.Catalog {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-7s %s\n", rel.Version, rel.Channel, toolchain.ReleaseName(rel))
	}
	return nil
}

// writeReleasesJSON emits the candidate list as one JSON object per line,
// matching the event stream format of --output json.
func writeReleasesJSON(cmd *cobra.Command, releases []release.Release) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, rel := range releases {
		entry := struct {
			Version string `json:"version"`
			Channel string `json:"channel"`
			Name    string `json:"name"`
		}{
			Version: rel.Version.String(),
			Channel: rel.Channel.String(),
			Name:    toolchain.ReleaseName(rel),
		}
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}
