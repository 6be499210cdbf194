package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/gomsv/internal/check"
	"github.com/harrison/gomsv/internal/config"
	"github.com/harrison/gomsv/internal/history"
	"github.com/harrison/gomsv/internal/logger"
	"github.com/harrison/gomsv/internal/release"
	"github.com/harrison/gomsv/internal/report"
	"github.com/harrison/gomsv/internal/search"
	"github.com/harrison/gomsv/internal/toolchain"
	"github.com/harrison/gomsv/internal/version"
)

// app bundles the resolved configuration and the run-scoped services built
// from it. Created once per invocation; Close releases the log file and the
// history database.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	reporter report.Reporter
	history  *history.Store
}

// newApp resolves configuration (defaults, then the project config file,
// then flags) and builds the logger and reporters.
func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()

	projectDir, _ := flags.GetString("path")

	var cfg *config.Config
	var err error
	if configPath, _ := flags.GetString("config"); configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(projectDir)
	}
	if err != nil {
		return nil, err
	}
	cfg.ProjectDir = projectDir

	if err := applyFlags(cfg, cmd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Nop()
	if !cfg.NoLog {
		log, err = logger.New(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("create run log: %w", err)
		}
	}

	a := &app{cfg: cfg, log: log}

	var base report.Reporter
	switch cfg.Output {
	case config.OutputJSON:
		base = report.NewJSONReporter(cmd.OutOrStdout())
	default:
		base = report.NewHumanReporter(cmd.OutOrStdout(), cfg.CheckCommandString())
	}

	if cfg.History {
		store, err := history.NewStore(cfg.HistoryPath)
		if err != nil {
			// History is an audit trail; a broken database degrades to a
			// warning instead of blocking the run.
			log.Warnf("%v", err)
		} else {
			a.history = store
			recorder := history.NewRecorder(store, log, cfg.ProjectDir, cfg.CheckCommandString())
			base = report.NewMulti(base, recorder)
		}
	}
	a.reporter = base

	log.Infof("target %s, project %s, command %q", cfg.Target, cfg.ProjectDir, cfg.CheckCommandString())
	return a, nil
}

// applyFlags layers changed command-line flags over the configuration.
// Flags not registered on the invoked command are simply absent.
func applyFlags(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("check-command") {
		raw, _ := flags.GetString("check-command")
		cfg.CheckCommand = strings.Fields(raw)
	}
	// Everything after -- overrides the check command entirely.
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		if rest := flags.Args()[at:]; len(rest) > 0 {
			cfg.CheckCommand = rest
		}
	}

	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("index-url") {
		cfg.IndexURL, _ = flags.GetString("index-url")
	}
	if flags.Changed("store-dir") {
		cfg.StoreDir, _ = flags.GetString("store-dir")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-dir") {
		cfg.LogDir, _ = flags.GetString("log-dir")
	}
	if flags.Changed("no-log") {
		cfg.NoLog, _ = flags.GetBool("no-log")
	}
	if flags.Changed("no-history") {
		noHistory, _ := flags.GetBool("no-history")
		cfg.History = !noHistory
	}
	if flags.Changed("include-all-patches") {
		cfg.IncludeAllPatches, _ = flags.GetBool("include-all-patches")
	}
	if flags.Changed("linear") {
		cfg.Linear, _ = flags.GetBool("linear")
	}

	if flags.Changed("min") {
		raw, _ := flags.GetString("min")
		min, err := version.Parse(raw)
		if err != nil {
			return fmt.Errorf("--min: %w", err)
		}
		cfg.MinimumVersion = &min
	}
	if flags.Changed("max") {
		raw, _ := flags.GetString("max")
		max, err := version.Parse(raw)
		if err != nil {
			return fmt.Errorf("--max: %w", err)
		}
		cfg.MaximumVersion = &max
	}

	return nil
}

// Close releases run-scoped resources.
func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
	a.log.Close()
}

// fetchCatalog downloads the release index and reduces it to the releases
// inside the configured bounds, collapsed to the latest patch per minor line
// unless every patch was requested. Search candidates are stable-only;
// listing asks for every channel.
func (a *app) fetchCatalog(ctx context.Context, allPatches, allChannels bool) (*release.Catalog, error) {
	a.reporter.Progress(report.FetchingIndex())

	var opts []release.IndexOption
	if a.cfg.IndexURL != "" {
		opts = append(opts, release.WithIndexURL(a.cfg.IndexURL))
	}

	releases, err := release.NewIndexClient(opts...).Fetch(ctx)
	if err != nil {
		return nil, err
	}
	a.log.Debugf("release index: %d entries", len(releases))

	cat := release.NewCatalog(releases)
	if !allChannels {
		cat = cat.Stable()
	}
	cat = cat.Filter(release.Bounds{
		Min: a.cfg.MinimumVersion,
		Max: a.cfg.MaximumVersion,
	})
	if !allPatches {
		cat = cat.LatestPatches()
	}

	if cat.Len() == 0 {
		return nil, fmt.Errorf("%w (min %s, max %s)", release.ErrNoCandidatesInRange,
			boundString(a.cfg.MinimumVersion), boundString(a.cfg.MaximumVersion))
	}

	a.log.Infof("catalog: %d candidate releases", cat.Len())
	return cat, nil
}

func boundString(b *version.Bare) string {
	if b == nil {
		return "none"
	}
	return b.String()
}

// newEngine builds the toolchain manager, checker and search engine for this
// run.
func (a *app) newEngine() (*search.Engine, error) {
	manager, err := toolchain.NewDLManager(a.cfg.StoreDir)
	if err != nil {
		return nil, err
	}

	checker := check.NewChecker(manager, a.reporter, a.cfg.ProjectDir, a.cfg.CheckCommand)
	return search.New(checker, a.reporter, a.cfg.CheckCommandString(), a.log), nil
}

// method maps the configuration to a search method.
func (a *app) method() search.Method {
	if a.cfg.Linear {
		return search.Linear
	}
	return search.Bisect
}
