package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/flacman/internal/config"
	"github.com/bamsammich/flacman/internal/event"
	"github.com/bamsammich/flacman/internal/filter"
	"github.com/bamsammich/flacman/internal/library"
	"github.com/bamsammich/flacman/internal/logging"
	"github.com/bamsammich/flacman/internal/stats"
	"github.com/bamsammich/flacman/internal/transfer"
	"github.com/bamsammich/flacman/internal/ui"
)

// modeFlags lists the mutually exclusive transfer mode switches.
var modeFlags = []struct {
	name  string
	short string
	mode  transfer.Mode
	usage string
}{
	{"copy", "c", transfer.Copy, "copy files into the repository (default)"},
	{"move", "m", transfer.Move, "move files into the repository"},
	{"symlink", "", transfer.Symlink, "create symlinks in the repository"},
	{"hardlink", "", transfer.Hardlink, "create hardlinks in the repository"},
}

type updateOpts struct {
	modes      [4]bool
	repository string
	recursive  bool
	overwrite  bool
	audioOnly  bool
	verify     bool
	dryRun     bool
	filterFile string
	minSizeStr string
	maxSizeStr string
	chain      *filter.Chain
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

var _ pflag.Value = (*filterFlag)(nil)

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

func newUpdateCmd(global *globalOpts) *cobra.Command {
	opts := &updateOpts{chain: filter.NewChain()}

	cmd := &cobra.Command{
		Use:   "update [flags] <target>...",
		Short: "Import music files into the repository",
		Long: `Import files or directories into the music repository.

A file target lands at <repo>/<name>. A directory target (requires -r) keeps
its layout under <repo>/<dirname>/. Existing files are skipped unless
--overwrite is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, global, opts, args)
		},
	}

	f := cmd.Flags()
	for i, mf := range modeFlags {
		f.BoolVarP(&opts.modes[i], mf.name, mf.short, false, mf.usage)
	}
	cmd.MarkFlagsMutuallyExclusive("copy", "move", "symlink", "hardlink")

	f.StringVar(&opts.repository, "repo", "", "repository directory (default from config)")
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "import directories recursively")
	f.BoolVar(&opts.overwrite, "overwrite", false, "replace files already in the repository")
	f.BoolVar(&opts.audioOnly, "audio-only", false, "only import audio files, ignoring unreadable directories")
	f.BoolVar(&opts.verify, "verify", false, "verify checksums after transfer (BLAKE3)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "show what would be imported without writing")

	// Filter flags use a custom pflag.Value to preserve CLI ordering.
	f.Var(&filterFlag{chain: opts.chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: opts.chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	f.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	f.StringVar(&opts.minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	f.StringVar(&opts.maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	return cmd
}

func runUpdate(cmd *cobra.Command, global *globalOpts, opts *updateOpts, targets []string) error {
	cfg := loadConfig(global)
	applyConfigDefaults(cmd.Flags(), cfg.Defaults, opts)

	mode, err := resolveMode(opts, cfg.Defaults)
	if err != nil {
		return err
	}
	if opts.repository == "" {
		return errors.New("no repository: pass --repo or set defaults.repository in the config file")
	}
	if err := opts.buildFilter(); err != nil {
		return err
	}
	if opts.dryRun {
		slog.Info("dry run mode")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	outTheme, errTheme := outputThemes(cfg.Theme, stdout, stderr)
	presenter := ui.NewPresenter(ui.Config{
		Writer:      stdout,
		ErrWriter:   stderr,
		Stats:       collector,
		Repository:  opts.repository,
		Theme:       outTheme,
		ErrTheme:    errTheme,
		Quiet:       global.quiet,
		ShowSkipped: global.verbose || opts.dryRun,
	})

	// Every event is logged before the presenter sees it.
	logged := make(chan event.Event, 256)
	go func() {
		defer close(logged)
		logger := slog.Default()
		for ev := range events {
			logging.LogEvent(context.Background(), logger, ev)
			logged <- ev
		}
	}()

	var presenterErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = presenter.Run(logged)
	}()

	libCfg := library.Config{
		Targets:    targets,
		Repository: opts.repository,
		Mode:       mode,
		Overwrite:  opts.overwrite,
		Recursive:  opts.recursive,
		AudioOnly:  opts.audioOnly,
		Verify:     opts.verify,
		DryRun:     opts.dryRun,
		Events:     events,
		Stats:      collector,
	}
	if !opts.chain.Empty() {
		libCfg.Filter = opts.chain
	}

	slog.Debug("starting import",
		"targets", targets,
		"repository", opts.repository,
		"mode", mode,
		"recursive", opts.recursive,
		"audio_only", opts.audioOnly,
	)

	result := library.Run(ctx, libCfg)
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	if summary := presenter.Summary(); summary != "" {
		fmt.Fprintln(stderr, summary)
	}
	return importExit(result)
}

// importExit maps an import result to the process exit code: 1 when some
// files made it, 2 when none did.
func importExit(result library.Result) error {
	if result.Err == nil {
		return nil
	}
	slog.Error("import failed", "error", result.Err)
	if result.Stats.FilesTransferred > 0 {
		return &exitError{code: 1}
	}
	return &exitError{code: 2}
}

// resolveMode picks the mode from the flags, then the config, then Copy.
func resolveMode(opts *updateOpts, defaults config.DefaultsConfig) (transfer.Mode, error) {
	for i, set := range opts.modes {
		if set {
			return modeFlags[i].mode, nil
		}
	}
	if defaults.Mode != nil {
		mode, err := transfer.ParseMode(*defaults.Mode)
		if err != nil {
			return 0, fmt.Errorf("config: %w", err)
		}
		return mode, nil
	}
	return transfer.Copy, nil
}

func (opts *updateOpts) buildFilter() error {
	if opts.filterFile != "" {
		if err := opts.chain.LoadFile(opts.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}
	if opts.minSizeStr != "" {
		n, err := filter.ParseSize(opts.minSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		opts.chain.SetMinSize(n)
	}
	if opts.maxSizeStr != "" {
		n, err := filter.ParseSize(opts.maxSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		opts.chain.SetMaxSize(n)
	}
	return nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(flags *pflag.FlagSet, defaults config.DefaultsConfig, opts *updateOpts) {
	if !flags.Changed("repo") && defaults.Repository != nil {
		opts.repository = *defaults.Repository
	}
	if !flags.Changed("overwrite") && defaults.Overwrite != nil {
		opts.overwrite = *defaults.Overwrite
	}
	if !flags.Changed("verify") && defaults.Verify != nil {
		opts.verify = *defaults.Verify
	}
	if !flags.Changed("recursive") && defaults.Recursive != nil {
		opts.recursive = *defaults.Recursive
	}
	if !flags.Changed("audio-only") && defaults.AudioOnly != nil {
		opts.audioOnly = *defaults.AudioOnly
	}
	if !flags.Changed("filter") && defaults.Filter != nil {
		opts.filterFile = *defaults.Filter
	}
}

// outputThemes colours each stream only when that stream is a terminal.
func outputThemes(tc config.ThemeConfig, stdout, stderr io.Writer) (out, errOut ui.Theme) {
	return ui.NewTheme(tc, isTerminal(stdout)), ui.NewTheme(tc, isTerminal(stderr))
}

// isTerminal is a variable so tests can fake a terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}
