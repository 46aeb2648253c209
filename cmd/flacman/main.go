package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/flacman/internal/config"
	"github.com/bamsammich/flacman/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalOpts holds the persistent flags shared by every subcommand.
type globalOpts struct {
	verbose    bool
	quiet      bool
	logFile    string
	configPath string

	logCloser io.Closer
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &globalOpts{}
	rootCmd := newRootCmd(opts, stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if opts.logCloser != nil {
		opts.logCloser.Close()
	}
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(opts *globalOpts, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flacman",
		Short:         "Pacman-style music library manager",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.verbose && opts.quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			return setupLogging(opts, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("flacman {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	pf.StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/flacman/config.toml)")

	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

// setupLogging installs the default slog logger: text on stderr, plus a
// debug-level JSON stream when --log is given.
func setupLogging(opts *globalOpts, stderr io.Writer) error {
	logLevel := slog.LevelInfo
	switch {
	case opts.verbose:
		logLevel = slog.LevelDebug
	case opts.quiet:
		logLevel = slog.LevelWarn
	}

	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	if opts.logFile != "" {
		lf, err := os.Create(opts.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		opts.logCloser = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = logging.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))
	return nil
}

// loadConfig reads --config when given, else the XDG config file. A
// broken config is reported and ignored.
func loadConfig(opts *globalOpts) config.Config {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("failed to load config", "error", err)
		return config.Config{}
	}
	return cfg
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
