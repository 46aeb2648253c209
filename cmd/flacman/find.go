package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bamsammich/flacman/internal/walk"
)

type findOpts struct {
	ext     string
	name    string
	pattern string
	audio   bool
	all     bool
}

func newFindCmd() *cobra.Command {
	opts := &findOpts{}

	cmd := &cobra.Command{
		Use:   "find <root>",
		Short: "List files below a directory",
		Long: `List regular files below root, one per line.

Exits 1 when nothing matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ext, "ext", "", "match files with this extension (case-insensitive)")
	f.StringVar(&opts.name, "name", "", "match files with this name")
	f.StringVar(&opts.pattern, "pattern", "", "match files whose path contains PATTERN")
	f.BoolVar(&opts.audio, "audio", false, "match audio files, skipping unreadable directories")
	f.BoolVar(&opts.all, "all", false, "with --name, list every match instead of the first")
	cmd.MarkFlagsMutuallyExclusive("ext", "name", "pattern", "audio")
	cmd.MarkFlagsOneRequired("ext", "name", "pattern", "audio")
	return cmd
}

func runFind(cmd *cobra.Command, opts *findOpts, root string) error {
	matches, err := findMatches(opts, root)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return &exitError{code: 1}
	}

	out := cmd.OutOrStdout()
	for _, path := range matches {
		if _, err := fmt.Fprintln(out, path); err != nil {
			return err
		}
	}
	return nil
}

func findMatches(opts *findOpts, root string) ([]string, error) {
	switch {
	case opts.name != "" && opts.all:
		return walk.FindAllByName(root, opts.name)
	case opts.name != "":
		path, ok, err := walk.FindByName(root, opts.name)
		if err != nil || !ok {
			return nil, err
		}
		return []string{path}, nil
	case opts.ext != "":
		return walk.FindByExtension(root, opts.ext)
	case opts.pattern != "":
		return walk.FindBySubstring(root, opts.pattern)
	default:
		return walk.FindAudioFiles(root)
	}
}
