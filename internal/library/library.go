// Package library imports audio files into a music repository using the
// transfer engine, one file at a time.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/flacman/internal/event"
	"github.com/bamsammich/flacman/internal/filter"
	"github.com/bamsammich/flacman/internal/fserr"
	"github.com/bamsammich/flacman/internal/stats"
	"github.com/bamsammich/flacman/internal/transfer"
	"github.com/bamsammich/flacman/internal/walk"
)

// Skip reasons reported on FileSkipped events.
const (
	ReasonNotAudio = "not audio"
	ReasonFiltered = "filtered"
	ReasonDryRun   = "dry run"
	ReasonExists   = "exists"
	ReasonInPlace  = "already in place"
)

// Config describes an import.
type Config struct {
	Targets    []string // files or directories to import
	Repository string   // existing directory receiving the files
	Mode       transfer.Mode
	Overwrite  bool
	Recursive  bool // required for directory targets
	AudioOnly  bool
	Verify     bool // BLAKE3 source against destination
	DryRun     bool
	Filter     *filter.Chain
	Events     chan<- event.Event
	Stats      *stats.Collector
}

// Result is the outcome of an import.
type Result struct {
	Stats stats.Snapshot
	Err   error // every per-file failure, joined
}

// Importer places target files under a repository.
type Importer struct {
	cfg   Config
	repo  string // canonical repository path
	stats *stats.Collector
	errs  []error
}

// New validates cfg and returns an Importer for it.
func New(cfg Config) (*Importer, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.New("no targets to import")
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("unknown transfer mode %d", int(cfg.Mode))
	}
	if cfg.Repository == "" {
		return nil, errors.New("repository path is empty")
	}
	info, err := os.Stat(cfg.Repository)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fserr.Wrap(fserr.PathNotFound, cfg.Repository, err)
		}
		return nil, fserr.Wrap(fserr.Io, cfg.Repository, err)
	}
	if !info.IsDir() {
		return nil, fserr.New(fserr.NotADirectory, cfg.Repository)
	}
	repo, err := canonical(cfg.Repository)
	if err != nil {
		return nil, fserr.Wrap(fserr.Io, cfg.Repository, err)
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	return &Importer{cfg: cfg, repo: repo, stats: collector}, nil
}

// canonical returns path made absolute with symlinks resolved.
func canonical(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// inRepository reports whether path is the repository or lies below it.
func (im *Importer) inRepository(path string) bool {
	return path == im.repo || strings.HasPrefix(path, im.repo+string(filepath.Separator))
}

// Run imports every target, blocking until done or ctx is cancelled.
// A failing file never stops the import; cancellation stops it before the
// next file.
func Run(ctx context.Context, cfg Config) Result {
	im, err := New(cfg)
	if err != nil {
		return Result{Err: err}
	}
	return im.Run(ctx)
}

// Run imports every target. It must be called at most once.
func (im *Importer) Run(ctx context.Context) Result {
	for _, target := range im.cfg.Targets {
		if err := ctx.Err(); err != nil {
			im.errs = append(im.errs, err)
			break
		}
		if err := im.importTarget(ctx, target); err != nil {
			im.errs = append(im.errs, err)
			break
		}
	}
	return Result{Stats: im.stats.Snapshot(), Err: errors.Join(im.errs...)}
}

// importTarget returns only cancellation errors; everything else is
// recorded per file.
func (im *Importer) importTarget(ctx context.Context, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		kind := fserr.Io
		if errors.Is(err, os.ErrNotExist) {
			kind = fserr.PathNotFound
		}
		im.fail(ctx, target, "", fserr.Wrap(kind, target, err))
		return nil
	}

	if !info.IsDir() {
		im.importFile(ctx, target, filepath.Base(target))
		return nil
	}
	if !im.cfg.Recursive {
		im.fail(ctx, target, "", fserr.New(fserr.NotAFile, target))
		return nil
	}
	return im.importDir(ctx, target)
}

// importDir imports every file below dir, keeping its layout under a
// directory named after dir. When the repository lies inside dir, its
// subtree is left out of the walk so imported files are not imported again.
func (im *Importer) importDir(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		im.fail(ctx, dir, "", fserr.Wrap(fserr.Io, dir, err))
		return nil
	}
	base := filepath.Base(abs)
	canonDir, err := canonical(dir)
	if err != nil {
		im.fail(ctx, dir, "", fserr.Wrap(fserr.Io, dir, err))
		return nil
	}

	each := func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			im.fail(ctx, path, "", fserr.Wrap(fserr.Io, path, err))
			return nil
		}
		if im.inRepository(filepath.Join(canonDir, rel)) {
			return nil
		}
		im.importFile(ctx, path, filepath.Join(base, rel))
		return nil
	}

	if im.cfg.AudioOnly {
		files, err := walk.WalkLenient(dir)
		if err != nil {
			im.fail(ctx, dir, "", err)
			return nil
		}
		for path := range files {
			if err := each(path); err != nil {
				return err
			}
		}
		return nil
	}

	files, err := walk.Walk(dir)
	if err != nil {
		im.fail(ctx, dir, "", err)
		return nil
	}
	for path, walkErr := range files {
		if walkErr != nil {
			im.fail(ctx, fserr.PathOf(walkErr), "", walkErr)
			continue
		}
		if err := each(path); err != nil {
			return err
		}
	}
	return nil
}

// importFile places src at rel under the repository and reports the outcome.
func (im *Importer) importFile(ctx context.Context, src, rel string) {
	im.stats.AddFilesFound(1)

	info, err := os.Stat(src)
	if err != nil {
		im.fail(ctx, src, "", fserr.Wrap(fserr.Io, src, err))
		return
	}
	size := info.Size()

	if im.cfg.AudioOnly && !walk.IsAudio(src) {
		im.skip(ctx, src, "", size, ReasonNotAudio)
		return
	}
	if !im.cfg.Filter.Match(filepath.ToSlash(rel), size) {
		im.skip(ctx, src, "", size, ReasonFiltered)
		return
	}

	dst := filepath.Join(im.cfg.Repository, rel)
	if im.cfg.DryRun {
		im.skip(ctx, src, dst, size, ReasonDryRun)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		im.fail(ctx, src, dst, fserr.Wrap(fserr.Io, filepath.Dir(dst), err))
		return
	}

	var srcHash string
	if im.verifies() {
		if srcHash, err = HashFile(src); err != nil {
			im.fail(ctx, src, dst, fserr.Wrap(fserr.Io, src, err))
			return
		}
	}

	if _, err := transfer.Transfer(src, dst, im.cfg.Mode, im.cfg.Overwrite); err != nil {
		switch {
		case errors.Is(err, fserr.ErrFileAlreadyExists):
			im.skip(ctx, src, dst, size, ReasonExists)
		case errors.Is(err, fserr.ErrSameFile):
			im.skip(ctx, src, dst, size, ReasonInPlace)
		default:
			im.fail(ctx, src, dst, err)
		}
		return
	}
	im.stats.AddFilesTransferred(1)
	im.stats.AddBytesTransferred(size)

	if srcHash != "" {
		if err := verifyDestination(dst, srcHash); err != nil {
			im.stats.AddFilesVerifyFailed(1)
			im.errs = append(im.errs, err)
			im.emit(ctx, event.Event{Type: event.VerifyFailed, Src: src, Dst: dst, Size: size, Error: err})
			return
		}
		im.stats.AddFilesVerified(1)
	}

	im.emit(ctx, event.Event{Type: event.FileTransferred, Src: src, Dst: dst, Size: size})
}

// verifies reports whether the destination holds its own copy of the data
// worth hashing. A symlink only points back at the source.
func (im *Importer) verifies() bool {
	return im.cfg.Verify && im.cfg.Mode != transfer.Symlink
}

func (im *Importer) skip(ctx context.Context, src, dst string, size int64, reason string) {
	im.stats.AddFilesSkipped(1)
	im.emit(ctx, event.Event{Type: event.FileSkipped, Src: src, Dst: dst, Size: size, Reason: reason})
}

func (im *Importer) fail(ctx context.Context, src, dst string, err error) {
	im.stats.AddFilesFailed(1)
	im.errs = append(im.errs, err)
	im.emit(ctx, event.Event{Type: event.FileFailed, Src: src, Dst: dst, Error: err})
}

func (im *Importer) emit(ctx context.Context, e event.Event) {
	e.Mode = im.cfg.Mode.String()
	event.Emit(ctx, im.cfg.Events, e)
}
