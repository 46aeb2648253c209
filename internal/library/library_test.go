package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/flacman/internal/event"
	"github.com/bamsammich/flacman/internal/filter"
	"github.com/bamsammich/flacman/internal/fserr"
	"github.com/bamsammich/flacman/internal/stats"
	"github.com/bamsammich/flacman/internal/transfer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// albumTree creates <tmp>/in/Album with two audio files and a cover.
func albumTree(t *testing.T) (album, repo string) {
	t.Helper()
	root := t.TempDir()
	album = filepath.Join(root, "in", "Album")
	writeFile(t, filepath.Join(album, "01.flac"), "track one")
	writeFile(t, filepath.Join(album, "cover.jpg"), "jpeg")
	writeFile(t, filepath.Join(album, "CD2", "02.MP3"), "track two")

	repo = filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repo, 0o755))
	return album, repo
}

// runImport runs cfg and returns the result plus every emitted event.
func runImport(t *testing.T, ctx context.Context, cfg Config) (Result, []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 64)
	cfg.Events = ch
	res := Run(ctx, cfg)
	close(ch)

	var evs []event.Event
	for ev := range ch {
		evs = append(evs, ev)
	}
	return res, evs
}

func eventsOf(evs []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, ev := range evs {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestImportSingleFile(t *testing.T) {
	album, repo := albumTree(t)
	src := filepath.Join(album, "01.flac")

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{src},
		Repository: repo,
		Mode:       transfer.Copy,
	})
	require.NoError(t, res.Err)

	assert.Equal(t, "track one", readFile(t, filepath.Join(repo, "01.flac")))
	assert.FileExists(t, src)
	assert.Equal(t, int64(1), res.Stats.FilesFound)
	assert.Equal(t, int64(1), res.Stats.FilesTransferred)
	assert.Equal(t, int64(len("track one")), res.Stats.BytesTransferred)

	require.Len(t, evs, 1)
	assert.Equal(t, event.FileTransferred, evs[0].Type)
	assert.Equal(t, "copy", evs[0].Mode)
	assert.Equal(t, filepath.Join(repo, "01.flac"), evs[0].Dst)
	assert.False(t, evs[0].Timestamp.IsZero())
}

func TestImportDirectoryRequiresRecursive(t *testing.T) {
	album, repo := albumTree(t)

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
	})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, fserr.ErrNotAFile)
	assert.Equal(t, int64(1), res.Stats.FilesFailed)
	require.Len(t, evs, 1)
	assert.Equal(t, event.FileFailed, evs[0].Type)
	assert.Equal(t, album, evs[0].Src)
}

func TestImportDirectoryAudioOnly(t *testing.T) {
	album, repo := albumTree(t)

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Mode:       transfer.Copy,
		Recursive:  true,
		AudioOnly:  true,
	})
	require.NoError(t, res.Err)

	assert.Equal(t, "track one", readFile(t, filepath.Join(repo, "Album", "01.flac")))
	assert.Equal(t, "track two", readFile(t, filepath.Join(repo, "Album", "CD2", "02.MP3")))
	assert.NoFileExists(t, filepath.Join(repo, "Album", "cover.jpg"))

	assert.Equal(t, int64(3), res.Stats.FilesFound)
	assert.Equal(t, int64(2), res.Stats.FilesTransferred)
	assert.Equal(t, int64(1), res.Stats.FilesSkipped)

	skipped := eventsOf(evs, event.FileSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, ReasonNotAudio, skipped[0].Reason)
	assert.Equal(t, filepath.Join(album, "cover.jpg"), skipped[0].Src)
}

func TestImportDirectoryAllFiles(t *testing.T) {
	album, repo := albumTree(t)

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Recursive:  true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "jpeg", readFile(t, filepath.Join(repo, "Album", "cover.jpg")))
	assert.Equal(t, int64(3), res.Stats.FilesTransferred)
}

func TestImportRelativeDirectoryTarget(t *testing.T) {
	album, repo := albumTree(t)
	t.Chdir(album)

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{"."},
		Repository: repo,
		Recursive:  true,
		AudioOnly:  true,
	})
	require.NoError(t, res.Err)
	assert.FileExists(t, filepath.Join(repo, "Album", "01.flac"))
}

func TestImportSkipsRepositoryInsideTarget(t *testing.T) {
	music := filepath.Join(t.TempDir(), "music")
	for _, name := range []string{"a.flac", "b.flac", "c.flac"} {
		writeFile(t, filepath.Join(music, name), name)
	}
	repo := filepath.Join(music, "lib")
	require.NoError(t, os.Mkdir(repo, 0o755))

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{music},
		Repository: repo,
		Recursive:  true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(3), res.Stats.FilesFound)
	assert.Equal(t, int64(3), res.Stats.FilesTransferred)
	assert.Len(t, eventsOf(evs, event.FileTransferred), 3)
	assert.Equal(t, "a.flac", readFile(t, filepath.Join(repo, "music", "a.flac")))
	assert.NoDirExists(t, filepath.Join(repo, "music", "lib"))
}

func TestImportSkipsRepositoryReachedThroughSymlink(t *testing.T) {
	root := t.TempDir()
	music := filepath.Join(root, "music")
	writeFile(t, filepath.Join(music, "a.flac"), "a")
	require.NoError(t, os.Mkdir(filepath.Join(music, "lib"), 0o755))
	repo := filepath.Join(root, "repo-link")
	require.NoError(t, os.Symlink(filepath.Join(music, "lib"), repo))

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{music},
		Repository: repo,
		Recursive:  true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), res.Stats.FilesTransferred)
	assert.FileExists(t, filepath.Join(music, "lib", "music", "a.flac"))
	assert.NoDirExists(t, filepath.Join(music, "lib", "music", "lib"))
}

func TestImportFilter(t *testing.T) {
	album, repo := albumTree(t)
	chain := filter.NewChain()
	require.NoError(t, chain.AddExclude("CD2/"))

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Recursive:  true,
		AudioOnly:  true,
		Filter:     chain,
	})
	require.NoError(t, res.Err)

	assert.FileExists(t, filepath.Join(repo, "Album", "01.flac"))
	assert.NoDirExists(t, filepath.Join(repo, "Album", "CD2"))

	var reasons []string
	for _, ev := range eventsOf(evs, event.FileSkipped) {
		reasons = append(reasons, ev.Reason)
	}
	assert.ElementsMatch(t, []string{ReasonNotAudio, ReasonFiltered}, reasons)
}

func TestImportDryRun(t *testing.T) {
	album, repo := albumTree(t)

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Mode:       transfer.Move,
		Recursive:  true,
		AudioOnly:  true,
		DryRun:     true,
	})
	require.NoError(t, res.Err)

	entries, err := os.ReadDir(repo)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, filepath.Join(album, "01.flac"))
	assert.Zero(t, res.Stats.FilesTransferred)

	var dry []event.Event
	for _, ev := range eventsOf(evs, event.FileSkipped) {
		if ev.Reason == ReasonDryRun {
			dry = append(dry, ev)
		}
	}
	require.Len(t, dry, 2)
	for _, ev := range dry {
		assert.NotEmpty(t, ev.Dst)
		assert.Equal(t, "move", ev.Mode)
	}
}

func TestImportExistingIsSkipped(t *testing.T) {
	album, repo := albumTree(t)
	writeFile(t, filepath.Join(repo, "01.flac"), "older rip")

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{filepath.Join(album, "01.flac")},
		Repository: repo,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "older rip", readFile(t, filepath.Join(repo, "01.flac")))
	require.Len(t, evs, 1)
	assert.Equal(t, ReasonExists, evs[0].Reason)
}

func TestImportOverwrite(t *testing.T) {
	album, repo := albumTree(t)
	writeFile(t, filepath.Join(repo, "01.flac"), "older rip")

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{filepath.Join(album, "01.flac")},
		Repository: repo,
		Overwrite:  true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "track one", readFile(t, filepath.Join(repo, "01.flac")))
}

func TestImportHardlinkRerunIsInPlace(t *testing.T) {
	album, repo := albumTree(t)
	cfg := Config{
		Targets:    []string{filepath.Join(album, "01.flac")},
		Repository: repo,
		Mode:       transfer.Hardlink,
	}

	res, _ := runImport(t, context.Background(), cfg)
	require.NoError(t, res.Err)

	res, evs := runImport(t, context.Background(), cfg)
	require.NoError(t, res.Err)
	require.Len(t, evs, 1)
	assert.Equal(t, ReasonInPlace, evs[0].Reason)
}

func TestImportMove(t *testing.T) {
	album, repo := albumTree(t)

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Mode:       transfer.Move,
		Recursive:  true,
		AudioOnly:  true,
	})
	require.NoError(t, res.Err)
	assert.NoFileExists(t, filepath.Join(album, "01.flac"))
	assert.FileExists(t, filepath.Join(album, "cover.jpg"))
	assert.Equal(t, "track one", readFile(t, filepath.Join(repo, "Album", "01.flac")))
}

func TestImportVerify(t *testing.T) {
	album, repo := albumTree(t)

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Mode:       transfer.Copy,
		Recursive:  true,
		AudioOnly:  true,
		Verify:     true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(2), res.Stats.FilesVerified)
	assert.Zero(t, res.Stats.FilesVerifyFailed)
}

func TestImportVerifySkipsSymlinks(t *testing.T) {
	album, repo := albumTree(t)

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{filepath.Join(album, "01.flac")},
		Repository: repo,
		Mode:       transfer.Symlink,
		Verify:     true,
	})
	require.NoError(t, res.Err)
	assert.Zero(t, res.Stats.FilesVerified)

	target, err := os.Readlink(filepath.Join(repo, "01.flac"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(album, "01.flac"), target)
}

func TestImportContinuesAfterFailure(t *testing.T) {
	album, repo := albumTree(t)
	missing := filepath.Join(album, "absent.flac")

	res, evs := runImport(t, context.Background(), Config{
		Targets:    []string{missing, filepath.Join(album, "01.flac")},
		Repository: repo,
	})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, fserr.ErrPathNotFound)
	assert.Equal(t, int64(1), res.Stats.FilesFailed)
	assert.Equal(t, int64(1), res.Stats.FilesTransferred)

	failed := eventsOf(evs, event.FileFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, missing, failed[0].Src)
}

func TestImportStrictWalkReportsUnreadableDirs(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	album, repo := albumTree(t)
	locked := filepath.Join(album, "locked")
	writeFile(t, filepath.Join(locked, "x.flac"), "x")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res, _ := runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo,
		Recursive:  true,
	})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, fserr.ErrWalkDir)
	assert.Equal(t, int64(1), res.Stats.FilesFailed)
	assert.Equal(t, int64(3), res.Stats.FilesTransferred)

	// Lenient walking drops the unreadable directory silently.
	repo2 := filepath.Join(filepath.Dir(repo), "repo2")
	require.NoError(t, os.Mkdir(repo2, 0o755))
	res, _ = runImport(t, context.Background(), Config{
		Targets:    []string{album},
		Repository: repo2,
		Recursive:  true,
		AudioOnly:  true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(2), res.Stats.FilesTransferred)
}

func TestImportCancelled(t *testing.T) {
	album, repo := albumTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, _ := runImport(t, ctx, Config{
		Targets:    []string{album},
		Repository: repo,
		Recursive:  true,
	})
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, res.Stats.FilesTransferred)
}

func TestImportUsesGivenCollector(t *testing.T) {
	album, repo := albumTree(t)
	collector := stats.NewCollector()

	res := Run(context.Background(), Config{
		Targets:    []string{filepath.Join(album, "01.flac")},
		Repository: repo,
		Stats:      collector,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), collector.Snapshot().FilesTransferred)
}

func TestNewRejectsBadConfig(t *testing.T) {
	album, repo := albumTree(t)
	file := filepath.Join(album, "01.flac")

	_, err := New(Config{Repository: repo})
	assert.Error(t, err)

	_, err = New(Config{Targets: []string{file}, Repository: repo, Mode: transfer.Mode(9)})
	assert.Error(t, err)

	_, err = New(Config{Targets: []string{file}})
	assert.Error(t, err)

	_, err = New(Config{Targets: []string{file}, Repository: filepath.Join(repo, "nope")})
	assert.ErrorIs(t, err, fserr.ErrPathNotFound)

	_, err = New(Config{Targets: []string{file}, Repository: file})
	assert.ErrorIs(t, err, fserr.ErrNotADirectory)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.flac")
	b := filepath.Join(dir, "b.flac")
	c := filepath.Join(dir, "c.flac")
	writeFile(t, a, "same audio")
	writeFile(t, b, "same audio")
	writeFile(t, c, "other audio")

	ha, err := HashFile(a)
	require.NoError(t, err)
	assert.Len(t, ha, 64)

	hb, err := HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	hc, err := HashFile(c)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)

	_, err = HashFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestVerifyDestinationMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.flac")
	dst := filepath.Join(dir, "dst.flac")
	writeFile(t, src, "original")
	writeFile(t, dst, "corrupted")

	srcHash, err := HashFile(src)
	require.NoError(t, err)

	err = verifyDestination(dst, srcHash)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, dst, mismatch.Path)
	assert.Equal(t, srcHash, mismatch.SrcHash)
	assert.Contains(t, err.Error(), "checksum mismatch")

	require.NoError(t, os.WriteFile(dst, []byte("original"), 0o644))
	assert.NoError(t, verifyDestination(dst, srcHash))
}
