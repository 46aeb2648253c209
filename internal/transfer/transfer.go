// Package transfer places a single file at a destination path by copying,
// moving, symlinking or hardlinking it.
//
// Every operation validates source and destination before touching the
// filesystem, so a rejected call leaves both paths as they were. Checks
// and mutation are not atomic with respect to other processes.
package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bamsammich/flacman/internal/fserr"
	"github.com/bamsammich/flacman/internal/platform"
)

// renameFile is the rename used by Move. Tests replace it to simulate
// cross-device failures.
var renameFile = os.Rename

// Transfer dispatches to the operation selected by mode and returns the
// destination path.
func Transfer(src, dst string, mode Mode, overwrite bool) (string, error) {
	switch mode {
	case Copy:
		return CopyFile(src, dst, overwrite)
	case Move:
		return MoveFile(src, dst, overwrite)
	case Symlink:
		return SymlinkFile(src, dst, overwrite)
	case Hardlink:
		return HardlinkFile(src, dst, overwrite)
	default:
		return "", fmt.Errorf("unknown transfer mode %d", int(mode))
	}
}

// CopyFile duplicates src's content and permission bits at dst. The data
// is written to a temporary file beside dst and renamed into place, so an
// existing dst is replaced atomically and never left half-written.
func CopyFile(src, dst string, overwrite bool) (string, error) {
	if _, err := preflight(src, dst, overwrite); err != nil {
		return "", err
	}
	if err := copyContents(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// MoveFile renames src to dst. When they are on different filesystems it
// copies src to dst and then removes src; those two steps are not atomic.
func MoveFile(src, dst string, overwrite bool) (string, error) {
	exists, err := preflight(src, dst, overwrite)
	if err != nil {
		return "", err
	}
	if exists {
		if err := removeExisting(dst); err != nil {
			return "", err
		}
	}

	err = renameFile(src, dst)
	if err == nil {
		return dst, nil
	}
	if !platform.IsCrossDevice(err) {
		return "", fserr.Wrap(fserr.Io, src, err)
	}

	if err := copyContents(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", fserr.Wrap(fserr.Io, src, err)
	}
	return dst, nil
}

// SymlinkFile creates a symbolic link at dst whose target is the src path
// exactly as given. A relative src is therefore resolved from dst's
// directory when the link is followed.
func SymlinkFile(src, dst string, overwrite bool) (string, error) {
	exists, err := preflight(src, dst, overwrite)
	if err != nil {
		return "", err
	}
	if exists {
		if err := removeExisting(dst); err != nil {
			return "", err
		}
	}

	if err := os.Symlink(src, dst); err != nil {
		return "", fserr.Wrap(fserr.Io, dst, err)
	}
	return dst, nil
}

// HardlinkFile creates dst as another name for src's inode. Both paths must
// be on the same filesystem; otherwise the link fails with an Io error.
func HardlinkFile(src, dst string, overwrite bool) (string, error) {
	exists, err := preflight(src, dst, overwrite)
	if err != nil {
		return "", err
	}
	if exists {
		if err := removeExisting(dst); err != nil {
			return "", err
		}
	}

	if err := os.Link(src, dst); err != nil {
		return "", fserr.Wrap(fserr.Io, dst, err)
	}
	return dst, nil
}

// copyContents writes src into a temp file in dst's directory and renames
// it over dst. The temp file is removed on any failure.
func copyContents(src, dst string) error {
	tmpPath := tmpPathFor(dst)
	defer os.Remove(tmpPath) // no-op once renamed

	err := platform.CloneFile(src, tmpPath)
	switch {
	case err == nil:
		return commit(tmpPath, dst)
	case !errors.Is(err, platform.ErrCloneUnsupported):
		return fserr.Wrap(fserr.Io, src, err)
	}

	srcFd, err := os.Open(src)
	if err != nil {
		return fserr.Wrap(fserr.Io, src, err)
	}
	defer srcFd.Close()

	info, err := srcFd.Stat()
	if err != nil {
		return fserr.Wrap(fserr.Io, src, err)
	}

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fserr.Wrap(fserr.Io, dst, err)
	}

	if _, err := platform.CopyFile(platform.CopyFileParams{
		SrcFd: srcFd,
		DstFd: tmpFd,
		Size:  info.Size(),
	}); err != nil {
		tmpFd.Close()
		return fserr.Wrap(fserr.Io, dst, fmt.Errorf("copy from %s: %w", src, err))
	}

	// Creation mode is filtered by umask; match the source exactly.
	if err := tmpFd.Chmod(info.Mode().Perm()); err != nil {
		tmpFd.Close()
		return fserr.Wrap(fserr.Io, dst, err)
	}

	if err := tmpFd.Close(); err != nil {
		return fserr.Wrap(fserr.Io, dst, err)
	}
	return commit(tmpPath, dst)
}

func commit(tmpPath, dst string) error {
	if err := os.Rename(tmpPath, dst); err != nil {
		return fserr.Wrap(fserr.Io, dst, err)
	}
	return nil
}

func tmpPathFor(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.flacman-tmp", base, uuid.New().String()[:8]))
}
