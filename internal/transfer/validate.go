package transfer

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bamsammich/flacman/internal/fserr"
	"github.com/bamsammich/flacman/internal/platform"
)

// preflight runs the checks shared by every mode. Nothing is mutated.
// It reports whether the destination currently exists, in which case
// overwrite was requested and the destination is writable.
func preflight(src, dst string, overwrite bool) (bool, error) {
	if err := validateSource(src); err != nil {
		return false, err
	}

	dstInfo, err := validateDestination(src, dst, overwrite)
	if err != nil {
		return false, err
	}
	if dstInfo == nil {
		return false, nil
	}

	if err := validateWritable(dst, dstInfo); err != nil {
		return false, err
	}
	return true, nil
}

func validateSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fserr.Wrap(fserr.PathNotFound, src, err)
		}
		return fserr.Wrap(fserr.Io, src, err)
	}
	if info.IsDir() {
		return fserr.New(fserr.NotAFile, src)
	}
	return nil
}

// validateDestination returns the destination's Lstat info when it exists.
func validateDestination(src, dst string, overwrite bool) (os.FileInfo, error) {
	if sameEntity(src, dst) {
		return nil, fserr.New(fserr.SameFile, dst)
	}

	parent := filepath.Dir(dst)
	parentInfo, err := os.Stat(parent)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fserr.Wrap(fserr.PathNotFound, parent, err)
		}
		return nil, fserr.Wrap(fserr.Io, parent, err)
	}
	if !parentInfo.IsDir() {
		return nil, fserr.New(fserr.NotADirectory, parent)
	}

	// Lstat so a dangling symlink at dst still counts as occupied.
	info, err := os.Lstat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fserr.Wrap(fserr.Io, dst, err)
	}
	if !overwrite {
		return nil, fserr.New(fserr.FileAlreadyExists, dst)
	}
	if info.IsDir() {
		return nil, fserr.New(fserr.NotAFile, dst)
	}
	return info, nil
}

func validateWritable(dst string, lstatInfo os.FileInfo) error {
	mode := lstatInfo.Mode()
	if mode&os.ModeSymlink != 0 {
		// Judge a link by what it points at; a dangling link is replaceable.
		if info, err := os.Stat(dst); err == nil {
			mode = info.Mode()
		}
	}
	if mode&os.ModeSymlink == 0 && platform.IsReadOnly(mode) {
		return fserr.New(fserr.PermissionError, dst)
	}
	return nil
}

// sameEntity reports whether src and dst designate the same file: equal
// canonical paths, or the same device and inode. Paths that cannot be
// resolved are never the same.
func sameEntity(src, dst string) bool {
	a, err := canonical(src)
	if err != nil {
		return false
	}
	b, err := canonical(dst)
	if err != nil {
		return false
	}
	if a == b {
		return true
	}

	srcInfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}

func canonical(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// removeExisting clears the destination right before the mutation.
func removeExisting(dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fserr.Wrap(fserr.Io, dst, err)
	}
	return nil
}
