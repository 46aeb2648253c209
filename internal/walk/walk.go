// Package walk enumerates the regular files below a directory.
//
// Traversal is depth-first in the order the operating system returns
// directory entries. That order is not sorted and may differ between runs
// on some filesystems, so callers should not depend on it.
//
// Sequences are lazy: each step may block on a readdir call, and breaking
// out of a range loop stops the walk. Calling a sequence again walks the
// tree again from the start.
package walk

import (
	"errors"
	"iter"
	"os"
	"path/filepath"

	"github.com/bamsammich/flacman/internal/fserr"
)

// Walk returns a strict sequence over every regular file below root.
// Directories, symlinks and special files are not yielded, and symlinks are
// not followed. A directory that cannot be read produces a WalkDirError
// element (with an empty path) at that position; the rest of the tree is
// still walked.
//
// Walk fails up front with PathNotFound if root does not exist and with
// NotADirectory if root is not a directory.
func Walk(root string) (iter.Seq2[string, error], error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	return func(yield func(string, error) bool) {
		walkDir(root, yield)
	}, nil
}

// WalkLenient is Walk with errored entries dropped.
func WalkLenient(root string) (iter.Seq[string], error) {
	strict, err := Walk(root)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		for path, err := range strict {
			if err != nil {
				continue
			}
			if !yield(path) {
				return
			}
		}
	}, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fserr.Wrap(fserr.PathNotFound, root, err)
		}
		return fserr.Wrap(fserr.Io, root, err)
	}
	if !info.IsDir() {
		return fserr.New(fserr.NotADirectory, root)
	}
	return nil
}

// walkDir reports false once the consumer has stopped pulling.
func walkDir(dir string, yield func(string, error) bool) bool {
	entries, readErr := readDir(dir)

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		typ := entry.Type()

		switch {
		case typ.IsDir():
			if !walkDir(path, yield) {
				return false
			}
		case typ.IsRegular():
			if !yield(path, nil) {
				return false
			}
		}
	}

	if readErr != nil {
		return yield("", fserr.Wrap(fserr.WalkDirError, dir, readErr))
	}
	return true
}

// readDir reads all entries of dir in enumeration order. On a partial read
// it returns the entries read so far alongside the error.
func readDir(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.ReadDir(-1)
}
