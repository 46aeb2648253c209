// Package fserr defines the closed set of failures produced by the
// traversal and transfer engines.
package fserr

import (
	"errors"
	"fmt"
)

// Kind identifies the cause of a filesystem failure.
type Kind int

const (
	Io Kind = iota + 1
	PathNotFound
	FileAlreadyExists
	SameFile
	PermissionError
	NotAFile
	NotADirectory
	WalkDirError
)

var kindNames = [...]string{
	Io:                "Io",
	PathNotFound:      "PathNotFound",
	FileAlreadyExists: "FileAlreadyExists",
	SameFile:          "SameFile",
	PermissionError:   "PermissionError",
	NotAFile:          "NotAFile",
	NotADirectory:     "NotADirectory",
	WalkDirError:      "WalkDirError",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Error is a filesystem failure tied to the path that caused it.
type Error struct {
	Kind Kind
	Path string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case Io:
		msg = "io error"
	case PathNotFound:
		msg = "path was not found"
	case FileAlreadyExists:
		msg = "file already exists"
	case SameFile:
		msg = "source and destination are the same"
	case PermissionError:
		msg = "no permission to edit file"
	case NotAFile:
		msg = "cannot operate on directory"
	case NotADirectory:
		msg = "path is not a directory"
	case WalkDirError:
		msg = "error while walking directory"
	default:
		msg = "filesystem error"
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below can be
// used with errors.Is regardless of path.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrIo                = &Error{Kind: Io}
	ErrPathNotFound      = &Error{Kind: PathNotFound}
	ErrFileAlreadyExists = &Error{Kind: FileAlreadyExists}
	ErrSameFile          = &Error{Kind: SameFile}
	ErrPermission        = &Error{Kind: PermissionError}
	ErrNotAFile          = &Error{Kind: NotAFile}
	ErrNotADirectory     = &Error{Kind: NotADirectory}
	ErrWalkDir           = &Error{Kind: WalkDirError}
)

// New returns an error of the given kind for path.
func New(kind Kind, path string) *Error {
	return &Error{Kind: kind, Path: path}
}

// Wrap returns an error of the given kind for path caused by err.
// A nil err yields nil.
func Wrap(kind Kind, path string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// IO wraps err as an Io failure on path. Errors that already carry a
// kind are returned unchanged.
func IO(path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: Io, Path: path, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// PathOf reports the offending path of the first *Error in err's chain.
func PathOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Path
	}
	return ""
}
