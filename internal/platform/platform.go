// Package platform holds the OS-specific primitives behind file transfers:
// kernel-assisted content copies and classification of rename failures.
package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	Reflink                  // Linux FICLONE ioctl
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
	Clonefile                // macOS clonefile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case Reflink:
		return "reflink"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case Clonefile:
		return "clonefile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes a whole-file copy between two open files.
// DstFd must be empty and opened for writing.
type CopyFileParams struct {
	SrcFd *os.File
	DstFd *os.File
	Size  int64
}

// ErrCloneUnsupported is returned by CloneFile where the platform or
// filesystem cannot clone.
var ErrCloneUnsupported = errors.ErrUnsupported

// IsCrossDevice reports whether err was caused by an operation spanning
// two filesystems (EXDEV), as returned by rename(2) or link(2).
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}

// IsReadOnly reports whether mode grants no write permission to anyone.
func IsReadOnly(mode os.FileMode) bool {
	return mode.Perm()&0o222 == 0
}
