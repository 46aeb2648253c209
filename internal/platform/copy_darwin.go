//go:build darwin

package platform

import (
	"golang.org/x/sys/unix"
)

// CopyFile copies with pread/pwrite on macOS. Copy-on-write clones go
// through CloneFile, which needs the destination path to not exist yet.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	if params.Size == 0 {
		return CopyResult{Method: ReadWrite}, nil
	}
	preallocate(params.DstFd, params.Size)
	return copyReadWrite(params)
}

// CloneFile creates dst as an APFS clone of src. A symlinked src is
// followed, so dst always holds the content. It returns
// ErrCloneUnsupported when the filesystem cannot clone.
func CloneFile(src, dst string) error {
	err := unix.Clonefile(src, dst, 0)
	if err == nil {
		return nil
	}
	switch err {
	case unix.ENOTSUP, unix.EXDEV:
		return ErrCloneUnsupported
	}
	return err
}
