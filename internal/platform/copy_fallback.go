//go:build unix && !linux && !darwin

package platform

// CopyFile falls back to read/write on unsupported platforms.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	if params.Size == 0 {
		return CopyResult{Method: ReadWrite}, nil
	}
	preallocate(params.DstFd, params.Size)
	return copyReadWrite(params)
}

// CloneFile is unsupported here.
func CloneFile(_, _ string) error {
	return ErrCloneUnsupported
}
