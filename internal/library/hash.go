package library

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MismatchError reports a destination whose content differs from the
// source it was made from.
type MismatchError struct {
	Path    string
	SrcHash string
	DstHash string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: %s: source %.12s destination %.12s", e.Path, e.SrcHash, e.DstHash)
}

// verifyDestination hashes dst and compares it with srcHash.
func verifyDestination(dst, srcHash string) error {
	dstHash, err := HashFile(dst)
	if err != nil {
		return err
	}
	if dstHash != srcHash {
		return &MismatchError{Path: dst, SrcHash: srcHash, DstHash: dstHash}
	}
	return nil
}
