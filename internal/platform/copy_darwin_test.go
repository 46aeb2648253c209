//go:build darwin

package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneFileFollowsSourceSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "track.flac")
	link := filepath.Join(dir, "link.flac")
	dst := filepath.Join(dir, "clone.flac")
	require.NoError(t, os.WriteFile(target, []byte("audio data"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	err := CloneFile(link, dst)
	if errors.Is(err, ErrCloneUnsupported) {
		t.Skip("filesystem cannot clone")
	}
	require.NoError(t, err)

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "clone should be a regular file, got %v", info.Mode())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "audio data", string(data))
}
