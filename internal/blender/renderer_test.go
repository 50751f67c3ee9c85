package blender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighestRenderedFrame(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"frame_0001.png",
		"frame_0010.png",
		"frame_0003.png",
		"frame_abcd.png", // unparsable frame number
		"notes.txt",      // unrelated file
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	highest, err := highestRenderedFrame(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, highest)
}

func TestHighestRenderedFrameEmptyDir(t *testing.T) {
	highest, err := highestRenderedFrame(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, -1, highest)
}
