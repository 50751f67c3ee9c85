package files

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	return NewRepo(afero.NewMemMapFs(), "rooms", slog.Default())
}

func TestBlendFileRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.InitRoom(ctx, "123456"))
	require.NoError(t, r.SaveBlendFile(ctx, "123456", "scene.blend", strings.NewReader("BLENDER-v404")))

	names, err := r.ListBlendFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"scene.blend"}, names)

	f, err := r.OpenBlendFile(ctx, "123456", "scene.blend")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "BLENDER-v404", string(data))
}

func TestSaveBlendFileStripsPath(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SaveBlendFile(ctx, "123456", "../../../etc/scene.blend", strings.NewReader("x")))

	names, err := r.ListBlendFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"scene.blend"}, names)
}

func TestOpenBlendFileNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.OpenBlendFile(context.Background(), "123456", "missing.blend")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRemoveBlendFile(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SaveBlendFile(ctx, "123456", "scene.blend", strings.NewReader("x")))
	require.NoError(t, r.RemoveBlendFile(ctx, "123456", "scene.blend"))

	names, err := r.ListBlendFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Empty(t, names)

	err = r.RemoveBlendFile(ctx, "123456", "scene.blend")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestListOnMissingRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	names, err := r.ListBlendFiles(ctx, "000000")
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = r.ListFinalFiles(ctx, "000000")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPromoteTaskResults(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	taskId := "123456_scene.blend_1"

	require.NoError(t, r.SaveResult(ctx, "123456", taskId, "frame_0001.png", strings.NewReader("a")))
	require.NoError(t, r.SaveResult(ctx, "123456", taskId, "frame_0002.png", strings.NewReader("b")))

	require.NoError(t, r.PromoteTaskResults(ctx, "123456", taskId))

	names, err := r.ListFinalFiles(ctx, "123456")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"frame_0001.png", "frame_0002.png"}, names)

	f, err := r.OpenFinalFile(ctx, "123456", "frame_0002.png")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestPromoteTaskResultsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	taskId := "123456_scene.blend_1"

	require.NoError(t, r.SaveResult(ctx, "123456", taskId, "frame_0001.png", strings.NewReader("a")))
	require.NoError(t, r.PromoteTaskResults(ctx, "123456", taskId))

	// second promotion finds no staging dir and must succeed without effect
	require.NoError(t, r.PromoteTaskResults(ctx, "123456", taskId))

	names, err := r.ListFinalFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"frame_0001.png"}, names)
}

func TestPromoteTaskResultsMergesTasks(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SaveResult(ctx, "123456", "123456_scene.blend_1", "frame_0001.png", strings.NewReader("a")))
	require.NoError(t, r.SaveResult(ctx, "123456", "123456_scene.blend_11", "frame_0011.png", strings.NewReader("b")))

	require.NoError(t, r.PromoteTaskResults(ctx, "123456", "123456_scene.blend_1"))
	require.NoError(t, r.PromoteTaskResults(ctx, "123456", "123456_scene.blend_11"))

	names, err := r.ListFinalFiles(ctx, "123456")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"frame_0001.png", "frame_0011.png"}, names)
}
