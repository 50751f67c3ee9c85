package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderroom/server/internal/controller"
	"github.com/renderroom/server/internal/repository/connection/inmemory"
	"github.com/renderroom/server/internal/repository/files"
	repo "github.com/renderroom/server/internal/repository/room"
	roomRedis "github.com/renderroom/server/internal/repository/room/redis"
	"github.com/renderroom/server/internal/service/room"
)

type fakeInspector struct{}

func (fakeInspector) Inspect(context.Context, string) (repo.RenderSettings, error) {
	return repo.RenderSettings{StartFrame: 1, EndFrame: 20, FileFormat: "PNG", Renderer: "CYCLES"}, nil
}

// fakeRenderer writes one output file per frame up to lastFrame, like a
// render that was cut off there. lastFrame 0 means the full range.
type fakeRenderer struct {
	lastFrame int
}

func (r fakeRenderer) Render(_ context.Context, _ string, outputDir string, startFrame, endFrame int) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, err
	}

	last := endFrame
	if r.lastFrame != 0 && r.lastFrame < last {
		last = r.lastFrame
	}

	for frame := startFrame; frame <= last; frame++ {
		name := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", frame))
		if err := os.WriteFile(name, []byte("png-bytes"), 0o644); err != nil {
			return 0, err
		}
	}

	return last, nil
}

type roomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (repo.Room, error)
	AddBlendFile(context.Context, *room.AddBlendFileParams) (room.AddBlendFileResponse, error)
	TriggerRendering(ctx context.Context, roomId string) (room.TriggerRenderingResponse, error)
	StartRendering(ctx context.Context, roomId string) (room.StartRenderingResponse, error)
	GetTasks(ctx context.Context, roomId string) ([]repo.Task, error)
	ListFinalFiles(ctx context.Context, roomId string) ([]string, error)
	GetFrameLog(ctx context.Context, roomId string) ([]repo.FrameLogEntry, error)
}

// startTestRoom spins up a full coordinator and runs the worker against it:
// room 123456 with members admin and worker_1 and a 20-frame blend file, so
// the worker owns the single task covering frames 11-20.
func startTestRoom(t *testing.T, renderer iRenderer) (roomService, chan error) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	roomRepo := roomRedis.NewRepo(rc, slog.Default())
	fileRepo := files.NewRepo(afero.NewMemMapFs(), "rooms", slog.Default())
	roomService := room.NewService(roomRepo, fileRepo, inmemory.NewRepo(), fakeInspector{}, slog.Default())

	srv := httptest.NewServer(controller.NewController(roomService, slog.Default()).GetMux())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	_, err := roomService.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "123456", ClientId: "admin"})
	require.NoError(t, err)

	w := New(&Config{
		ServerURL:    srv.URL,
		RoomId:       "123456",
		ClientId:     "worker_1",
		WorkDir:      t.TempDir(),
		PollInterval: 10 * time.Millisecond,
	}, renderer, slog.Default())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	// wait until the worker has joined
	require.Eventually(t, func() bool {
		rm, err := roomService.GetRoom(ctx, "123456")
		return err == nil && len(rm.Members) == 2
	}, 5*time.Second, 10*time.Millisecond)

	// 20 frames over 2 members: tasks 1-10 for admin, 11-20 for worker_1
	_, err = roomService.AddBlendFile(ctx, &room.AddBlendFileParams{
		RoomId:   "123456",
		FileName: "scene.blend",
		Src:      strings.NewReader("BLENDER-v404"),
	})
	require.NoError(t, err)

	triggerResp, err := roomService.TriggerRendering(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, triggerResp.Tasks, 2)

	_, err = roomService.StartRendering(ctx, "123456")
	require.NoError(t, err)

	return roomService, done
}

func taskByClient(t *testing.T, tasks []repo.Task, clientId string) repo.Task {
	t.Helper()

	for _, task := range tasks {
		if task.Client == clientId {
			return task
		}
	}

	t.Fatalf("no task for client %s", clientId)
	return repo.Task{}
}

func TestWorkerDrainsAssignedTasks(t *testing.T) {
	roomService, done := startTestRoom(t, fakeRenderer{})
	ctx := context.Background()

	require.NoError(t, <-done, "worker run must finish cleanly")

	tasks, err := roomService.GetTasks(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, repo.TaskStatusDone, taskByClient(t, tasks, "worker_1").Status)
	assert.Equal(t, repo.TaskStatusTriggered, taskByClient(t, tasks, "admin").Status, "admin task must be untouched")

	// the worker's frames 11..20 were uploaded and promoted
	finals, err := roomService.ListFinalFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Len(t, finals, 10)
	assert.Contains(t, finals, "frame_0011.png")
	assert.Contains(t, finals, "frame_0020.png")

	// every rendered frame was logged against the worker's task
	entries, err := roomService.GetFrameLog(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, 11, entries[0].Frame)
	assert.Equal(t, "123456_scene.blend_11", entries[0].TaskId)
	assert.Equal(t, "worker_1", entries[0].Client)
}

func TestWorkerReportsShortRenderAsFailed(t *testing.T) {
	// the render stops at frame 15 of the 11-20 range without an error
	roomService, done := startTestRoom(t, fakeRenderer{lastFrame: 15})
	ctx := context.Background()

	require.NoError(t, <-done, "worker run must finish cleanly")

	tasks, err := roomService.GetTasks(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, repo.TaskStatusFailed, taskByClient(t, tasks, "worker_1").Status,
		"a task missing frames must not be reported done")

	// nothing was promoted for the incomplete task
	finals, err := roomService.ListFinalFiles(ctx, "123456")
	require.NoError(t, err)
	assert.Empty(t, finals)

	// the frames that did render stay logged
	entries, err := roomService.GetFrameLog(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, 11, entries[0].Frame)
	assert.Equal(t, 15, entries[4].Frame)
}
