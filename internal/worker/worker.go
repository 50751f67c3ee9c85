package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	repo "github.com/renderroom/server/internal/repository/room"
)

type iRenderer interface {
	Render(ctx context.Context, blendPath, outputDir string, startFrame, endFrame int) (int, error)
}

type Config struct {
	ServerURL    string
	RoomId       string
	ClientId     string
	WorkDir      string
	PollInterval time.Duration
}

// Worker is a render client: it joins a room, waits for rendering to start,
// then drains the tasks assigned to its client id one at a time.
type Worker struct {
	api      *apiClient
	renderer iRenderer
	cfg      *Config
	logger   *slog.Logger
}

func New(cfg *Config, renderer iRenderer, logger *slog.Logger) *Worker {
	return &Worker{
		api:      newAPIClient(cfg.ServerURL),
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.api.JoinRoom(ctx, w.cfg.RoomId, w.cfg.ClientId); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "joined room", "room_id", w.cfg.RoomId, "client_id", w.cfg.ClientId)

	if err := w.waitForRendering(ctx); err != nil {
		return err
	}

	for {
		task, err := w.api.GetNextTask(ctx, w.cfg.RoomId, w.cfg.ClientId)
		if err != nil {
			return err
		}
		if task == nil {
			w.logger.InfoContext(ctx, "no tasks left", "room_id", w.cfg.RoomId)
			return nil
		}

		if err := w.processTask(ctx, task); err != nil {
			w.logger.ErrorContext(ctx, "task failed", "task_id", task.Id, "error", err)
			if err := w.api.UpdateTask(ctx, w.cfg.RoomId, task.Id, repo.TaskStatusFailed, w.cfg.ClientId); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) waitForRendering(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := w.api.GetRoomStatus(ctx, w.cfg.RoomId)
		if err != nil {
			return err
		}
		if status.Status == repo.StatusRendering {
			return nil
		}

		w.logger.DebugContext(ctx, "waiting for rendering", "status", status.Status)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) processTask(ctx context.Context, task *repo.Task) error {
	w.logger.InfoContext(ctx, "processing task",
		"task_id", task.Id,
		"file_name", task.FileName,
		"start_frame", task.StartFrame,
		"end_frame", task.EndFrame,
	)

	if err := w.api.UpdateTask(ctx, w.cfg.RoomId, task.Id, repo.TaskStatusRendering, w.cfg.ClientId); err != nil {
		return err
	}

	blendPath, err := w.api.DownloadBlendFile(ctx, w.cfg.RoomId, task.FileName,
		filepath.Join(w.cfg.WorkDir, w.cfg.RoomId, "queue"))
	if err != nil {
		return err
	}

	outputDir := filepath.Join(w.cfg.WorkDir, w.cfg.RoomId, "results", task.Id)
	highest, err := w.renderer.Render(ctx, blendPath, outputDir, task.StartFrame, task.EndFrame)
	if err != nil {
		return err
	}

	lastDone := highest
	if lastDone > task.EndFrame {
		lastDone = task.EndFrame
	}
	for frame := task.StartFrame; frame <= lastDone; frame++ {
		if err := w.api.AppendFrameLog(ctx, w.cfg.RoomId, repo.FrameLogEntry{
			Frame:     frame,
			TaskId:    task.Id,
			Client:    w.cfg.ClientId,
			BlendFile: task.FileName,
		}); err != nil {
			w.logger.WarnContext(ctx, "failed to append frame log", "frame", frame, "error", err)
		}
	}

	// a task only counts as done when every frame of its range was produced
	if lastDone < task.EndFrame {
		return fmt.Errorf("rendered through frame %d, want %d", lastDone, task.EndFrame)
	}

	if err := w.uploadResults(ctx, task.Id, outputDir); err != nil {
		return err
	}

	return w.api.UpdateTask(ctx, w.cfg.RoomId, task.Id, repo.TaskStatusDone, w.cfg.ClientId)
}

func (w *Worker) uploadResults(ctx context.Context, taskId, outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if err := w.api.UploadResult(ctx, w.cfg.RoomId, taskId, filepath.Join(outputDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}
