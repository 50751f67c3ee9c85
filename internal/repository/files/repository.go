package files

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrFileNotFound = errors.New("file not found")

// repo manages the per-room file areas on an afero filesystem:
//
//	<base>/<room-id>/queue/              uploaded blend files
//	<base>/<room-id>/results/<task-id>/  staging area for task output
//	<base>/<room-id>/final/              promoted output, shared room-wide
type repo struct {
	fs     afero.Fs
	base   string
	logger *slog.Logger
}

func NewRepo(fs afero.Fs, base string, logger *slog.Logger) *repo {
	return &repo{
		fs:     fs,
		base:   base,
		logger: logger,
	}
}

func (r repo) getQueueDir(roomId string) string {
	return filepath.Join(r.base, roomId, "queue")
}

func (r repo) getStagingDir(roomId, taskId string) string {
	return filepath.Join(r.base, roomId, "results", taskId)
}

func (r repo) getFinalDir(roomId string) string {
	return filepath.Join(r.base, roomId, "final")
}

func (r repo) InitRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	for _, dir := range []string{
		r.getQueueDir(roomId),
		filepath.Join(r.base, roomId, "results"),
		r.getFinalDir(roomId),
	} {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return err
		}
	}

	return nil
}

func (r repo) save(dir, name string, src io.Reader) error {
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := r.fs.Create(filepath.Join(dir, filepath.Base(name)))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, src)
	return err
}

func (r repo) list(dir string) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}

		return nil, err
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}

	return names, nil
}

func (r repo) open(dir, name string) (io.ReadCloser, error) {
	f, err := r.fs.Open(filepath.Join(dir, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}

		return nil, err
	}

	return f, nil
}

func (r repo) SaveBlendFile(ctx context.Context, roomId, name string, src io.Reader) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
		"name":    name,
	})

	return r.save(r.getQueueDir(roomId), name, src)
}

func (r repo) ListBlendFiles(ctx context.Context, roomId string) ([]string, error) {
	return r.list(r.getQueueDir(roomId))
}

func (r repo) OpenBlendFile(ctx context.Context, roomId, name string) (io.ReadCloser, error) {
	return r.open(r.getQueueDir(roomId), name)
}

func (r repo) RemoveBlendFile(ctx context.Context, roomId, name string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
		"name":    name,
	})

	err := r.fs.Remove(filepath.Join(r.getQueueDir(roomId), filepath.Base(name)))
	if os.IsNotExist(err) {
		return ErrFileNotFound
	}

	return err
}

// BlendFilePath returns the on-disk path of an uploaded blend file, for
// handing to the asset inspector.
func (r repo) BlendFilePath(roomId, name string) string {
	return filepath.Join(r.getQueueDir(roomId), filepath.Base(name))
}

func (r repo) SaveResult(ctx context.Context, roomId, taskId, name string, src io.Reader) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
		"task_id": taskId,
		"name":    name,
	})

	return r.save(r.getStagingDir(roomId, taskId), name, src)
}

// PromoteTaskResults moves every file staged under the task's result area
// into the room's final area and removes the staging directory. Calling it
// again after the files have already moved is a no-op.
func (r repo) PromoteTaskResults(ctx context.Context, roomId, taskId string) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
		"task_id": taskId,
	})

	stagingDir := r.getStagingDir(roomId, taskId)
	infos, err := afero.ReadDir(r.fs, stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	finalDir := r.getFinalDir(roomId)
	if err := r.fs.MkdirAll(finalDir, 0o755); err != nil {
		return err
	}

	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		src := filepath.Join(stagingDir, info.Name())
		dst := filepath.Join(finalDir, info.Name())
		if err := r.fs.Rename(src, dst); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return err
		}
	}

	return r.fs.RemoveAll(stagingDir)
}

func (r repo) ListFinalFiles(ctx context.Context, roomId string) ([]string, error) {
	return r.list(r.getFinalDir(roomId))
}

func (r repo) OpenFinalFile(ctx context.Context, roomId, name string) (io.ReadCloser, error) {
	return r.open(r.getFinalDir(roomId), name)
}
