package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/renderroom/server/internal/repository/room"
)

// GetTasks returns the room's task list in creation order. A room with no
// task list yet yields an empty slice, not an error.
func (r repo) GetTasks(ctx context.Context, roomId string) ([]room.Task, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	data, err := r.rc.Get(ctx, r.getTasksKey(roomId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []room.Task{}, nil
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	var tasks []room.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateTask overwrites status and client of the matching task. The write is
// last-write-wins: there is no check that params.Client currently owns the
// task.
func (r repo) UpdateTask(ctx context.Context, params *room.UpdateTaskParams) (room.Task, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	key := r.getTasksKey(params.RoomId)
	var updated room.Task
	err := r.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return room.ErrTaskNotFound
			}

			return err
		}

		var tasks []room.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return err
		}

		found := false
		for i := range tasks {
			if tasks[i].Id == params.TaskId {
				tasks[i].Status = params.Status
				tasks[i].Client = params.Client
				updated = tasks[i]
				found = true
				break
			}
		}
		if !found {
			return room.ErrTaskNotFound
		}

		newData, err := json.Marshal(tasks)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Task{}, err
	}

	return updated, nil
}
