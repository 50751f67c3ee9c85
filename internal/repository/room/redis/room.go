package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/renderroom/server/internal/repository/room"
)

func (r repo) SetRoom(ctx context.Context, rm *room.Room) error {
	r.logger.DebugContext(ctx, "called", "params", rm)

	data, err := json.Marshal(rm)
	if err != nil {
		return err
	}

	ok, err := r.rc.SetNX(ctx, r.getRoomKey(rm.Id), data, 0).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	data, err := r.rc.Get(ctx, r.getRoomKey(roomId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
			return room.Room{}, room.ErrRoomNotFound
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	var rm room.Room
	if err := json.Unmarshal(data, &rm); err != nil {
		return room.Room{}, err
	}

	return rm, nil
}

// UpdateRoom applies update to the stored room record inside an optimistic
// transaction. The whole record is rewritten in one SET, so concurrent
// readers never observe a partial write. An error returned by update aborts
// the transaction and is propagated unchanged.
func (r repo) UpdateRoom(ctx context.Context, roomId string, update func(rm *room.Room) error) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	key := r.getRoomKey(roomId)
	err := r.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return room.ErrRoomNotFound
			}

			return err
		}

		var rm room.Room
		if err := json.Unmarshal(data, &rm); err != nil {
			return err
		}

		if err := update(&rm); err != nil {
			return err
		}

		updated, err := json.Marshal(&rm)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// UpdateRoomWithTasks is UpdateRoom with the task list the update returns
// written in the same transaction as the room record. Both keys are watched,
// so the status flip and the task list land together or not at all.
func (r repo) UpdateRoomWithTasks(ctx context.Context, roomId string, update func(rm *room.Room) ([]room.Task, error)) error {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	roomKey := r.getRoomKey(roomId)
	tasksKey := r.getTasksKey(roomId)
	err := r.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, roomKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return room.ErrRoomNotFound
			}

			return err
		}

		var rm room.Room
		if err := json.Unmarshal(data, &rm); err != nil {
			return err
		}

		tasks, err := update(&rm)
		if err != nil {
			return err
		}

		updatedRoom, err := json.Marshal(&rm)
		if err != nil {
			return err
		}

		updatedTasks, err := json.Marshal(tasks)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey, updatedRoom, 0)
			pipe.Set(ctx, tasksKey, updatedTasks, 0)
			return nil
		})
		return err
	}, roomKey, tasksKey)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
