package redis

import (
	"context"
	"encoding/json"

	"github.com/renderroom/server/internal/repository/room"
)

// AppendFrameLog pushes the entry onto the room's frame log. The log is a
// redis list, so append order is preserved and entries are never rewritten.
func (r repo) AppendFrameLog(ctx context.Context, params *room.AppendFrameLogParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	data, err := json.Marshal(params.Entry)
	if err != nil {
		return err
	}

	if err := r.rc.RPush(ctx, r.getFrameLogKey(params.RoomId), data).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetFrameLog(ctx context.Context, roomId string) ([]room.FrameLogEntry, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_id": roomId,
	})

	items, err := r.rc.LRange(ctx, r.getFrameLogKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	entries := make([]room.FrameLogEntry, 0, len(items))
	for _, item := range items {
		var entry room.FrameLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
