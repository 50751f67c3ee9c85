package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/renderroom/server/internal/repository/room"
)

// maxTxRetries bounds optimistic retries of watched read-modify-write
// transactions before giving up.
const maxTxRetries = 10

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId + ":settings"
}

func (r repo) getTasksKey(roomId string) string {
	return "room:" + roomId + ":tasks"
}

func (r repo) getFrameLogKey(roomId string) string {
	return "room:" + roomId + ":renderlog"
}

// watch runs fn inside an optimistic transaction on keys, retrying on
// concurrent modification.
func (r repo) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.rc.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return err
	}

	return room.ErrTxRetriesExceeded
}
