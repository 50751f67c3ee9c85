package room

import (
	"context"

	repo "github.com/renderroom/server/internal/repository/room"
)

type AppendFrameLogParams struct {
	RoomId string
	Entry  repo.FrameLogEntry
}

// AppendFrameLog records a completed frame in the room's append-only ledger.
// The log is what lets output files be regrouped by source blend file after
// tasks from different files have interleaved.
func (s service) AppendFrameLog(ctx context.Context, params *AppendFrameLogParams) error {
	return s.roomRepo.AppendFrameLog(ctx, &repo.AppendFrameLogParams{
		RoomId: params.RoomId,
		Entry:  params.Entry,
	})
}

func (s service) GetFrameLog(ctx context.Context, roomId string) ([]repo.FrameLogEntry, error) {
	return s.roomRepo.GetFrameLog(ctx, roomId)
}
