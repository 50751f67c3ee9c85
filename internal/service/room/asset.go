package room

import (
	"context"
	"fmt"
	"io"

	"github.com/renderroom/server/internal/repository/connection"
	repo "github.com/renderroom/server/internal/repository/room"
)

type AddBlendFileParams struct {
	RoomId   string
	FileName string
	Src      io.Reader
}

type AddBlendFileResponse struct {
	File  repo.BlenderFile
	Conns []*connection.Conn
}

// AddBlendFile stores the uploaded blend file in the room's queue, inspects
// its render settings and appends it to the room record. Files can only be
// added while the room is waiting; the settings are immutable once attached.
func (s service) AddBlendFile(ctx context.Context, params *AddBlendFileParams) (AddBlendFileResponse, error) {
	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return AddBlendFileResponse{}, err
	}
	if rm.Status != repo.StatusWaiting {
		return AddBlendFileResponse{}, fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
	}

	if err := s.fileRepo.SaveBlendFile(ctx, params.RoomId, params.FileName, params.Src); err != nil {
		return AddBlendFileResponse{}, err
	}

	settings, err := s.inspector.Inspect(ctx, s.fileRepo.BlendFilePath(params.RoomId, params.FileName))
	if err != nil {
		return AddBlendFileResponse{}, err
	}

	var added repo.BlenderFile
	err = s.roomRepo.UpdateRoom(ctx, params.RoomId, func(rm *repo.Room) error {
		// re-checked inside the transaction: the room may have been
		// triggered between the upload and this write
		if rm.Status != repo.StatusWaiting {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
		}

		added = repo.BlenderFile{
			FileName:       params.FileName,
			UploadOrder:    len(rm.BlenderFiles),
			RenderSettings: settings,
		}
		rm.BlenderFiles = append(rm.BlenderFiles, added)

		return nil
	})
	if err != nil {
		return AddBlendFileResponse{}, err
	}

	s.logger.InfoContext(ctx, "blend file added",
		"room_id", params.RoomId,
		"file_name", params.FileName,
		"start_frame", settings.StartFrame,
		"end_frame", settings.EndFrame,
	)

	return AddBlendFileResponse{
		File:  added,
		Conns: s.connRepo.GetConns(params.RoomId),
	}, nil
}

type RemoveBlendFileParams struct {
	RoomId   string
	FileName string
}

type RemoveBlendFileResponse struct {
	Conns []*connection.Conn
}

// RemoveBlendFile drops the file from the room record and the queue area.
// Remaining upload orders are compacted so they stay contiguous.
func (s service) RemoveBlendFile(ctx context.Context, params *RemoveBlendFileParams) (RemoveBlendFileResponse, error) {
	err := s.roomRepo.UpdateRoom(ctx, params.RoomId, func(rm *repo.Room) error {
		if rm.Status != repo.StatusWaiting {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
		}

		for i, file := range rm.BlenderFiles {
			if file.FileName == params.FileName {
				rm.BlenderFiles = append(rm.BlenderFiles[:i], rm.BlenderFiles[i+1:]...)
				for j := range rm.BlenderFiles {
					rm.BlenderFiles[j].UploadOrder = j
				}
				return nil
			}
		}

		return ErrBlendFileNotFound
	})
	if err != nil {
		return RemoveBlendFileResponse{}, err
	}

	if err := s.fileRepo.RemoveBlendFile(ctx, params.RoomId, params.FileName); err != nil {
		s.logger.WarnContext(ctx, "failed to remove blend file from queue",
			"room_id", params.RoomId,
			"file_name", params.FileName,
			"error", err,
		)
	}

	return RemoveBlendFileResponse{Conns: s.connRepo.GetConns(params.RoomId)}, nil
}

func (s service) ListBlendFiles(ctx context.Context, roomId string) ([]string, error) {
	return s.fileRepo.ListBlendFiles(ctx, roomId)
}

func (s service) OpenBlendFile(ctx context.Context, roomId, name string) (io.ReadCloser, error) {
	return s.fileRepo.OpenBlendFile(ctx, roomId, name)
}

func (s service) ListFinalFiles(ctx context.Context, roomId string) ([]string, error) {
	return s.fileRepo.ListFinalFiles(ctx, roomId)
}

func (s service) OpenFinalFile(ctx context.Context, roomId, name string) (io.ReadCloser, error) {
	return s.fileRepo.OpenFinalFile(ctx, roomId, name)
}
