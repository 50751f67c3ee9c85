package room

import (
	"context"
	"fmt"
	"time"

	"github.com/renderroom/server/internal/repository/connection"
	repo "github.com/renderroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	RoomId   string
	ClientId string
}

type CreateRoomResponse struct {
	Room repo.Room
}

// CreateRoom creates a waiting room owned by the calling client. When no
// room id is supplied a random numeric one is generated.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomId := params.RoomId
	if roomId == "" {
		roomId = s.generator.GenerateRandomString(roomIdLength)
	}

	rm := repo.Room{
		Id:         roomId,
		CreateTime: time.Now().UTC(),
		Status:     repo.StatusWaiting,
		Members: []repo.Member{
			{Id: params.ClientId, Order: 0},
		},
		BlenderFiles: []repo.BlenderFile{},
	}

	if err := s.roomRepo.SetRoom(ctx, &rm); err != nil {
		return CreateRoomResponse{}, err
	}

	if err := s.fileRepo.InitRoom(ctx, roomId); err != nil {
		return CreateRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "room created", "room_id", roomId, "client_id", params.ClientId)

	return CreateRoomResponse{Room: rm}, nil
}

type JoinRoomParams struct {
	RoomId   string
	ClientId string
}

type JoinRoomResponse struct {
	Room  repo.Room
	Conns []*connection.Conn
}

// JoinRoom appends the client to the member list with the next order value.
// Joining is only possible while the room is waiting.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	var joined repo.Room
	err := s.roomRepo.UpdateRoom(ctx, params.RoomId, func(rm *repo.Room) error {
		if rm.Status != repo.StatusWaiting {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
		}

		maxOrder := 0
		for _, member := range rm.Members {
			if member.Order > maxOrder {
				maxOrder = member.Order
			}
		}

		rm.Members = append(rm.Members, repo.Member{
			Id:    params.ClientId,
			Order: maxOrder + 1,
		})
		joined = *rm

		return nil
	})
	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		Room:  joined,
		Conns: s.connRepo.GetConns(params.RoomId),
	}, nil
}

type LeaveRoomParams struct {
	RoomId   string
	ClientId string
}

type LeaveRoomResponse struct {
	Room  repo.Room
	Conns []*connection.Conn
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	var left repo.Room
	err := s.roomRepo.UpdateRoom(ctx, params.RoomId, func(rm *repo.Room) error {
		if rm.Status != repo.StatusWaiting {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
		}

		for i, member := range rm.Members {
			if member.Id == params.ClientId {
				rm.Members = append(rm.Members[:i], rm.Members[i+1:]...)
				left = *rm
				return nil
			}
		}

		return ErrMemberNotFound
	})
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	return LeaveRoomResponse{
		Room:  left,
		Conns: s.connRepo.GetConns(params.RoomId),
	}, nil
}

func (s service) GetRoom(ctx context.Context, roomId string) (repo.Room, error) {
	return s.roomRepo.GetRoom(ctx, roomId)
}

type RoomStatusResponse struct {
	Status       repo.Status `json:"status"`
	Members      int         `json:"members"`
	BlenderFiles int         `json:"blender_files"`
}

func (s service) GetRoomStatus(ctx context.Context, roomId string) (RoomStatusResponse, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return RoomStatusResponse{}, err
	}

	return RoomStatusResponse{
		Status:       rm.Status,
		Members:      len(rm.Members),
		BlenderFiles: len(rm.BlenderFiles),
	}, nil
}

type StartRenderingResponse struct {
	Conns []*connection.Conn
}

// StartRendering advances the room from triggered to rendering. The room
// must be exactly in triggered status; the error names the actual status so
// callers can tell a premature start from a repeated one.
func (s service) StartRendering(ctx context.Context, roomId string) (StartRenderingResponse, error) {
	err := s.roomRepo.UpdateRoom(ctx, roomId, func(rm *repo.Room) error {
		if rm.Status != repo.StatusTriggered {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotTriggered, rm.Status)
		}

		rm.Status = repo.StatusRendering
		return nil
	})
	if err != nil {
		return StartRenderingResponse{}, err
	}

	s.logger.InfoContext(ctx, "rendering started", "room_id", roomId)

	return StartRenderingResponse{Conns: s.connRepo.GetConns(roomId)}, nil
}

type StopRenderingResponse struct {
	Conns []*connection.Conn
}

// StopRendering is an administrative override that returns a rendering room
// to triggered. It is the only backwards transition and is deliberately not
// reachable from the normal client flow.
func (s service) StopRendering(ctx context.Context, roomId string) (StopRenderingResponse, error) {
	err := s.roomRepo.UpdateRoom(ctx, roomId, func(rm *repo.Room) error {
		if rm.Status != repo.StatusRendering {
			return fmt.Errorf("%w, current status: %s", ErrRoomNotRendering, rm.Status)
		}

		rm.Status = repo.StatusTriggered
		return nil
	})
	if err != nil {
		return StopRenderingResponse{}, err
	}

	s.logger.InfoContext(ctx, "rendering stopped", "room_id", roomId)

	return StopRenderingResponse{Conns: s.connRepo.GetConns(roomId)}, nil
}
