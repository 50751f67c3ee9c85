package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/renderroom/server/internal/repository/connection"
	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/validator"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (repo.Room, error)
	GetRoomStatus(ctx context.Context, roomId string) (room.RoomStatusResponse, error)
	AddBlendFile(context.Context, *room.AddBlendFileParams) (room.AddBlendFileResponse, error)
	RemoveBlendFile(context.Context, *room.RemoveBlendFileParams) (room.RemoveBlendFileResponse, error)
	ListBlendFiles(ctx context.Context, roomId string) ([]string, error)
	OpenBlendFile(ctx context.Context, roomId, name string) (io.ReadCloser, error)
	TriggerRendering(ctx context.Context, roomId string) (room.TriggerRenderingResponse, error)
	StartRendering(ctx context.Context, roomId string) (room.StartRenderingResponse, error)
	StopRendering(ctx context.Context, roomId string) (room.StopRenderingResponse, error)
	GetTasks(ctx context.Context, roomId string) ([]repo.Task, error)
	GetNextTask(context.Context, *room.GetNextTaskParams) (*repo.Task, error)
	UpdateTask(context.Context, *room.UpdateTaskParams) (room.UpdateTaskResponse, error)
	SaveTaskResult(context.Context, *room.SaveTaskResultParams) error
	AppendFrameLog(context.Context, *room.AppendFrameLogParams) error
	GetFrameLog(ctx context.Context, roomId string) ([]repo.FrameLogEntry, error)
	ListFinalFiles(ctx context.Context, roomId string) ([]string, error)
	OpenFinalFile(ctx context.Context, roomId, name string) (io.ReadCloser, error)
	Subscribe(*room.SubscribeParams) error
	Unsubscribe(*connection.Conn) error
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}
