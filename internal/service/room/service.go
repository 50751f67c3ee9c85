package room

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/renderroom/server/internal/repository/connection"
	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/pkg/randstr"
)

var (
	ErrRoomNotWaiting    = errors.New("room is not in waiting status")
	ErrRoomNotTriggered  = errors.New("room is not in triggered status")
	ErrRoomNotRendering  = errors.New("room is not in rendering status")
	ErrMemberNotFound    = errors.New("member not found")
	ErrBlendFileNotFound = errors.New("blend file not found")
)

const roomIdLength = 6

type iRoomRepo interface {
	SetRoom(context.Context, *repo.Room) error
	GetRoom(ctx context.Context, roomId string) (repo.Room, error)
	UpdateRoom(ctx context.Context, roomId string, update func(rm *repo.Room) error) error
	UpdateRoomWithTasks(ctx context.Context, roomId string, update func(rm *repo.Room) ([]repo.Task, error)) error
	GetTasks(ctx context.Context, roomId string) ([]repo.Task, error)
	UpdateTask(context.Context, *repo.UpdateTaskParams) (repo.Task, error)
	AppendFrameLog(context.Context, *repo.AppendFrameLogParams) error
	GetFrameLog(ctx context.Context, roomId string) ([]repo.FrameLogEntry, error)
}

type iFileRepo interface {
	InitRoom(ctx context.Context, roomId string) error
	SaveBlendFile(ctx context.Context, roomId, name string, src io.Reader) error
	ListBlendFiles(ctx context.Context, roomId string) ([]string, error)
	OpenBlendFile(ctx context.Context, roomId, name string) (io.ReadCloser, error)
	RemoveBlendFile(ctx context.Context, roomId, name string) error
	BlendFilePath(roomId, name string) string
	SaveResult(ctx context.Context, roomId, taskId, name string, src io.Reader) error
	PromoteTaskResults(ctx context.Context, roomId, taskId string) error
	ListFinalFiles(ctx context.Context, roomId string) ([]string, error)
	OpenFinalFile(ctx context.Context, roomId, name string) (io.ReadCloser, error)
}

type iConnRepo interface {
	Add(conn *connection.Conn, roomId string) error
	RemoveByConn(conn *connection.Conn) error
	GetConns(roomId string) []*connection.Conn
}

type iInspector interface {
	Inspect(ctx context.Context, blendPath string) (repo.RenderSettings, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type service struct {
	roomRepo  iRoomRepo
	fileRepo  iFileRepo
	connRepo  iConnRepo
	inspector iInspector
	generator iGenerator
	logger    *slog.Logger
}

func NewService(roomRepo iRoomRepo, fileRepo iFileRepo, connRepo iConnRepo, inspector iInspector, logger *slog.Logger) *service {
	s := service{
		roomRepo:  roomRepo,
		fileRepo:  fileRepo,
		connRepo:  connRepo,
		inspector: inspector,
		logger:    logger,
	}

	s.generator = randstr.New([]byte("0123456789"))

	return &s
}
