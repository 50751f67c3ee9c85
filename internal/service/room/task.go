package room

import (
	"context"
	"fmt"
	"io"

	"github.com/renderroom/server/internal/repository/connection"
	repo "github.com/renderroom/server/internal/repository/room"
)

type TriggerRenderingResponse struct {
	Tasks []repo.Task
	Conns []*connection.Conn
}

// TriggerRendering advances the room from waiting to triggered and persists
// the task list partitioned from the room's current members and files. The
// partition runs inside the room transaction and the task list is written in
// that same transaction, so a concurrent join or file upload either lands
// before the trigger or fails its waiting guard, and a triggered room always
// has its task list.
func (s service) TriggerRendering(ctx context.Context, roomId string) (TriggerRenderingResponse, error) {
	var tasks []repo.Task
	err := s.roomRepo.UpdateRoomWithTasks(ctx, roomId, func(rm *repo.Room) ([]repo.Task, error) {
		if rm.Status != repo.StatusWaiting {
			return nil, fmt.Errorf("%w, current status: %s", ErrRoomNotWaiting, rm.Status)
		}

		rm.Status = repo.StatusTriggered
		tasks = partitionTasks(rm.Id, rm.Members, rm.BlenderFiles)

		return tasks, nil
	})
	if err != nil {
		return TriggerRenderingResponse{}, err
	}

	s.logger.InfoContext(ctx, "rendering triggered", "room_id", roomId, "tasks", len(tasks))

	return TriggerRenderingResponse{
		Tasks: tasks,
		Conns: s.connRepo.GetConns(roomId),
	}, nil
}

func (s service) GetTasks(ctx context.Context, roomId string) ([]repo.Task, error) {
	return s.roomRepo.GetTasks(ctx, roomId)
}

type GetNextTaskParams struct {
	RoomId   string
	ClientId string
}

// GetNextTask returns the first task assigned to the client that nobody has
// started yet, or nil when there is none. This is a read-only filter over
// the task list, not a claim: two processes sharing a client id can both see
// the same task.
func (s service) GetNextTask(ctx context.Context, params *GetNextTaskParams) (*repo.Task, error) {
	tasks, err := s.roomRepo.GetTasks(ctx, params.RoomId)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].Status == repo.TaskStatusTriggered && tasks[i].Client == params.ClientId {
			return &tasks[i], nil
		}
	}

	return nil, nil
}

type UpdateTaskParams struct {
	RoomId   string
	TaskId   string
	Status   repo.TaskStatus
	ClientId string
}

type UpdateTaskResponse struct {
	Task  repo.Task
	Conns []*connection.Conn
}

// UpdateTask overwrites the task's status and client. When the new status is
// done, every file staged under the task's result area is promoted to the
// room's final area; promotion is idempotent so callers may retry freely.
func (s service) UpdateTask(ctx context.Context, params *UpdateTaskParams) (UpdateTaskResponse, error) {
	task, err := s.roomRepo.UpdateTask(ctx, &repo.UpdateTaskParams{
		RoomId: params.RoomId,
		TaskId: params.TaskId,
		Status: params.Status,
		Client: params.ClientId,
	})
	if err != nil {
		return UpdateTaskResponse{}, err
	}

	if params.Status == repo.TaskStatusDone {
		if err := s.fileRepo.PromoteTaskResults(ctx, params.RoomId, params.TaskId); err != nil {
			return UpdateTaskResponse{}, fmt.Errorf("failed to promote task results: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "task updated",
		"room_id", params.RoomId,
		"task_id", params.TaskId,
		"status", params.Status,
		"client_id", params.ClientId,
	)

	return UpdateTaskResponse{
		Task:  task,
		Conns: s.connRepo.GetConns(params.RoomId),
	}, nil
}

type SaveTaskResultParams struct {
	RoomId   string
	TaskId   string
	FileName string
	Src      io.Reader
}

// SaveTaskResult stores an uploaded output file in the task's staging area.
func (s service) SaveTaskResult(ctx context.Context, params *SaveTaskResultParams) error {
	return s.fileRepo.SaveResult(ctx, params.RoomId, params.TaskId, params.FileName, params.Src)
}
