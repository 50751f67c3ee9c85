package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/rest"
)

func (c controller) getTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.roomService.GetTasks(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": tasks})
}

func (c controller) getNextTask(w http.ResponseWriter, r *http.Request) {
	clientId := r.URL.Query().Get("client_id")
	if clientId == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "client_id is required"})
		return
	}

	task, err := c.roomService.GetNextTask(r.Context(), &room.GetNextTaskParams{
		RoomId:   chi.URLParam(r, "room-id"),
		ClientId: clientId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": task})
}

type updateTaskRequest struct {
	Status   string `json:"status" validate:"required,oneof=triggered rendering done failed"`
	ClientId string `json:"client_id" validate:"required,max=64"`
}

func (c controller) updateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.UpdateTask(r.Context(), &room.UpdateTaskParams{
		RoomId:   chi.URLParam(r, "room-id"),
		TaskId:   chi.URLParam(r, "task-id"),
		Status:   repo.TaskStatus(req.Status),
		ClientId: req.ClientId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "TASK_UPDATED",
		Payload: resp.Task,
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp.Task})
}

func (c controller) uploadTaskResult(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "no file part"})
		return
	}
	defer file.Close()

	if err := c.roomService.SaveTaskResult(r.Context(), &room.SaveTaskResultParams{
		RoomId:   chi.URLParam(r, "room-id"),
		TaskId:   chi.URLParam(r, "task-id"),
		FileName: header.Filename,
		Src:      file,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "result file uploaded"})
}
