package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/rest"
)

type appendFrameLogRequest struct {
	Frame     int    `json:"frame" validate:"required,min=1"`
	TaskId    string `json:"task_id" validate:"required"`
	ClientId  string `json:"client_id" validate:"required"`
	BlendFile string `json:"blend_file" validate:"required"`
}

func (c controller) appendFrameLog(w http.ResponseWriter, r *http.Request) {
	var req appendFrameLogRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.roomService.AppendFrameLog(r.Context(), &room.AppendFrameLogParams{
		RoomId: chi.URLParam(r, "room-id"),
		Entry: repo.FrameLogEntry{
			Frame:     req.Frame,
			TaskId:    req.TaskId,
			Client:    req.ClientId,
			BlendFile: req.BlendFile,
		},
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "frame logged"})
}

func (c controller) getFrameLog(w http.ResponseWriter, r *http.Request) {
	entries, err := c.roomService.GetFrameLog(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": entries})
}
