package controller

import (
	"errors"
	"net/http"

	"github.com/renderroom/server/internal/repository/files"
	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/rest"
)

// writeError maps service and repository errors onto HTTP statuses: missing
// resources to 404, duplicate room ids and lifecycle violations to 409,
// everything else to 500. The error text keeps the violated precondition and
// the current status.
func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repo.ErrRoomNotFound),
		errors.Is(err, repo.ErrTaskNotFound),
		errors.Is(err, room.ErrMemberNotFound),
		errors.Is(err, room.ErrBlendFileNotFound),
		errors.Is(err, files.ErrFileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repo.ErrRoomAlreadyExists),
		errors.Is(err, room.ErrRoomNotWaiting),
		errors.Is(err, room.ErrRoomNotTriggered),
		errors.Is(err, room.ErrRoomNotRendering):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}
