package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/rest"
)

type createRoomRequest struct {
	RoomId   string `json:"room_id" validate:"omitempty,max=36"`
	ClientId string `json:"client_id" validate:"required,max=64"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		RoomId:   req.RoomId,
		ClientId: req.ClientId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": resp.Room})
}

type joinRoomRequest struct {
	ClientId string `json:"client_id" validate:"required,max=64"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var req joinRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:   roomId,
		ClientId: req.ClientId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"client_id": req.ClientId,
			"members":   resp.Room.Members,
		},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp.Room})
}

type leaveRoomRequest struct {
	ClientId string `json:"client_id" validate:"required,max=64"`
}

func (c controller) leaveRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var req leaveRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.LeaveRoom(r.Context(), &room.LeaveRoomParams{
		RoomId:   roomId,
		ClientId: req.ClientId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type: "MEMBER_LEFT",
		Payload: map[string]any{
			"client_id": req.ClientId,
			"members":   resp.Room.Members,
		},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp.Room})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rm})
}

func (c controller) getRoomStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.roomService.GetRoomStatus(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": status})
}

func (c controller) triggerRendering(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	resp, err := c.roomService.TriggerRendering(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type: "RENDERING_TRIGGERED",
		Payload: map[string]any{
			"tasks": resp.Tasks,
		},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp.Tasks})
}

func (c controller) startRendering(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	resp, err := c.roomService.StartRendering(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "RENDERING_STARTED",
		Payload: map[string]any{"room_id": roomId},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "rendering started"})
}

func (c controller) stopRendering(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	resp, err := c.roomService.StopRendering(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "RENDERING_STOPPED",
		Payload: map[string]any{"room_id": roomId},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "rendering stopped"})
}
