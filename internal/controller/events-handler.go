package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/renderroom/server/internal/repository/connection"
	"github.com/renderroom/server/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// subscribeEvents upgrades the request to a websocket and streams room
// events (member changes, lifecycle transitions, task updates) until the
// client disconnects.
func (c controller) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if _, err := c.roomService.GetRoom(r.Context(), roomId); err != nil {
		c.writeError(w, r, err)
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	conn := connection.NewConn(ws)
	if err := c.roomService.Subscribe(&room.SubscribeParams{
		RoomId: roomId,
		Conn:   conn,
	}); err != nil {
		c.logger.InfoContext(r.Context(), "failed to subscribe", "error", err)
		conn.Close()
		return
	}

	// the stream is write-only; reads only serve to detect disconnects
	go func() {
		defer c.roomService.Unsubscribe(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (c controller) broadcast(ctx context.Context, conns []*connection.Conn, output *Output) {
	for _, conn := range conns {
		if err := conn.WriteJSON(output); err != nil {
			c.logger.WarnContext(ctx, "failed to broadcast", "type", output.Type, "error", err)
			c.roomService.Unsubscribe(conn)
		}
	}
}
