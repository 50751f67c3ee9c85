package room

import (
	"github.com/renderroom/server/internal/repository/connection"
)

type SubscribeParams struct {
	RoomId string
	Conn   *connection.Conn
}

// Subscribe registers a websocket connection to receive the room's event
// stream. The room must exist.
func (s service) Subscribe(params *SubscribeParams) error {
	return s.connRepo.Add(params.Conn, params.RoomId)
}

func (s service) Unsubscribe(conn *connection.Conn) error {
	return s.connRepo.RemoveByConn(conn)
}
