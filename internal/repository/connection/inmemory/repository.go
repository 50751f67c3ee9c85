package inmemory

import (
	"log/slog"
	"sync"

	"github.com/renderroom/server/internal/repository/connection"
)

// repo tracks websocket subscribers per room so room events can be fanned
// out without polling.
type repo struct {
	roomList map[string]map[*connection.Conn]struct{}
	connList map[*connection.Conn]string
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		roomList: make(map[string]map[*connection.Conn]struct{}),
		connList: make(map[*connection.Conn]string),
	}
}

func (r *repo) Add(conn *connection.Conn, roomId string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "roomId", roomId)
	if _, ok := r.connList[conn]; ok {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	if r.roomList[roomId] == nil {
		r.roomList[roomId] = make(map[*connection.Conn]struct{})
	}
	r.roomList[roomId][conn] = struct{}{}
	r.connList[conn] = roomId

	slog.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) RemoveByConn(conn *connection.Conn) error {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName)
	roomId, ok := r.connList[conn]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}
	conn.Close()

	delete(r.roomList[roomId], conn)
	if len(r.roomList[roomId]) == 0 {
		delete(r.roomList, roomId)
	}
	delete(r.connList, conn)

	slog.Debug(funcName, "result", roomId)
	return nil
}

func (r *repo) GetConns(roomId string) []*connection.Conn {
	funcName := "connection.inmemory.GetConns"
	r.mu.RLock()
	defer r.mu.RUnlock()

	slog.Debug(funcName, "roomId", roomId)
	conns := make([]*connection.Conn, 0, len(r.roomList[roomId]))
	for conn := range r.roomList[roomId] {
		conns = append(conns, conn)
	}

	return conns
}
