package connection

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn serializes writes to an underlying websocket connection. gorilla
// allows at most one concurrent writer per connection, and room events are
// broadcast from whichever handler goroutine triggered them.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteJSON(v)
}

func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
