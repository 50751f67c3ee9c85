package connection

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The wrapper must serialize writers: gorilla panics on concurrent writes
// to the same connection, and broadcasts come from arbitrary handler
// goroutines.
func TestConnSerializesConcurrentWrites(t *testing.T) {
	const writers = 32

	upgrader := websocket.Upgrader{}
	connCh := make(chan *Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connCh <- NewConn(ws)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(strings.Replace(srv.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-connCh
	defer conn.Close()

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, conn.WriteJSON(map[string]int{"n": n}))
		}(i)
	}

	seen := make(map[int]bool)
	for i := 0; i < writers; i++ {
		var msg map[string]int
		require.NoError(t, client.ReadJSON(&msg))
		seen[msg["n"]] = true
	}

	wg.Wait()
	assert.Len(t, seen, writers, "every write must arrive intact")
}
