package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// watch streams controller snapshots to the presentation layer over a
// websocket. A revocation shows up here as an unauthorized snapshot, which is
// the navigation-reset signal: the UI drops back to the unauthenticated entry
// point. The push is idempotent on the client side; re-sending the same state
// is harmless.
func (c *Control) watch(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return c.originAllowed(r.Header.Get("Origin")) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snapshots, cancel := c.ctrl.Subscribe()
	defer cancel()

	// Reader only exists to observe the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (c *Control) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range c.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
