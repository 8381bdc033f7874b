package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

// WSMirror is an optional loopback-only debug surface: a WebSocket
// endpoint that streams a single session's TerminalStateTree as JSON
// frames, one every 200ms, for an operator watching the
// daemon from a browser during development. It carries no write path —
// strictly a read-only observer, same posture as Visual mode's native
// terminal mirror.
type WSMirror struct {
	mgr      *session.Manager
	upgrader websocket.Upgrader
}

// NewWSMirror builds a mirror bound to mgr.
func NewWSMirror(mgr *session.Manager) *WSMirror {
	return &WSMirror{
		mgr: mgr,
		upgrader: websocket.Upgrader{
			// Loopback-only debug surface: same-origin checks don't apply
			// since nothing but localhost tooling is expected to connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ListenAndServe binds addr (expected to be a loopback address, e.g.
// "127.0.0.1:0"), serves GET /sessions/:id/watch from a background
// goroutine, and returns the bound address. There is no shutdown method;
// it never blocks session create()/close() since it only reads through
// Manager.Snapshot.
func (m *WSMirror) ListenAndServe(addr string) (net.Addr, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/sessions/:id/watch", m.watch)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	e.Listener = ln

	go func() {
		if err := e.Start(""); err != nil {
			log.Debug().Err(err).Msg("ws debug mirror stopped")
		}
	}()
	return ln.Addr(), nil
}

func (m *WSMirror) watch(c echo.Context) error {
	id := session.SessionID(c.Param("id"))

	conn, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		tree, err := m.mgr.Snapshot(id, session.SnapshotOptions{IncludeRaw: true})
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()))
			return nil
		}
		frame, err := json.Marshal(toTreeJSON(tree))
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return nil
		}
	}
	return nil
}
