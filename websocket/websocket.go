// Package websocket serves the download progress feed over WebSocket.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"ytdownloader/logger"
	"ytdownloader/models"
	"ytdownloader/progress"

	gws "github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 512
)

// NewUpgrader accepts connections from allowedOrigin, or from anywhere when
// allowedOrigin is "*" or empty. Requests without an Origin header pass.
func NewUpgrader(allowedOrigin string) *gws.Upgrader {
	return &gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedOrigin == "" || allowedOrigin == "*" || origin == allowedOrigin
		},
	}
}

type WSConnection struct {
	Conn *gws.Conn
	Lock sync.Mutex
}

func NewWSConnection(conn *gws.Conn) *WSConnection {
	return &WSConnection{Conn: conn}
}

func (ws *WSConnection) SendJSON(data any) error {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()

	_ = ws.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.Conn.WriteJSON(data)
}

func (ws *WSConnection) ping() error {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()
	return ws.Conn.WriteControl(gws.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a normal closure frame and closes the socket.
func (ws *WSConnection) Close() {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()

	_ = ws.Conn.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""),
		time.Now().Add(2*time.Second))
	_ = ws.Conn.Close()
}

// listen drains client frames until the peer goes away, then closes done.
func (ws *WSConnection) listen(requestID string, done chan<- struct{}) {
	log := logger.Component("WsController")
	defer close(done)

	ws.Conn.SetReadLimit(readLimit)
	_ = ws.Conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.Conn.SetPongHandler(func(string) error {
		return ws.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.Conn.ReadMessage(); err != nil {
			if gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
				log.Debug().Str("request_id", requestID).Msg("WebSocket closed by client")
			} else {
				log.Debug().Str("request_id", requestID).Err(err).Msg("WebSocket read error")
			}
			return
		}
	}
}

// Stream forwards progress for requestID until the download finishes or the
// client disconnects.
func Stream(hub *progress.Hub, ws *WSConnection, requestID string) {
	log := logger.Component("WsController")

	client := hub.Subscribe(requestID)
	defer hub.Unsubscribe(requestID, client)
	defer ws.Close()

	done := make(chan struct{})
	go ws.listen(requestID, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	log.Info().Str("request_id", requestID).Msg("connected")
	defer log.Info().Str("request_id", requestID).Msg("connection closed")

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		case p, ok := <-client.Channel:
			if !ok {
				return
			}
			if err := ws.SendJSON(p); err != nil {
				log.Debug().Str("request_id", requestID).Err(err).Msg("failed to send progress")
				return
			}
			if isTerminal(p) {
				return
			}
		}
	}
}

func isTerminal(p models.Progress) bool {
	return p.Status == "completed" || p.Status == "error"
}
