package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/fixconv/pkg/logger"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamMaxMessage = 64 * 1024
)

// StreamHandler explains messages sent over a websocket, one reply per text frame
type StreamHandler struct {
	fix      *FixHandler
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a websocket explain handler.
// checkOrigin may be nil to accept every origin.
func NewStreamHandler(fixHandler *FixHandler, checkOrigin func(r *http.Request) bool, log *logger.Logger) *StreamHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &StreamHandler{
		fix: fixHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: log,
	}
}

// StreamReply is written for every inbound frame
type StreamReply struct {
	FixMessage   string      `json:"fixMessage"`
	ExplainedFix interface{} `json:"explainedFix,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// Explain upgrades the connection and answers until the client goes away
// GET /ws/explain
func (h *StreamHandler) Explain(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("remote", r.RemoteAddr)
	log.Debug("WebSocket client connected")

	conn.SetReadLimit(streamMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WebSocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := StreamReply{FixMessage: string(data)}
		fields, err := h.fix.explain(reply.FixMessage)
		if err != nil {
			reply.Error = err.Error()
		} else {
			reply.ExplainedFix = fields
		}

		// WriteControl may run concurrently with WriteJSON; WriteJSON only runs here
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("WebSocket write failed")
			return
		}
	}
}

// keepAlive pings the client so dead connections hit the read deadline
func (h *StreamHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
