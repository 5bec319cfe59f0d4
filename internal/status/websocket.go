package status

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slavakukuyev/elevator-fleet/internal/infra/logging"
)

var statusUpgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: false,
}

// statusWebSocketHandler upgrades the connection and pushes this
// node's snapshot on every tick until the client disconnects or the
// server shuts down.
func (s *Server) statusWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logging.NewContextWithCorrelation(r.Context())

	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.ErrorContext(ctx, "failed to close websocket connection", slog.String("error", err.Error()))
		}
	}()

	s.logger.InfoContext(ctx, "status websocket connection established")

	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.WebSocketReadTimeout)); err != nil {
		s.logger.ErrorContext(ctx, "failed to set read deadline", slog.String("error", err.Error()))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.WebSocketReadTimeout))
	})

	if err := s.pushSnapshot(conn); err != nil {
		s.logger.ErrorContext(ctx, "failed to send initial status", slog.String("error", err.Error()))
		return
	}

	statusTicker := time.NewTicker(s.cfg.StatusUpdateInterval)
	defer statusTicker.Stop()
	pingTicker := time.NewTicker(s.cfg.WebSocketPingInterval)
	defer pingTicker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logger.WarnContext(ctx, "status websocket closed unexpectedly", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return

		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
				time.Now().Add(s.cfg.WebSocketWriteTimeout))
			return

		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WebSocketWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-statusTicker.C:
			if err := s.pushSnapshot(conn); err != nil {
				s.logger.WarnContext(ctx, "failed to push status update", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (s *Server) pushSnapshot(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WebSocketWriteTimeout)); err != nil {
		return err
	}
	view := snapshotView{Role: s.node.Role().String(), Node: s.node.Snapshot()}
	return conn.WriteJSON(view)
}
