package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.clients.Add(1)
	defer s.clients.Done()

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("dashboard client connected")
	s.serveClient(r.Context(), conn)
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("dashboard client disconnected")
}

// serveClient pushes the latest snapshot on the client's own timer whenever
// it changed since the last send. A slow client only delays itself.
func (s *Server) serveClient(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients send nothing we use; reading drives pong and close handling.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	sub := s.snaps.Subscribe()
	push := time.NewTicker(s.cfg.PushInterval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	send := func() bool {
		snap, ok := sub.Changed()
		if !ok {
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snap); err != nil {
			s.logger.Debug().Err(err).Msg("dashboard client write failed")
			return false
		}
		return true
	}

	if !send() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case <-push.C:
			if !send() {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
