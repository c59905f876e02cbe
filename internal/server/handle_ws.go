package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/eastertrail/internal/game"
)

// WSMessage is sent to WebSocket clients: either a fresh state or the
// rejection of the client's last command.
type WSMessage struct {
	Type  string          `json:"type" enum:"state,error"`
	State json.RawMessage `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

// handlePlayWS accepts commands as JSON text frames and pushes every state
// change back, including timed ones such as a story reveal.
func handlePlayWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := playFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(p.id)
		defer broker.Unsubscribe(p.id, ch)

		initial, _ := json.Marshal(p.Snapshot())
		if err := wsjson.Write(ctx, conn, WSMessage{Type: "state", State: initial}); err != nil {
			return
		}

		readErr := make(chan error, 1)
		go func() {
			for {
				var cmd Command
				if err := wsjson.Read(ctx, conn, &cmd); err != nil {
					readErr <- err
					return
				}
				_, err := p.Do(func(g *game.Session) error { return apply(g, cmd) })
				if err != nil {
					if err := wsjson.Write(ctx, conn, WSMessage{Type: "error", Error: err.Error()}); err != nil {
						readErr <- err
						return
					}
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-readErr:
				logger.Debug("websocket read ended", "session_id", p.id, "error", err)
				return
			case data := <-ch:
				if err := wsjson.Write(ctx, conn, WSMessage{Type: "state", State: data}); err != nil {
					logger.Debug("websocket write failed", "session_id", p.id, "error", err)
					return
				}
			}
		}
	}
}
