package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/tagmend/internal/observe"
)

// handleLive upgrades to a WebSocket and answers every text frame with the
// records for its content. Messages are handled one at a time, in order.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Debug("live: websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	s.metrics.LiveSessions.Add(ctx, 1)
	defer s.metrics.LiveSessions.Add(ctx, -1)

	log := observe.Logger(ctx)
	log.Debug("live: session opened", "remote", r.RemoteAddr)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Debug("live: session closed by peer")
			default:
				if ctx.Err() == nil {
					log.Debug("live: read failed", "err", err)
				}
			}
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "text frames only")
			return
		}

		resp := newTagsResponse(s.proc.Process(ctx, string(data)))
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			log.Debug("live: write failed", "err", err)
			return
		}
	}
}
