package server

import (
	"log"
	"time"

	"StockGuess/internal/engine"
	"StockGuess/internal/model"
	"StockGuess/internal/presenter"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit = 4096
	wsWriteWait = 10 * time.Second
)

// wsRequest is a client frame on /ws/games/:id.
type wsRequest struct {
	Type      string `json:"type"`
	Ticker    string `json:"ticker,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// wsFrame is a server frame: one event with the view after it, or an error.
type wsFrame struct {
	Event *EventPayload   `json:"event,omitempty"`
	View  *presenter.View `json:"view,omitempty"`
	Error string          `json:"error,omitempty"`
}

// StreamGame handles GET /ws/games/:id. Messages on one connection are processed in order.
func (s *Server) StreamGame(c *gin.Context) {
	g, ok := s.lookup(c)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)
	log.Printf("[INFO] websocket connected: game %s from %s", g.ID, c.ClientIP())

	interval := s.PingInterval
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	pongWait := 2 * interval
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		g.touch()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	stop := make(chan struct{})
	defer close(stop)
	go keepAlive(conn, g, interval, stop)

	view := g.View()
	if err := writeFrame(conn, wsFrame{View: &view}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			select {
			case <-g.Evicted():
				log.Printf("[INFO] websocket closed: game %s expired", g.ID)
				return
			default:
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WARN] websocket read: %v", err)
			}
			log.Printf("[INFO] websocket closed: game %s", g.ID)
			return
		}

		conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, errText := parseWSRequest(req)
		if errText != "" {
			if err := writeFrame(conn, wsFrame{Error: errText}); err != nil {
				return
			}
			continue
		}

		events, view := g.Dispatch(ctx, msg)
		if len(events) == 0 {
			if err := writeFrame(conn, wsFrame{View: &view}); err != nil {
				return
			}
			continue
		}
		for _, ev := range events {
			payload := newEventPayload(ev)
			if err := writeFrame(conn, wsFrame{Event: &payload, View: &view}); err != nil {
				return
			}
		}
	}
}

// keepAlive pings the peer and closes the socket once the game is evicted.
// WriteControl is safe alongside the read loop's writes.
func keepAlive(conn *websocket.Conn, g *Game, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-g.Evicted():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "game expired")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func parseWSRequest(req wsRequest) (engine.Message, string) {
	switch req.Type {
	case "load":
		return engine.LoadRequested{Ticker: req.Ticker}, ""
	case "guess":
		dir, err := model.ParseDirection(req.Direction)
		if err != nil {
			return nil, err.Error()
		}
		return engine.GuessSubmitted{Direction: dir}, ""
	case "end":
		return engine.SessionEnded{}, ""
	default:
		return nil, "unknown message type: " + req.Type
	}
}

func writeFrame(conn *websocket.Conn, f wsFrame) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(f); err != nil {
		log.Printf("[WARN] websocket write: %v", err)
		return err
	}
	return nil
}
