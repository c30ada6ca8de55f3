package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ftahirops/celltop/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is a command sent by a WebSocket client.
type clientMessage struct {
	Type      string   `json:"type"`
	Enabled   *bool    `json:"enabled,omitempty"`
	Processes []string `json:"processes,omitempty"`
}

// serverMessage is pushed to a WebSocket client.
type serverMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// wsClient owns one connection and its private dashboard session.
type wsClient struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	session *engine.Session
	sched   *engine.Scheduler
	log     logrus.FieldLogger
	ctx     context.Context
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &wsClient{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		session: engine.NewSession(s.ticker, s.opts),
		ctx:     ctx,
	}
	c.log = s.log.WithFields(logrus.Fields{"session": c.id, "addr": conn.RemoteAddr().String()})
	c.sched = engine.NewScheduler(c.session, c.pushView)

	s.register(c)
	defer func() {
		cancel()
		s.unregister(c)
	}()

	go func() { _ = c.sched.Run(ctx) }()
	go c.writePump()
	c.sched.Trigger()

	c.readPump()
}

func (s *Server) register(c *wsClient) {
	s.mu.Lock()
	s.clients[c.id] = c
	n := len(s.clients)
	s.mu.Unlock()
	c.log.WithField("open", n).Info("session started")
}

func (s *Server) unregister(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	n := len(s.clients)
	s.mu.Unlock()
	c.log.WithField("open", n).Info("session ended")
}

// readPump handles client commands until the connection fails.
func (c *wsClient) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("websocket read")
			}
			return
		}
		c.handle(data)
	}
}

func (c *wsClient) handle(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.pushError("malformed message")
		return
	}
	switch msg.Type {
	case "refresh":
		c.sched.Trigger()
	case "auto":
		if msg.Enabled == nil {
			c.pushError("auto requires enabled")
			return
		}
		c.sched.SetEnabled(*msg.Enabled)
		c.pushView(c.session.View())
	case "filter":
		procs, err := engine.ParseProcesses(msg.Processes)
		if err != nil {
			c.pushError(err.Error())
			return
		}
		c.session.SetFilter(engine.NewProcessFilter(procs...))
		c.pushView(c.session.View())
	default:
		c.pushError("unknown message type " + msg.Type)
	}
}

func (c *wsClient) pushView(v engine.View) {
	c.enqueue(serverMessage{Type: "view", Payload: v})
}

func (c *wsClient) pushError(msg string) {
	c.enqueue(serverMessage{Type: "error", Payload: msg})
}

// enqueue drops the message when the client is gone or too slow.
func (c *wsClient) enqueue(m serverMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		c.log.WithError(err).Error("encode message")
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.log.WithField("type", m.Type).Warn("send buffer full, message dropped")
	}
}

// writePump is the only writer on the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.WithError(err).Debug("websocket write")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("websocket ping")
				return
			}
		}
	}
}
