package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigwork-backend/internal/goroutine"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4 * 1024
	clientQueue  = 16
)

// Команды, которые клиент может прислать. Всё остальное игнорируется.
const (
	commandPing = "ping"
	eventPong   = "pong"
)

// Client: одно WebSocket подключение работника или администратора.
type Client struct {
	conn        *websocket.Conn
	hub         *Hub
	userID      uuid.UUID
	connectedAt time.Time
	send        chan []byte
}

func NewClient(conn *websocket.Conn, hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		conn:        conn,
		hub:         hub,
		userID:      userID,
		connectedAt: time.Now(),
		send:        make(chan []byte, clientQueue),
	}
}

// Run регистрирует клиента в хабе и блокируется до разрыва соединения или отмены ctx.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	goroutine.SafeGo("ws.write", c.writeLoop)

	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
		c.log().WithField("duration", time.Since(c.connectedAt).Round(time.Second)).Debug("ws: клиент отключился")
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().WithError(err).Debug("ws: соединение оборвано")
			}
			return
		}
		c.handleCommand(raw)
	}
}

// handleCommand отвечает на прикладной ping: браузер не видит ping-кадры протокола.
func (c *Client) handleCommand(raw []byte) {
	var cmd struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Type != commandPing {
		return
	}

	reply, err := json.Marshal(envelope{Type: eventPong, Data: time.Now().UTC()})
	if err != nil {
		return
	}
	c.hub.reply(c, reply)
}

// writeLoop пишет события из очереди и держит соединение ping-кадрами.
// Закрытая хабом очередь означает отключение клиента.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind    = websocket.PingMessage
			payload []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, payload = websocket.TextMessage, msg
		case <-ticker.C:
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			return
		}
	}
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithField("user_id", c.userID)
}
