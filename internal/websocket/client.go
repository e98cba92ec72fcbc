package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Attachments travel as
	// base64 data-URIs, so the limit is generous.
	maxMessageSize = 16 << 20
)

var errClientDisconnected = websocket.ErrCloseSent

// Client is one live authenticated connection. The registry owns its
// membership; the transport layer owns the raw socket.
type Client struct {
	id       string
	userID   uint
	username string

	hub  *Hub
	conn Conn
	send chan []byte
	hb   *heartbeat

	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

func NewClient(hub *Hub, conn Conn, userID uint, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) ID() string       { return c.id }
func (c *Client) UserID() uint     { return c.userID }
func (c *Client) Username() string { return c.username }

// Start registers the client and launches its pumps and heartbeat.
func (c *Client) Start() {
	c.hb = newHeartbeat(c.conn, c.hub.pingInterval, c.hub.pongWait, c.onHeartbeatDeath)
	c.conn.SetPongHandler(func(string) error {
		c.hb.ack()
		return nil
	})

	c.hub.Add(c)

	go c.writePump()
	go c.readPump()
	c.hb.start()
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
	}
}

// teardown runs the single cleanup path shared by normal closes,
// transport failures and heartbeat death. Safe to call more than once.
func (c *Client) teardown() {
	c.close()
	if c.hb != nil {
		c.hb.shutdown()
	}
	c.hub.Remove(c)
	if err := c.conn.Close(); err != nil {
		slog.Debug("error closing connection", "clientID", c.id, "userID", c.userID, "error", err)
	}
}

func (c *Client) onHeartbeatDeath() {
	slog.Info("heartbeat timeout, evicting connection", "clientID", c.id, "userID", c.userID)
	c.teardown()
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("websocket connection closed", "clientID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		// Events are handled inline so one connection's messages are
		// persisted in the order received; other connections are not
		// blocked because each has its own read pump.
		c.hub.router.Handle(c.ctx, c, raw)
	}
}

func (c *Client) writePump() {
	defer slog.Debug("write pump finished", "clientID", c.id, "userID", c.userID)

	for {
		select {
		case data, ok := <-c.send:
			if c.isClosed() {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("error writing message", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// Enqueue hands an outbound frame to the write pump. A full buffer or a
// closed client drops the frame and reports an error; the caller treats
// that as one dead receiver, never as a broadcast failure.
func (c *Client) Enqueue(data []byte) error {
	if c.isClosed() {
		return errClientDisconnected
	}

	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return errClientDisconnected
	default:
		slog.Warn("send buffer full, dropping frame", "clientID", c.id, "userID", c.userID)
		return errClientDisconnected
	}
}

// EnqueueJSON marshals v and enqueues it.
func (c *Client) EnqueueJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Enqueue(data)
}
