package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	// A document.load operation carries a whole drawing.
	maxMsgSize = 8 << 20
)

var (
	ErrUnexpectedType = errors.New("message type not accepted from clients")
	ErrWrongDrawing   = errors.New("message addressed to another drawing")
)

// clientTypes are the message types a client may send.
var clientTypes = map[string]bool{
	TypeOpSubmit:       true,
	TypePresenceUpdate: true,
}

type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	closeOnce   sync.Once
	closeStatus websocket.StatusCode
	closeReason string
	UserID      string
	DisplayName string
	DrawingID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, drawingID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		closeStatus: websocket.StatusNormalClosure,
		UserID:      userID,
		DisplayName: displayName,
		DrawingID:   drawingID,
		ClientID:    clientID,
	}
}

// decode parses a frame from the client and stamps it with the client's
// identity. Frames for another drawing or of a server-only type are
// rejected.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if !clientTypes[msg.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedType, msg.Type)
	}
	if msg.DrawingID != "" && msg.DrawingID != c.DrawingID {
		return nil, fmt.Errorf("%w: %s", ErrWrongDrawing, msg.DrawingID)
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.DrawingID = c.DrawingID
	return &msg, nil
}

// ReadPump forwards messages to the hub until the connection closes.
// Rejected frames are reported back to the client through the hub.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "user", c.UserID, "drawing", c.DrawingID)
			return
		}

		msg, err := c.decode(data)
		if err != nil {
			slog.Warn("rejected message", "error", err, "user", c.UserID, "drawing", c.DrawingID)
			c.hub.Submit(c, rejectedMessage(err))
			continue
		}
		c.hub.Submit(c, msg)
	}
}

// WritePump writes queued messages and keeps the connection alive. When
// the hub closes the client, the connection is closed with the status and
// reason the hub gave.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(c.closeStatus, c.closeReason)
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID, "drawing", c.DrawingID)
				c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "")
			return
		}
	}
}

// Send queues msg for the write pump. It must only be called from the hub
// goroutine.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.UserID, "drawing", c.DrawingID)
	}
}

// closeWith ends the client's write pump; the connection is closed with
// status and reason. Only the first call counts.
func (c *Client) closeWith(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.closeStatus = status
		c.closeReason = reason
		close(c.send)
	})
}
