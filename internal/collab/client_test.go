package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDecode(t *testing.T) {
	c := NewClient(nil, nil, "alice", "Alice", drawingID, "client-alice")
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"op submit", `{"type":"op.submit","payload":{}}`, nil},
		{"own drawing", `{"type":"presence.update","drawingId":"drawing_test","payload":{}}`, nil},
		{"server type", `{"type":"doc.sync","payload":{}}`, ErrUnexpectedType},
		{"other drawing", `{"type":"op.submit","drawingId":"drawing_other","payload":{}}`, ErrWrongDrawing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := c.decode([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", msg.UserID)
			assert.Equal(t, "client-alice", msg.ClientID)
			assert.Equal(t, drawingID, msg.DrawingID)
		})
	}

	_, err := c.decode([]byte("{"))
	assert.Error(t, err)
}

func TestRejectedMessageReported(t *testing.T) {
	h := newTestHub(t)
	c := join(t, h, "alice")

	h.Submit(c, rejectedMessage(ErrWrongDrawing))
	msg := expect(t, c, TypeError)
	assert.Equal(t, ErrWrongDrawing.Error(), decode[ErrorPayload](t, msg).Message)
}

func TestStopClosesClients(t *testing.T) {
	h := newTestHub(t)
	c := join(t, h, "alice")
	h.Stop()

	for range c.send {
	}
	assert.Equal(t, websocket.StatusGoingAway, c.closeStatus)
	assert.Equal(t, "server shutting down", c.closeReason)
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) *Message {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %s", msgType)
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return &msg
		}
	}
}

func TestClientOverWebSocket(t *testing.T) {
	h := newTestHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(h.Hub, conn, "alice", "Alice", drawingID, "client-alice")
		h.Register(c)
		go c.WritePump(r.Context())
		c.ReadPump(r.Context())
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	welcome := decode[WelcomePayload](t, readUntil(t, ctx, conn, TypeWelcome))
	assert.Equal(t, "client-alice", welcome.ClientID)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"doc.sync","payload":{}}`)))
	msg := readUntil(t, ctx, conn, TypeError)
	assert.Contains(t, decode[ErrorPayload](t, msg).Message, "not accepted")

	op, _ := json.Marshal(OperationSubmitPayload{Operation: Operation{ID: "op1", Type: OpSelectAll}})
	frame, _ := json.Marshal(Message{Type: TypeOpSubmit, Payload: op})
	require.NoError(t, conn.Write(ctx, websocket.MessageText, frame))
	ack := decode[OperationAckPayload](t, readUntil(t, ctx, conn, TypeOpAck))
	assert.Equal(t, "op1", ack.OperationID)

	h.Stop()
	for {
		if _, _, err = conn.Read(ctx); err != nil {
			break
		}
	}
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
