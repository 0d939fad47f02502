package collab

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

const drawingID = "drawing_test"

type savedDrawing struct {
	id        string
	document  string
	thumbnail []byte
}

type testHub struct {
	*Hub
	saved chan savedDrawing
}

func sampleJSON(t *testing.T) string {
	t.Helper()
	e := engine.NewEngine(scene.DefaultConfig())
	require.NoError(t, e.LoadSampleDocument())
	return e.GetDocument()
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	doc := sampleJSON(t)
	saved := make(chan savedDrawing, 8)
	loader := func(id string) (string, error) {
		if id != drawingID {
			return "", errors.New("drawing not found")
		}
		return doc, nil
	}
	saver := func(id, document string, thumbnail []byte) error {
		saved <- savedDrawing{id: id, document: document, thumbnail: thumbnail}
		return nil
	}
	h := NewHub(loader, saver, scene.DefaultConfig())
	go h.Run()
	t.Cleanup(h.Stop)
	return &testHub{Hub: h, saved: saved}
}

func join(t *testing.T, h *testHub, user string) *Client {
	t.Helper()
	c := NewClient(h.Hub, nil, user, user, drawingID, "client-"+user)
	h.Register(c)
	expect(t, c, TypePresenceState)
	return c
}

// expect reads from c until a message of msgType arrives.
func expect(t *testing.T, c *Client, msgType string) *Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case data, ok := <-c.send:
			require.True(t, ok, "connection closed waiting for %s", msgType)
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			if msg.Type == msgType {
				return &msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func submit(h *testHub, c *Client, op Operation) {
	payload, _ := json.Marshal(OperationSubmitPayload{Operation: op})
	h.Submit(c, &Message{Type: TypeOpSubmit, Payload: payload})
}

func decode[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Payload, &v))
	return v
}

func TestJoinSyncsDocument(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(h.Hub, nil, "alice", "alice", drawingID, "client-alice")
	h.Register(c)

	welcome := decode[WelcomePayload](t, expect(t, c, TypeWelcome))
	assert.Equal(t, "client-alice", welcome.ClientID)
	sync := decode[DocSyncPayload](t, expect(t, c, TypeDocSync))
	var doc document.Document
	require.NoError(t, json.Unmarshal(sync.Document, &doc))
	assert.Len(t, doc.Items, 8)

	render := decode[SceneRenderPayload](t, expect(t, c, TypeSceneRender))
	assert.NotEmpty(t, render.Commands)
	assert.Equal(t, "ready", render.State)
}

func TestOperationAckedAndBroadcast(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	b := join(t, h, "bob")
	expect(t, a, TypePresenceJoin)

	submit(h, a, Operation{ID: "op1", Type: OpSelectAll})
	submit(h, a, Operation{ID: "op2", Type: OpMove, DY: 20})

	expect(t, a, TypeOpAck)
	ack := decode[OperationAckPayload](t, expect(t, a, TypeOpAck))
	assert.Equal(t, "op2", ack.OperationID)
	assert.Equal(t, int64(2), ack.ServerSeq)

	expect(t, b, TypeOpBroadcast)
	bc := decode[OperationBroadcastPayload](t, expect(t, b, TypeOpBroadcast))
	assert.Equal(t, OpMove, bc.Operation.Type)
	assert.Equal(t, "bob", b.UserID)
	assert.Equal(t, "alice", bc.UserID)

	hist := decode[engine.HistoryState](t, expect(t, b, TypeHistoryState))
	assert.True(t, hist.CanUndo)
	assert.Equal(t, "Move", hist.UndoTitle)
}

func TestUnknownOperationNacked(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")

	submit(h, a, Operation{ID: "op1", Type: "object.teleport"})
	nack := decode[OperationNackPayload](t, expect(t, a, TypeOpNack))
	assert.Equal(t, "op1", nack.OperationID)
	assert.Contains(t, nack.Reason, ErrUnknownOperation.Error())
}

func TestRejectedCommandNacked(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")

	submit(h, a, Operation{ID: "op1", Type: OpGroup})
	nack := decode[OperationNackPayload](t, expect(t, a, TypeOpNack))
	assert.Equal(t, "op1", nack.OperationID)
}

func TestGestureHeldByOneClient(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	b := join(t, h, "bob")

	submit(h, a, Operation{ID: "a1", Type: OpMouseDown, X: 1900, Y: 1900})
	expect(t, a, TypeOpAck)

	submit(h, b, Operation{ID: "b1", Type: OpMouseDown, X: 1800, Y: 1800})
	nack := decode[OperationNackPayload](t, expect(t, b, TypeOpNack))
	assert.Equal(t, ErrGestureBusy.Error(), nack.Reason)

	submit(h, a, Operation{ID: "a2", Type: OpMouseUp, X: 1950, Y: 1950})
	expect(t, a, TypeOpAck)

	submit(h, b, Operation{ID: "b2", Type: OpMouseDown, X: 1800, Y: 1800})
	ack := decode[OperationAckPayload](t, expect(t, b, TypeOpAck))
	assert.Equal(t, "b2", ack.OperationID)
}

func TestGestureOwnerLeavingCancels(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	b := join(t, h, "bob")

	submit(h, a, Operation{ID: "a1", Type: OpPlace, ItemType: "rect"})
	expect(t, a, TypeOpAck)
	render := decode[SceneRenderPayload](t, expect(t, b, TypeSceneRender))
	assert.Equal(t, "placing", render.State)

	h.Unregister(a)
	expect(t, b, TypePresenceLeave)

	submit(h, b, Operation{ID: "b1", Type: OpMouseDown, X: 1800, Y: 1800})
	expect(t, b, TypeOpAck)
	render = decode[SceneRenderPayload](t, expect(t, b, TypeSceneRender))
	assert.Equal(t, "rubberband", render.State)
}

func TestLastClientLeavingSavesDirtyDrawing(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")

	submit(h, a, Operation{ID: "op1", Type: OpSelectAll})
	submit(h, a, Operation{ID: "op2", Type: OpDelete})
	expect(t, a, TypeOpAck)
	expect(t, a, TypeOpAck)

	h.Unregister(a)
	select {
	case s := <-h.saved:
		assert.Equal(t, drawingID, s.id)
		var doc document.Document
		require.NoError(t, json.Unmarshal([]byte(s.document), &doc))
		assert.Empty(t, doc.Items)
		assert.True(t, bytes.HasPrefix(s.thumbnail, []byte("\x89PNG")))
	case <-time.After(2 * time.Second):
		t.Fatal("drawing was not saved")
	}
}

func TestCleanDrawingNotSaved(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	h.Unregister(a)
	h.Stop()
	assert.Empty(t, h.saved)
}

func TestStopSavesOpenRooms(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	submit(h, a, Operation{ID: "op1", Type: OpSelectAll})
	submit(h, a, Operation{ID: "op2", Type: OpMove, DX: 10})
	expect(t, a, TypeOpAck)
	expect(t, a, TypeOpAck)

	h.Stop()
	require.Len(t, h.saved, 1)
}

func TestLoadFailureClosesClient(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(h.Hub, nil, "alice", "alice", "drawing_missing", "client-alice")
	h.Register(c)

	msg := expect(t, c, TypeError)
	assert.Equal(t, "could not open drawing", decode[ErrorPayload](t, msg).Message)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestPresenceRelayed(t *testing.T) {
	h := newTestHub(t)
	a := join(t, h, "alice")
	b := join(t, h, "bob")

	payload, _ := json.Marshal(PresencePayload{Cursor: &CursorPos{X: 5, Y: 6}})
	h.Submit(a, &Message{Type: TypePresenceUpdate, Payload: payload})

	msg := expect(t, b, TypePresenceUpdate)
	p := decode[PresencePayload](t, msg)
	assert.Equal(t, "alice", msg.UserID)
	assert.Equal(t, "alice", p.DisplayName)
	assert.Equal(t, 5.0, p.Cursor.X)
}
