package collab

import "encoding/json"

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	// Tool is the item type the user is about to place, if any.
	Tool string `json:"tool,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	ServerSeq int64  `json:"serverSeq"`
}

type DocSyncPayload struct {
	Document json.RawMessage `json:"document"`
}

type SceneRenderPayload struct {
	Commands  json.RawMessage `json:"commands"`
	Selection []string        `json:"selection"`
	State     string          `json:"state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Scene output after every applied operation
	TypeSceneRender  = "scene.render"
	TypeHistoryState = "history.state"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// --- Operation Types ---

// Operation is one gesture event or editing command applied to a drawing.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	// Scene position for gestures and point operations
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// For mouse.*
	Button int  `json:"button,omitempty"`
	Shift  bool `json:"shift,omitempty"`

	// For selection.move
	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	// For place.start
	ItemType string `json:"itemType,omitempty"`

	// For point.insert, point.resize, point.remove and selection.set
	ItemID  string   `json:"itemId,omitempty"`
	PointID string   `json:"pointId,omitempty"`
	IDs     []string `json:"ids,omitempty"`

	// For document.load
	Document json.RawMessage `json:"document,omitempty"`
}

const (
	OpMouseDown      = "mouse.down"
	OpMouseMove      = "mouse.move"
	OpMouseUp        = "mouse.up"
	OpCancel         = "gesture.cancel"
	OpPlace          = "place.start"
	OpSelectionSet   = "selection.set"
	OpSelectAll      = "selection.all"
	OpSelectNone     = "selection.none"
	OpMove           = "selection.move"
	OpDelete         = "selection.delete"
	OpRotate         = "selection.rotate"
	OpRotateBack     = "selection.rotateBack"
	OpFlip           = "selection.flip"
	OpGroup          = "selection.group"
	OpUngroup        = "selection.ungroup"
	OpBringToFront   = "order.front"
	OpSendToBack     = "order.back"
	OpBringForward   = "order.forward"
	OpSendBackward   = "order.backward"
	OpResizePoint    = "point.resize"
	OpInsertPoint    = "point.insert"
	OpRemovePoint    = "point.remove"
	OpCut            = "clipboard.cut"
	OpCopy           = "clipboard.copy"
	OpPaste          = "clipboard.paste"
	OpUndo           = "history.undo"
	OpRedo           = "history.redo"
	OpLoadDocument   = "document.load"
	OpSampleDocument = "document.sample"
)

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
	// Created lists IDs made by paste and point.insert.
	Created []string `json:"created,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}
