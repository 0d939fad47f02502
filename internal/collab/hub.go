package collab

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

// Loader returns the JSON document of a drawing.
type Loader func(drawingID string) (string, error)

// Saver persists a drawing's JSON document with a PNG thumbnail.
type Saver func(drawingID, document string, thumbnail []byte) error

const (
	thumbnailWidth  = 320
	thumbnailHeight = 240
)

// Room is one open drawing. Its engine is only touched from the hub
// goroutine.
type Room struct {
	drawingID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	engine    *engine.Engine
	serverSeq int64
	// gestureOwner is the client whose drag or placement is in progress.
	gestureOwner string
}

type inbound struct {
	client *Client
	msg    *Message
}

// Hub owns every open room and applies all of their operations on a single
// goroutine.
type Hub struct {
	rooms      map[string]*Room // drawingID -> room
	register   chan *Client
	unregister chan *Client
	messages   chan inbound
	stop       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once

	loader     Loader
	saver      Saver
	cfg        scene.Config
	engineOpts []engine.Option
	log        *slog.Logger
}

// NewHub creates a hub whose rooms load and save drawings through loader and
// saver. opts apply to every room's engine.
func NewHub(loader Loader, saver Saver, cfg scene.Config, opts ...engine.Option) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		messages:   make(chan inbound, 256),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		loader:     loader,
		saver:      saver,
		cfg:        cfg,
		engineOpts: opts,
		log:        slog.Default(),
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.messages:
			h.handleMessage(in.client, in.msg)
		case <-h.stop:
			h.saveAll()
			h.closeAll()
			return
		}
	}
}

// Stop saves every dirty room and ends Run. It blocks until Run returns.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Submit queues a message from client for the hub goroutine.
func (h *Hub) Submit(client *Client, msg *Message) {
	select {
	case h.messages <- inbound{client: client, msg: msg}:
	case <-h.stop:
	}
}

func (h *Hub) openRoom(drawingID string) (*Room, error) {
	if room, ok := h.rooms[drawingID]; ok {
		return room, nil
	}
	doc, err := h.loader(drawingID)
	if err != nil {
		return nil, err
	}
	opts := append(slices.Clone(h.engineOpts), engine.WithLogger(h.log.With("drawing", drawingID)))
	e := engine.NewEngine(h.cfg, opts...)
	if err := e.LoadDocument(doc); err != nil {
		return nil, err
	}
	room := &Room{
		drawingID: drawingID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		engine:    e,
	}
	h.rooms[drawingID] = room
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	room, err := h.openRoom(client.DrawingID)
	if err != nil {
		h.log.Error("failed to open drawing", "drawing", client.DrawingID, "error", err)
		client.Send(errorMessage("could not open drawing"))
		client.closeWith(websocket.StatusPolicyViolation, "could not open drawing")
		return
	}
	room.clients[client.ClientID] = client

	client.Send(h.message(TypeWelcome, "", WelcomePayload{ClientID: client.ClientID, ServerSeq: room.serverSeq}))
	client.Send(h.message(TypeDocSync, "", DocSyncPayload{Document: json.RawMessage(room.engine.GetDocument())}))
	client.Send(h.renderMessage(room))
	client.Send(h.message(TypeHistoryState, "", room.engine.HistoryState()))

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinMsg := h.message(TypePresenceJoin, client.UserID, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(room, joinMsg, client.ClientID)

	h.log.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) removeClient(client *Client) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	delete(room.clients, client.ClientID)
	client.closeWith(websocket.StatusNormalClosure, "")
	room.presence.Remove(client.UserID)

	if room.gestureOwner == client.ClientID {
		room.engine.Cancel()
		room.gestureOwner = ""
		h.broadcastScene(room)
	}

	if len(room.clients) == 0 {
		h.save(room)
		delete(h.rooms, client.DrawingID)
	} else {
		leaveMsg := h.message(TypePresenceLeave, client.UserID, PresenceLeavePayload{UserID: client.UserID})
		h.broadcastToRoom(room, leaveMsg, "")
	}

	h.log.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

// roomOf returns the room client belongs to, or nil once it has left.
func (h *Hub) roomOf(client *Client) *Room {
	room, ok := h.rooms[client.DrawingID]
	if !ok || room.clients[client.ClientID] != client {
		return nil
	}
	return room
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case typeRejected:
		if h.roomOf(sender) != nil {
			sender.Send(&Message{Type: TypeError, Payload: msg.Payload})
		}
	default:
		h.log.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		h.log.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room := h.roomOf(sender)
	if room == nil {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	h.broadcastToRoom(room, h.message(TypePresenceUpdate, sender.UserID, presence), sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		h.log.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.Send(errorMessage("invalid operation payload"))
		return
	}
	op := submit.Operation

	if isGesture(op.Type) && room.gestureOwner != "" && room.gestureOwner != sender.ClientID {
		sender.Send(h.nack(op, ErrGestureBusy))
		return
	}

	created, err := applyOperation(room.engine, op)
	if err != nil {
		h.log.Debug("operation rejected", "op", op.Type, "user", sender.UserID, "error", err)
		sender.Send(h.nack(op, err))
		return
	}

	switch {
	case room.engine.GestureState() == scene.StateReady.String():
		room.gestureOwner = ""
	case isGesture(op.Type):
		room.gestureOwner = sender.ClientID
	}
	if op.Type == OpPlace || op.Type == OpCancel {
		room.presence.SetTool(sender.UserID, op.ItemType)
	}

	room.serverSeq++
	sender.Send(h.message(TypeOpAck, "", OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       room.serverSeq,
		ServerTimestamp: time.Now().UnixMilli(),
		Created:         created,
	}))
	h.broadcastToRoom(room, h.message(TypeOpBroadcast, sender.UserID, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: room.serverSeq,
	}), sender.ClientID)
	h.broadcastScene(room)
}

// broadcastScene sends the rendered scene and history state to everyone in
// the room.
func (h *Hub) broadcastScene(room *Room) {
	h.broadcastToRoom(room, h.renderMessage(room), "")
	h.broadcastToRoom(room, h.message(TypeHistoryState, "", room.engine.HistoryState()), "")
}

func (h *Hub) renderMessage(room *Room) *Message {
	return h.message(TypeSceneRender, "", SceneRenderPayload{
		Commands:  json.RawMessage(room.engine.Render()),
		Selection: room.engine.SelectionIDs(),
		State:     room.engine.GestureState(),
	})
}

func (h *Hub) nack(op Operation, err error) *Message {
	return h.message(TypeOpNack, "", OperationNackPayload{OperationID: op.ID, Reason: err.Error()})
}

func (h *Hub) message(msgType, userID string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal payload", "type", msgType, "error", err)
	}
	return &Message{Type: msgType, UserID: userID, Payload: data}
}

func errorMessage(text string) *Message {
	data, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{Type: TypeError, Payload: data}
}

// typeRejected carries a frame the read pump refused to the hub, which
// reports it to the sender. It never comes off the wire.
const typeRejected = "rejected"

func rejectedMessage(err error) *Message {
	msg := errorMessage(err.Error())
	msg.Type = typeRejected
	return msg
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

// save persists room when it has unsaved changes.
func (h *Hub) save(room *Room) {
	if !room.engine.IsDirty() {
		return
	}
	thumb, err := room.engine.Thumbnail(thumbnailWidth, thumbnailHeight)
	if err != nil {
		h.log.Warn("failed to render thumbnail", "drawing", room.drawingID, "error", err)
	}
	if err := h.saver(room.drawingID, room.engine.GetDocument(), thumb); err != nil {
		h.log.Error("failed to save drawing", "drawing", room.drawingID, "error", err)
		return
	}
	room.engine.MarkSaved()
	h.log.Info("drawing saved", "drawing", room.drawingID)
}

// closeAll disconnects every client when the hub stops.
func (h *Hub) closeAll() {
	for _, room := range h.rooms {
		for _, c := range room.clients {
			c.closeWith(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

func (h *Hub) saveAll() {
	var errs []error
	for _, room := range h.rooms {
		h.save(room)
		if room.engine.IsDirty() {
			errs = append(errs, errors.New(room.drawingID))
		}
	}
	if len(errs) > 0 {
		h.log.Error("drawings left unsaved", "error", errors.Join(errs...))
	}
}
