package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Hub is the session registry: it owns every live connection, every room and
// the connection-to-room mapping behind one lock. Lobby bookkeeping lives
// here; per-game state lives in the rooms, which serialize themselves.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	rooms      map[string]*Room
	clientRoom map[string]string

	clock        clockwork.Clock
	turnTimeout  time.Duration
	tickInterval time.Duration
}

func NewHub(clock clockwork.Clock, turnTimeout, tickInterval time.Duration) *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		rooms:        make(map[string]*Room),
		clientRoom:   make(map[string]string),
		clock:        clock,
		turnTimeout:  turnTimeout,
		tickInterval: tickInterval,
	}
}

// Stats is a point-in-time view for health reporting.
type Stats struct {
	Connections  int
	Rooms        int
	WaitingRooms int
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	s := Stats{Connections: len(h.clients), Rooms: len(h.rooms)}
	h.mu.RUnlock()

	for _, room := range rooms {
		if room.IsWaiting() {
			s.WaitingRooms++
		}
	}
	return s
}

// Register adds a fresh connection to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	connectionsActive.Inc()

	log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// Unregister handles an unexpected disconnect: the connection is dropped
// from the registry and its room, if any, is torn down via the shared leave
// path.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	roomID := h.clientRoom[c.ID]
	delete(h.clientRoom, c.ID)
	room := h.rooms[roomID]
	h.mu.Unlock()
	connectionsActive.Dec()

	log.Debug().Str("client_id", c.ID).Msg("client disconnected")

	if room != nil {
		if res := room.Leave(c, reasonDisconnect); res.Destroyed {
			h.removeRoom(room.ID, res.Participants)
		}
	}
	h.broadcastLobby()
}

// Dispatch routes one inbound frame to the lobby or to the sender's room.
func (h *Hub) Dispatch(c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Err(err).Str("client_id", c.ID).Msg("malformed message")
		c.enqueue(encode(MsgError, ErrorPayload{Message: "Invalid message"}))
		return
	}

	switch msg.Type {
	case MsgCreateGame:
		var p CreateGamePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || strings.TrimSpace(p.Name) == "" {
			c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrInvalidName)}))
			return
		}
		h.handleCreate(c, p.Name)

	case MsgJoinGame:
		var p RoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.RoomID == "" {
			c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrInvalidRoomID)}))
			return
		}
		h.handleJoin(c, p.RoomID)

	case MsgGetLobby:
		c.enqueue(encode(MsgUpdateLobby, h.lobbySnapshot()))

	case MsgTap:
		var p TapPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrInvalidRoomID)}))
			return
		}
		room, err := h.roomForAction(c, p.RoomID)
		if err != nil {
			c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(err)}))
			return
		}
		room.HandleTap(c, p.SquareID)

	case MsgTimeout:
		if room := h.room(roomIDFrom(msg.Payload)); room != nil {
			room.HandleTimeoutReport(c)
		}

	case MsgRematchRequest:
		if room := h.room(roomIDFrom(msg.Payload)); room != nil {
			room.HandleRematchRequest(c)
		}

	case MsgAcceptRematch:
		if room := h.room(roomIDFrom(msg.Payload)); room != nil {
			room.HandleAcceptRematch(c)
		}

	case MsgDeclineRematch:
		room := h.room(roomIDFrom(msg.Payload))
		if room != nil && room.HandleDeclineRematch(c) {
			h.removeRoom(room.ID, room.ParticipantIDs())
			h.broadcastLobby()
		}

	case MsgExitGame:
		h.handleExit(c, roomIDFrom(msg.Payload))

	default:
		log.Debug().Str("client_id", c.ID).Str("type", msg.Type).Msg("unknown message type")
	}
}

func roomIDFrom(raw json.RawMessage) string {
	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return p.RoomID
}

func (h *Hub) handleCreate(c *Client, name string) {
	h.mu.Lock()
	if _, busy := h.clientRoom[c.ID]; busy {
		h.mu.Unlock()
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrAlreadyInRoom)}))
		return
	}
	room := newRoom(uuid.NewString(), name, c, h.clock, h.turnTimeout, h.tickInterval)
	h.rooms[room.ID] = room
	h.clientRoom[c.ID] = room.ID
	roomsOpen.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	log.Info().
		Str("room_id", room.ID).
		Str("name", room.Name).
		Str("client_id", c.ID).
		Msg("room created")

	c.enqueue(encode(MsgGameCreated, GameCreatedPayload{RoomID: room.ID, Name: room.Name}))
	h.broadcastLobby()
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	h.mu.RLock()
	room := h.rooms[roomID]
	_, busy := h.clientRoom[c.ID]
	h.mu.RUnlock()

	if room == nil {
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrNotJoinable)}))
		return
	}
	if busy {
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrAlreadyInRoom)}))
		return
	}
	if err := room.Join(c); err != nil {
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(err)}))
		return
	}

	h.mu.Lock()
	h.clientRoom[c.ID] = roomID
	h.mu.Unlock()

	h.broadcastLobby()
}

func (h *Hub) handleExit(c *Client, roomID string) {
	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()

	if room == nil || !room.HasParticipant(c) {
		c.enqueue(encode(MsgExitConfirmed, ExitConfirmedPayload{Message: "Game not found"}))
		return
	}

	res := room.Leave(c, reasonForfeit)
	c.enqueue(encode(MsgExitConfirmed, ExitConfirmedPayload{Message: "You exited the game"}))
	if res.Destroyed {
		h.removeRoom(room.ID, res.Participants)
	}
	h.broadcastLobby()
}

// room returns the room by id, or nil.
func (h *Hub) room(roomID string) *Room {
	if roomID == "" {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID]
}

// roomForAction resolves a gameplay message against the sender's registry
// entry, so a stale or mis-addressed action can never touch another game.
func (h *Hub) roomForAction(c *Client, roomID string) (*Room, error) {
	h.mu.RLock()
	room := h.rooms[roomID]
	mapped := h.clientRoom[c.ID]
	h.mu.RUnlock()

	if room == nil {
		return nil, ErrNotActive
	}
	if mapped != roomID {
		return nil, ErrWrongRoom
	}
	return room, nil
}

// removeRoom drops a torn-down room and clears the registry entries of its
// participants.
func (h *Hub) removeRoom(roomID string, participants []string) {
	h.mu.Lock()
	delete(h.rooms, roomID)
	for _, id := range participants {
		if h.clientRoom[id] == roomID {
			delete(h.clientRoom, id)
		}
	}
	roomsOpen.Set(float64(len(h.rooms)))
	h.mu.Unlock()
}

// lobbySnapshot lists every room still waiting for an opponent. Clients
// always receive the full list, never a diff, so a missed update is healed
// by the next one.
func (h *Hub) lobbySnapshot() []LobbyEntry {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	entries := make([]LobbyEntry, 0, len(rooms))
	for _, room := range rooms {
		if room.IsWaiting() {
			entries = append(entries, LobbyEntry{RoomID: room.ID, Name: room.Name, State: StateWaiting})
		}
	}
	return entries
}

// broadcastLobby pushes the current waiting-room snapshot to every
// connection, not just room participants.
func (h *Hub) broadcastLobby() {
	data := encode(MsgUpdateLobby, h.lobbySnapshot())

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.RUnlock()

	for _, cl := range targets {
		cl.enqueue(data)
	}
}
