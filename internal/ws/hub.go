// Package ws tracks the live sockets of a session and fans session events
// out to them. Delivery is best-effort and at-most-once: a socket that fails
// a write is dropped from the registry and nobody is told. This is a live
// presentation tool, not a durable messaging system; a participant who
// misses a push can still pull the next question over HTTP.
package ws

import (
	"log"
	"sync"
)

// Message is an opaque structured payload tagged with a "type" discriminator
// (e.g. "round.start", "lobby.update", "live.end").
type Message map[string]any

// Conn is the subset of a websocket connection the hub needs.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
}

// client wraps a registered connection with its own write lock: sends from
// concurrent broadcasts must not interleave on one socket.
type client struct {
	mu   sync.Mutex
	conn Conn
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub is the registry of live connections: one socket per participant id,
// one teacher socket per live id, and per-session-code rooms for broadcast.
// The participant map and the room map are kept consistent under one lock.
type Hub struct {
	mu           sync.Mutex
	participants map[string]*client            // participant id -> socket
	teachers     map[string]*client            // live id -> teacher socket
	rooms        map[string]map[string]*client // session code -> participant id -> socket
	roomOf       map[string]string             // participant id -> session code
}

func NewHub() *Hub {
	return &Hub{
		participants: make(map[string]*client),
		teachers:     make(map[string]*client),
		rooms:        make(map[string]map[string]*client),
		roomOf:       make(map[string]string),
	}
}

// ConnectParticipant registers a participant socket in both the id map and
// the session room. A second connect for the same id supersedes the previous
// socket silently.
func (h *Hub) ConnectParticipant(conn Conn, sessionCode, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeParticipantLocked(participantID)
	cl := &client{conn: conn}
	h.participants[participantID] = cl
	room, ok := h.rooms[sessionCode]
	if !ok {
		room = make(map[string]*client)
		h.rooms[sessionCode] = room
	}
	room[participantID] = cl
	h.roomOf[participantID] = sessionCode
	log.Printf("participant %s connected to session %s", participantID, sessionCode)
}

// ConnectTeacher registers the dashboard socket for a session. Single slot:
// a later connect replaces the previous recipient, which is abandoned rather
// than closed.
func (h *Hub) ConnectTeacher(conn Conn, liveID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teachers[liveID] = &client{conn: conn}
	log.Printf("teacher connected to session %s", liveID)
}

// DisconnectParticipant removes a participant socket. Idempotent: removing
// an unknown id is a no-op.
func (h *Hub) DisconnectParticipant(participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeParticipantLocked(participantID)
}

// DisconnectTeacher removes the dashboard socket. Idempotent.
func (h *Hub) DisconnectTeacher(liveID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.teachers, liveID)
}

func (h *Hub) removeParticipantLocked(participantID string) {
	if _, ok := h.participants[participantID]; !ok {
		return
	}
	delete(h.participants, participantID)
	if code, ok := h.roomOf[participantID]; ok {
		delete(h.roomOf, participantID)
		if room, ok := h.rooms[code]; ok {
			delete(room, participantID)
			if len(room) == 0 {
				delete(h.rooms, code)
			}
		}
	}
}

// SendToParticipant delivers one message to one participant. On write
// failure the stale registration is dropped; the caller is never notified.
func (h *Hub) SendToParticipant(participantID string, msg Message) {
	h.mu.Lock()
	cl, ok := h.participants[participantID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := cl.send(msg); err != nil {
		log.Printf("send to participant %s failed: %v", participantID, err)
		h.DisconnectParticipant(participantID)
	}
}

// SendToTeacher delivers one message to the session dashboard, with the same
// drop-on-failure contract as SendToParticipant.
func (h *Hub) SendToTeacher(liveID string, msg Message) {
	h.mu.Lock()
	cl, ok := h.teachers[liveID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := cl.send(msg); err != nil {
		log.Printf("send to teacher %s failed: %v", liveID, err)
		h.mu.Lock()
		delete(h.teachers, liveID)
		h.mu.Unlock()
	}
}

// BroadcastToSession sends to the teacher first, then to every participant
// registered under sessionCode. The recipient set is snapshotted before the
// sweep, a failed socket does not abort delivery to the rest, and failures
// are deregistered only after the full sweep.
func (h *Hub) BroadcastToSession(liveID string, msg Message, sessionCode string) {
	h.SendToTeacher(liveID, msg)
	if sessionCode == "" {
		return
	}

	h.mu.Lock()
	room := h.rooms[sessionCode]
	recipients := make(map[string]*client, len(room))
	for id, cl := range room {
		recipients[id] = cl
	}
	h.mu.Unlock()

	var failed []string
	for id, cl := range recipients {
		if err := cl.send(msg); err != nil {
			log.Printf("broadcast to participant %s failed: %v", id, err)
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		h.DisconnectParticipant(id)
	}
}
