package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizlive/internal/ws"
)

// WSHandler upgrades HTTP requests and registers the sockets in the hub.
// The quiz push channel is one-way: inbound frames are drained and ignored,
// they only keep the connection (and its close detection) alive.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the websocket routes.
func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/participant", h.serveParticipant)
	mux.HandleFunc("GET /ws/teacher", h.serveTeacher)
}

func (h *WSHandler) serveParticipant(w http.ResponseWriter, r *http.Request) {
	sessionCode := r.URL.Query().Get("code")
	participantID := r.URL.Query().Get("participantId")
	if sessionCode == "" || participantID == "" {
		http.Error(w, "missing code or participantId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.hub.ConnectParticipant(conn, sessionCode, participantID)
	defer h.hub.DisconnectParticipant(participantID)

	drain(conn)
}

func (h *WSHandler) serveTeacher(w http.ResponseWriter, r *http.Request) {
	liveID := r.URL.Query().Get("liveId")
	if liveID == "" {
		http.Error(w, "missing liveId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.hub.ConnectTeacher(conn, liveID)
	defer h.hub.DisconnectTeacher(liveID)

	drain(conn)
}

func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
