package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"

	"github.com/emberchat/emberchat/chat/room"
	"github.com/emberchat/emberchat/chat/service"
	"github.com/emberchat/emberchat/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.ChatService
	hub     *websocket.Hub
	router  *mux.Router
}

// RoomInfo is the REST view of a room: identity and deadline without the
// message payload.
type RoomInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt"`
	ExpiresAt    int64  `json:"expiresAt"`
	MessageCount int    `json:"messageCount"`
	JoinPath     string `json:"joinPath"`
}

// NewServer creates a new API server
func NewServer(chatService service.ChatService, hub *websocket.Hub) *Server {
	s := &Server{
		service: chatService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Room management
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")

	// Messages
	api.HandleFunc("/rooms/{id}/messages", s.handleGetMessages).Methods("GET")
	api.HandleFunc("/rooms/{id}/messages", s.handlePostMessage).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrRoomExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// roomInfo builds the REST view, including the relative join path the
// front end turns into a shareable link.
func roomInfo(r room.Room) RoomInfo {
	q := url.Values{}
	q.Set("roomId", r.ID)
	q.Set("name", r.Name)

	return RoomInfo{
		ID:           r.ID,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
		ExpiresAt:    r.ExpiresAt,
		MessageCount: len(r.Messages),
		JoinPath:     "/chat?" + q.Encode(),
	}
}

// Room Handlers

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		DurationMinutes int    `json:"durationMinutes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := s.service.CreateRoom(req.Name, req.DurationMinutes)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, roomInfo(created))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.service.Rooms()

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")  // "created" (default), "expires"
	order := query.Get("order")  // "asc" (default), "desc"

	sort.Slice(rooms, func(i, j int) bool {
		var ti, tj int64
		if sortBy == "expires" {
			ti, tj = rooms[i].ExpiresAt, rooms[j].ExpiresAt
		} else { // "created"
			ti, tj = rooms[i].CreatedAt, rooms[j].CreatedAt
		}
		if order == "desc" {
			return ti > tj
		}
		return ti < tj
	})

	infos := make([]RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		infos = append(infos, roomInfo(rm))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(infos),
		"rooms": infos,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	rm, err := s.service.Room(roomID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, roomInfo(rm))
}

// Message Handlers

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	rm, err := s.service.Room(roomID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(rm.Messages),
		"messages": rm.Messages,
	})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["id"]

	var req struct {
		Content string `json:"content"`
		Sender  string `json:"sender"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The service broadcasts newMessage to the room's websocket group.
	msg, err := s.service.SendMessage(roomID, req.Content, req.Sender)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(s.service, s.hub, w, r)
}
