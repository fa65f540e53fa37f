package websocket

import (
	"log"
	"sync"

	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/chat/service"
)

// Hub maintains the broadcast group for every room id: the set of
// subscribers currently joined to that room. Membership is independent of
// room existence; the service drops a group via CloseRoom after eviction.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[service.Subscriber]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[service.Subscriber]bool),
	}
}

// Subscribe adds the subscriber to the room's group, creating the group
// if needed.
func (h *Hub) Subscribe(roomID string, sub service.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[service.Subscriber]bool)
	}
	h.rooms[roomID][sub] = true
}

// Unsubscribe removes the subscriber from the room's group. Empty groups
// are deleted; removing an absent subscriber is a no-op.
func (h *Hub) Unsubscribe(roomID string, sub service.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(roomID, sub)
}

// Broadcast delivers the event to every subscriber in the room's group.
// Subscribers that can no longer accept events are dropped.
func (h *Hub) Broadcast(roomID string, evt event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(roomID, evt)
}

// CloseRoom delivers the final event to the group and drops the group
// entirely. After this the room id is never addressed again.
func (h *Hub) CloseRoom(roomID string, final event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliver(roomID, final)
	delete(h.rooms, roomID)
}

// GroupSize returns the number of subscribers in a room's group.
func (h *Hub) GroupSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// deliver fans the event out to one group. Callers hold h.mu.
func (h *Hub) deliver(roomID string, evt event.Event) {
	for sub := range h.rooms[roomID] {
		if !sub.Send(evt) {
			// Slow or gone; drop it instead of blocking the room.
			log.Printf("Dropping slow subscriber from room %s", roomID)
			h.remove(roomID, sub)
		}
	}
}

// remove deletes one subscriber and cleans up an emptied group. Callers
// hold h.mu.
func (h *Hub) remove(roomID string, sub service.Subscriber) {
	group, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if group[sub] {
		delete(group, sub)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
