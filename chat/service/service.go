package service

import (
	"fmt"
	"sync"

	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/chat/room"
	"github.com/emberchat/emberchat/chat/store"
)

// Subscriber is one connection's outbound event queue. Send must not
// block; it reports false once the subscriber can no longer accept
// events, at which point the Broadcaster drops it from its groups.
type Subscriber interface {
	Send(evt event.Event) bool
}

// Broadcaster is the per-room publish/subscribe registry, decoupled from
// the store so a group can outlive its room long enough to receive the
// final roomExpired event.
type Broadcaster interface {
	// Subscribe adds the subscriber to the room's group. O(1).
	Subscribe(roomID string, sub Subscriber)
	// Unsubscribe removes the subscriber from the room's group. Removing
	// an absent subscriber is a no-op. O(1).
	Unsubscribe(roomID string, sub Subscriber)
	// Broadcast delivers the event to every subscriber in the group.
	Broadcast(roomID string, evt event.Event)
	// CloseRoom delivers the final event to the group and then drops the
	// group; the room id is never addressed again.
	CloseRoom(roomID string, final event.Event)
}

// ChatService defines all room operations exposed by the transports.
type ChatService interface {
	CreateRoom(name string, durationMinutes int) (room.Room, error)
	Room(id string) (room.Room, error)
	Rooms() []room.Room
	Join(id string, sub Subscriber) (room.Room, error)
	Leave(roomID string, sub Subscriber)
	SyncTime(id string, sub Subscriber) (room.Room, bool)
	SendMessage(id, content, sender string) (room.Message, error)
	SweepExpired() int
}

// Service is the concrete ChatService backed by an in-memory store and a
// websocket hub.
type Service struct {
	store *store.Store
	hub   Broadcaster

	// mu is the publish lock. Holding it across a store mutation and the
	// matching broadcast enqueue gives every group a single total event
	// order per room.
	mu sync.Mutex
}

// New creates a service over the given store and broadcaster.
func New(st *store.Store, hub Broadcaster) *Service {
	return &Service{store: st, hub: hub}
}

// CreateRoom validates and inserts a new room. Creation does not join the
// caller to the room.
func (s *Service) CreateRoom(name string, durationMinutes int) (room.Room, error) {
	return s.store.Create(name, durationMinutes)
}

// Room returns a snapshot of the room, messages included.
func (s *Service) Room(id string) (room.Room, error) {
	return s.store.Get(id)
}

// Rooms returns snapshots of every live room.
func (s *Service) Rooms() []room.Room {
	return s.store.List()
}

// Join atomically snapshots the room, emits roomJoined and messageHistory
// to the subscriber, and adds it to the room's group. Messages appended
// after the snapshot reach the subscriber only as newMessage broadcasts.
// Fails with room.ErrRoomNotFound or room.ErrRoomExpired without touching
// group membership.
func (s *Service) Join(id string, sub Subscriber) (room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Get(id)
	if err != nil {
		return room.Room{}, err
	}
	if snap.Expired(s.store.Now()) {
		return room.Room{}, fmt.Errorf("%w: %s", room.ErrRoomExpired, id)
	}

	sub.Send(event.RoomJoined(snap))
	sub.Send(event.MessageHistory(snap.Messages))
	s.hub.Subscribe(id, sub)

	return snap, nil
}

// Leave removes the subscriber from the room's group. Safe to call with a
// room id that no longer exists.
func (s *Service) Leave(roomID string, sub Subscriber) {
	s.hub.Unsubscribe(roomID, sub)
}

// SyncTime re-emits roomJoined to the subscriber so it can recompute its
// countdown against the authoritative expiresAt. Silently ignored when
// the room is absent; the second return reports whether a frame was sent.
func (s *Service) SyncTime(id string, sub Subscriber) (room.Room, bool) {
	snap, err := s.store.Get(id)
	if err != nil {
		return room.Room{}, false
	}
	sub.Send(event.RoomJoined(snap))
	return snap, true
}

// SendMessage appends to the room and broadcasts newMessage to the whole
// group, sender included. Append and broadcast happen under the publish
// lock so concurrent sends to one room fan out in commit order.
func (s *Service) SendMessage(id, content, sender string) (room.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.store.Append(id, content, sender)
	if err != nil {
		return room.Message{}, err
	}
	s.hub.Broadcast(id, event.NewMessage(msg))
	return msg, nil
}

// SweepExpired evicts every room whose lifetime has elapsed and sends the
// final roomExpired broadcast to each evicted room's group. Returns the
// number of rooms evicted. Eviction is idempotent: ids already gone by
// the time they are reached are skipped without a broadcast.
func (s *Service) SweepExpired() int {
	refs := s.store.Snapshot()
	nowMillis := s.store.Now().UnixMilli()

	evicted := 0
	for _, ref := range refs {
		if ref.ExpiresAt > nowMillis {
			continue
		}

		s.mu.Lock()
		if _, ok := s.store.Evict(ref.ID); ok {
			s.hub.CloseRoom(ref.ID, event.RoomExpired())
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}
