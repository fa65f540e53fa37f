package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/emberchat/emberchat/chat/room"
)

// Store holds every live room for the lifetime of the process. It is the
// only component allowed to mutate rooms.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
	now   func() time.Time
}

// RoomRef is the (id, expiresAt) pair the sweeper scans. ExpiresAt is
// epoch milliseconds.
type RoomRef struct {
	ID        string
	ExpiresAt int64
}

// New creates an empty store using the system clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty store reading time through the given
// function. Tests use this to step expiry deterministically.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		rooms: make(map[string]*room.Room),
		now:   now,
	}
}

// Now returns the store's current instant. Layers that need to compare
// against room expiry use this so the whole engine shares one clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Create validates the parameters, builds a live room with a fresh id,
// and inserts it. It fails with room.ErrInvalidParameters on an empty
// name or non-positive duration.
func (s *Store) Create(name string, durationMinutes int) (room.Room, error) {
	r, err := room.New(name, durationMinutes, s.now())
	if err != nil {
		return room.Room{}, err
	}

	// Snapshot before the pointer is visible to other goroutines; once
	// inserted, the room may only be read under the lock.
	snap := r.Snapshot()

	s.mu.Lock()
	s.rooms[r.ID] = &r
	s.mu.Unlock()

	return snap, nil
}

// Get returns a snapshot of the room, messages included. It is a pure
// read and fails with room.ErrRoomNotFound if the id is absent. Expiry is
// deliberately not checked here; callers that need a live room compare
// the snapshot against Now.
func (s *Store) Get(id string) (room.Room, error) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()

	if !ok {
		return room.Room{}, fmt.Errorf("%w: %s", room.ErrRoomNotFound, id)
	}
	return r.Snapshot(), nil
}

// Append builds a message through the message factory and appends it to
// the room, preserving order. Expiry is checked at call time under the
// write lock: a room can transition from live to expired between two
// calls, and an expired room's sequence is left untouched.
func (s *Store) Append(id, content, sender string) (room.Message, error) {
	if strings.TrimSpace(content) == "" {
		return room.Message{}, fmt.Errorf("%w: message content must not be empty", room.ErrInvalidParameters)
	}
	if strings.TrimSpace(sender) == "" {
		return room.Message{}, fmt.Errorf("%w: sender must not be empty", room.ErrInvalidParameters)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return room.Message{}, fmt.Errorf("%w: %s", room.ErrRoomNotFound, id)
	}

	now := s.now()
	if r.Expired(now) {
		return room.Message{}, fmt.Errorf("%w: %s", room.ErrRoomExpired, id)
	}

	msg := room.NewMessage(content, sender, now)
	r.Append(msg)
	return msg, nil
}

// Evict removes the room and returns its final snapshot. Evicting an
// already-absent id is a no-op, not an error; the second return reports
// whether a room was actually removed.
func (s *Store) Evict(id string) (room.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return room.Room{}, false
	}
	delete(s.rooms, id)
	return r.Snapshot(), true
}

// Snapshot returns the (id, expiresAt) pairs of every room at the instant
// of the call. The sweeper scans this instead of touching the map.
func (s *Store) Snapshot() []RoomRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]RoomRef, 0, len(s.rooms))
	for id, r := range s.rooms {
		refs = append(refs, RoomRef{ID: id, ExpiresAt: r.ExpiresAt})
	}
	return refs
}

// List returns snapshots of every room, for the read-only list surfaces.
func (s *Store) List() []room.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]room.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// Count returns the number of rooms currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
