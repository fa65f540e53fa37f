package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// millisPerMinute converts a duration in minutes to epoch-millisecond math.
const millisPerMinute = 60_000

// Room is a named, time-boxed container for an ordered sequence of
// messages. ID, Name, CreatedAt, and ExpiresAt are immutable once set;
// Messages is append-only and preserves insertion (chronological) order.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt int64     `json:"createdAt"`
	ExpiresAt int64     `json:"expiresAt"`
	Messages  []Message `json:"messages"`
}

// New constructs a live room with a fresh unique id. The name must be
// non-empty after trimming and durationMinutes must be positive; anything
// else fails with ErrInvalidParameters and no room is produced.
func New(name string, durationMinutes int, now time.Time) (Room, error) {
	if strings.TrimSpace(name) == "" {
		return Room{}, fmt.Errorf("%w: room name must not be empty", ErrInvalidParameters)
	}
	if durationMinutes <= 0 {
		return Room{}, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidParameters, durationMinutes)
	}

	createdAt := now.UnixMilli()
	return Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: createdAt,
		ExpiresAt: createdAt + int64(durationMinutes)*millisPerMinute,
	}, nil
}

// Expired reports whether the room's lifetime has elapsed at the given
// instant. The boundary is inclusive: a room is already expired at the
// exact millisecond now equals ExpiresAt.
func (r *Room) Expired(now time.Time) bool {
	return now.UnixMilli() >= r.ExpiresAt
}

// Append adds a message to the end of the sequence. The store calls this
// while holding its write lock; the room itself carries no locking.
func (r *Room) Append(msg Message) {
	r.Messages = append(r.Messages, msg)
}

// Snapshot returns a copy of the room with its own message slice, safe to
// hand to concurrent readers while the original keeps being appended to.
func (r *Room) Snapshot() Room {
	out := *r
	out.Messages = make([]Message, len(r.Messages))
	copy(out.Messages, r.Messages)
	return out
}
