package room

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat message. The timestamp is server-assigned
// at send time; within one room timestamps are monotonic non-decreasing
// because the store processes appends one at a time.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage builds a message with a fresh unique id and the given send
// instant. Content and sender validation happens in the store before this
// is called.
func NewMessage(content, sender string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: now.UnixMilli(),
	}
}
