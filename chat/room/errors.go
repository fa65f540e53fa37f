package room

import "errors"

// Sentinel errors for the three recoverable failure modes. Callers match
// with errors.Is; transports translate them into protocol error events or
// HTTP status codes.
var (
	// ErrInvalidParameters indicates a request with an empty name, empty
	// content/sender, or a non-positive duration.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrRoomNotFound indicates an unknown (or already evicted) room id.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExpired indicates the room id is known but its lifetime has
	// elapsed.
	ErrRoomExpired = errors.New("room has expired")
)
