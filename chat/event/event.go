package event

import (
	"encoding/json"
	"fmt"

	"github.com/emberchat/emberchat/chat/room"
)

// Type discriminates protocol events.
type Type string

// Client to server event types.
const (
	TypeCreateRoom  Type = "createRoom"
	TypeJoinRoom    Type = "joinRoom"
	TypeSyncTime    Type = "syncTime"
	TypeSendMessage Type = "sendMessage"
)

// Server to client event types.
const (
	TypeRoomCreated    Type = "roomCreated"
	TypeRoomJoined     Type = "roomJoined"
	TypeMessageHistory Type = "messageHistory"
	TypeNewMessage     Type = "newMessage"
	TypeRoomExpired    Type = "roomExpired"
	TypeError          Type = "error"
)

// Event is an outbound frame: a type tag plus a JSON-serializable payload.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data,omitempty"`
}

// Envelope is an inbound frame before its payload is decoded. Data stays
// raw until the type tag selects the payload struct.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the envelope's payload into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %q has no payload", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding %q payload: %w", e.Type, err)
	}
	return nil
}

// CreateRoomData asks the engine to create a named, time-boxed room.
type CreateRoomData struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

// JoinRoomData subscribes the connection to a room's broadcast group.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// SyncTimeData asks for a fresh roomJoined frame so the client can
// recompute its countdown against the authoritative expiresAt.
type SyncTimeData struct {
	RoomID string `json:"roomId"`
}

// SendMessageData appends a message to a room.
type SendMessageData struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// RoomCreatedData acknowledges room creation to the caller only; creating
// a room does not imply joining it.
type RoomCreatedData struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expiresAt"`
}

// RoomJoinedData carries the room identity and deadline to one client.
type RoomJoinedData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
}

// MessageHistoryData carries every message appended before the join
// resolved, in chronological order.
type MessageHistoryData struct {
	Messages []room.Message `json:"messages"`
}

// NewMessageData carries one freshly appended message to the whole group,
// sender included.
type NewMessageData struct {
	Message room.Message `json:"message"`
}

// ErrorData reports a recoverable, connection-local failure.
type ErrorData struct {
	Message string `json:"message"`
}

// RoomCreated builds the targeted creation acknowledgement.
func RoomCreated(r room.Room) Event {
	return Event{Type: TypeRoomCreated, Data: RoomCreatedData{ID: r.ID, ExpiresAt: r.ExpiresAt}}
}

// RoomJoined builds the targeted join/sync acknowledgement.
func RoomJoined(r room.Room) Event {
	return Event{Type: TypeRoomJoined, Data: RoomJoinedData{ID: r.ID, Name: r.Name, ExpiresAt: r.ExpiresAt}}
}

// MessageHistory builds the targeted history frame. A nil slice is sent
// as an empty list so clients always see an array.
func MessageHistory(msgs []room.Message) Event {
	if msgs == nil {
		msgs = []room.Message{}
	}
	return Event{Type: TypeMessageHistory, Data: MessageHistoryData{Messages: msgs}}
}

// NewMessage builds the broadcast frame for one appended message.
func NewMessage(msg room.Message) Event {
	return Event{Type: TypeNewMessage, Data: NewMessageData{Message: msg}}
}

// RoomExpired builds the final broadcast for an evicted room's group.
func RoomExpired() Event {
	return Event{Type: TypeRoomExpired}
}

// Error builds a targeted error frame from any of the engine's
// recoverable errors.
func Error(err error) Event {
	return Event{Type: TypeError, Data: ErrorData{Message: err.Error()}}
}
