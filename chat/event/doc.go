// Package event defines the wire protocol between clients and the room
// engine.
//
// Every frame on the websocket is a JSON envelope:
//
//	{"type": "sendMessage", "data": {"roomId": "...", "content": "hi", "sender": "ana"}}
//
// Client to server: createRoom, joinRoom, syncTime, sendMessage.
// Server to client: roomCreated, roomJoined, messageHistory, newMessage,
// roomExpired, error.
//
// Targeted events go to a single connection; newMessage and roomExpired
// are broadcast to every connection subscribed to the room. roomExpired is
// guaranteed to be the last event a room's group ever receives.
//
// Timestamps in payloads are epoch milliseconds, matching the room domain
// types, so clients can compute countdowns directly against expiresAt.
package event
