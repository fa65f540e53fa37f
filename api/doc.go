// Package api provides the REST surface for the room engine.
//
// The api package implements:
//   - Room creation, lookup, and listing
//   - Message history retrieval and message posting
//   - The /ws endpoint that hands connections to the websocket transport
//
// Posting a message through REST takes the same service path as a socket
// send, so it broadcasts newMessage to the room's websocket group with
// the same ordering guarantees.
//
// Routes:
//
//	POST   /api/rooms                 create a room
//	GET    /api/rooms                 list rooms
//	GET    /api/rooms/{id}            room details
//	GET    /api/rooms/{id}/messages   message history
//	POST   /api/rooms/{id}/messages   append + broadcast a message
//	GET    /ws                        websocket upgrade
//
// Error mapping:
//
// Invalid parameters map to 400, unknown rooms to 404, and expired rooms
// to 410 Gone. All responses are JSON.
package api
