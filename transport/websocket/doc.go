// Package websocket provides the realtime transport for the room engine.
//
// The websocket package implements:
//   - Hub: the per-room broadcast groups (publish/subscribe registry)
//   - Client: one connection's read/write pumps and outbound queue
//   - The per-connection session gateway dispatching protocol events
//
// Architecture:
//
// The hub is a registry only: it maps room ids to subscriber sets and
// delivers events into each subscriber's buffered queue. It owns no room
// state, so a group can outlive its room just long enough to receive the
// final roomExpired event before the group is dropped.
//
// Each client connection runs two goroutines. The read pump decodes
// inbound envelopes and drives the session state machine
// (unjoined -> joined -> closed); the write pump drains the outbound
// queue and keeps the connection alive with pings.
//
// Message Protocol:
//
// Frames are JSON envelopes defined in chat/event, e.g.
//
//	{"type": "joinRoom", "data": {"roomId": "..."}}
//
// Backpressure:
//
// A subscriber whose outbound buffer fills is dropped from its groups
// rather than allowed to block the broadcast path.
//
// Concurrency:
//
// Group membership is guarded by a single hub mutex; subscribe and
// unsubscribe are O(1). Delivery happens under that mutex, which combined
// with the service's publish lock yields one total event order per room.
package websocket
