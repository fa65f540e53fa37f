// Package service wires the room store to the broadcast fan-out.
//
// The service package implements:
//   - ChatService: every operation the transports expose
//   - The publish lock that makes append-then-broadcast one ordered step
//   - Atomic join: snapshot, targeted history, then subscription
//   - SweepExpired: the eviction pass driven by the Sweeper
//   - Sweeper: a context-cancelled ticker owned by the process lifecycle
//
// Ordering guarantees:
//
// Within one room, newMessage broadcasts leave the service in exactly the
// order the store committed the appends, and roomExpired is the last event
// a room's group ever receives. Both follow from a single mutex held
// across the store mutation and the broadcast enqueue.
//
// A joining connection receives roomJoined, then a history containing
// every message appended strictly before its join resolved, then only
// newMessage broadcasts for later appends. The join happens under the
// same mutex, so no message is duplicated into both and none falls in the
// gap.
//
// The service holds no authoritative state of its own; rooms live in the
// store and group membership lives in the Broadcaster.
package service
