// Package room defines the domain types for ephemeral chat rooms.
//
// The room package implements:
//   - Room: a named, time-boxed container for an ordered message sequence
//   - Message: an immutable chat message with a server-assigned timestamp
//   - Construction and validation for both types
//   - The error taxonomy shared by every layer above
//
// Lifetimes:
//
// A room's lifetime is fixed at creation: ExpiresAt is derived from
// CreatedAt plus the requested duration in minutes and never changes.
// A room is live strictly before ExpiresAt; at the exact instant the
// clock reaches ExpiresAt the room is considered expired.
//
// Timestamps:
//
// All instants are epoch milliseconds (UTC), matching the wire protocol.
// Callers supply time.Time values and the package converts once at the
// boundary.
//
// Immutability:
//
// Messages are never mutated after construction. Rooms are only mutated
// by the store that owns them; Snapshot returns a defensive copy so room
// internals never escape to concurrent readers.
package room
