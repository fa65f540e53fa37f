// Package store provides the in-memory room store.
//
// The store package implements:
//   - Thread-safe room storage keyed by opaque room id
//   - Room creation with validated parameters
//   - The single append path for messages, with expiry checked at call time
//   - Idempotent eviction used by the expiry sweeper
//   - Consistent read-only snapshots for the sweeper and list surfaces
//
// Ownership:
//
// The store exclusively owns Room and Message lifetimes. Every accessor
// returns copies; the raw map and live room pointers never escape, so
// callers cannot mutate state behind the store's back.
//
// Concurrency:
//
// A single RWMutex guards the whole map. Appends and evictions for the
// same room therefore serialize, which keeps message order intact and
// prevents an append from racing an eviction. Reads take the shared lock
// and may proceed concurrently.
//
// Clock:
//
// The store reads time through an injectable clock so expiry behavior is
// testable without wall-clock sleeps. Production code uses time.Now.
package store
