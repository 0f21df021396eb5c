// Package storage provides the client-side key-value storage that persists
// the SessionGate session between runs.
//
// Engines:
//
//   - badger.go: Badger v3, using native per-entry TTL
//   - bbolt.go: bbolt, storing an expiry alongside each value
//   - memory.go: process-local map, used when persistence is disabled
//
// All engines honour the same contract: a value written with a TTL is
// reported as ErrKeyNotFound once the TTL has elapsed.
package storage
