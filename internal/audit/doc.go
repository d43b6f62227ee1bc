// Package audit implements async dispatching of access-decision events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with id, timestamp, type, user, IP, path, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; that belongs to the Manager.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on access-control logic.
//   - Import goChmod or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
