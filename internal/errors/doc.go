// Package errors defines error types for the RECORD rig host library.
//
// This package provides structured error types for the failure classes a
// session can hit: bad command arguments, transport failures, malformed
// trial-list files, and unknown tracking regions. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and
// errors.AsType.
//
// A timed-out acknowledgment is deliberately not an error at the protocol
// layer; see protocol.Ack.
package errors
