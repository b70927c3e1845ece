// Package config provides configuration types for the RECORD rig host library.
package config

// Transport defines the byte channel to the RECORD microcontroller.
// Implement this to provide custom transports for testing, mocking,
// or alternative links (e.g., a TCP serial bridge).
//
// The default implementation is serialport.Port which wraps a local serial
// device. A Transport is owned by exactly one driver; it is never used from
// more than one goroutine at a time.
type Transport interface {
	// Open prepares the channel for communication.
	// Opening an already open transport is a no-op.
	Open() error

	// Write sends raw command bytes to the device.
	Write(p []byte) (int, error)

	// Read fills p with available bytes. It returns (0, nil) when its own
	// read timeout elapses without data, so callers can poll a deadline.
	Read(p []byte) (int, error)

	// Flush discards any bytes pending in the input buffer.
	Flush() error

	// Close releases the channel. It's safe to call Close multiple times.
	Close() error
}
