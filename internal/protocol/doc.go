// Package protocol implements the command/acknowledgment exchange with the
// RECORD microcontroller.
//
// The protocol package provides a Driver that turns one physical action into
// exactly one write on the transport, captures the host send time, and
// sleeps for the action's settle delay so the next command is never issued
// while the device is still executing the previous one.
//
// Acknowledgments are read by a separate FetchResponse call. An ack frame is
// free text terminated by "\r\n\n"; the arrival of its ':' byte is latched as
// the device execution time. A frame that does not complete within the read
// timeout yields the NoResponse sentinel rather than an error.
//
// The Driver handles:
//   - Range validation of feeder, level, valve and calibration arguments
//     before any byte is written
//   - Per-action settle delays derived from the device TTL and relay lengths
//   - Byte-wise ack reading with a hard deadline and trailing-byte flush
//   - Scripted configuration-menu sequences
//   - Parsing of device text behind one function per message type
//
// Example usage:
//
//	driver := protocol.NewDriver(transport, config.Options{Logger: log})
//	if err := driver.Open(); err != nil {
//	    return err
//	}
//	defer driver.Close()
//
//	res := driver.Reset(ctx, protocol.NoDelay())
//	ack := driver.FetchResponse(ctx)
//	fmt.Println(res.SentAt, ack.Text, ack.At)
package protocol
