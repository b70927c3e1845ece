// Package serialport provides the serial-line Transport for the RECORD
// microcontroller, built on go.bug.st/serial.
//
// The firmware talks 9600 baud, 8 data bits, no parity, one stop bit.
// Reads poll with a short timeout so acknowledgment deadlines are honored,
// and opening retries with exponential backoff while the USB adapter
// enumerates.
package serialport
