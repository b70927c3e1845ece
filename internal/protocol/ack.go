package protocol

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// NoResponse replaces the frame text when no complete acknowledgment arrived
// before the read timeout. Callers compare against it; it is never device data.
const NoResponse = "No response message available..."

// ackMarker is the byte whose arrival marks the device execution instant.
const ackMarker = ':'

// Ack is one acknowledgment frame read from the device.
type Ack struct {
	// Text is the frame contents, or NoResponse on timeout or read failure.
	Text string
	// At is the arrival time of the ':' marker. When the marker never
	// arrived it is the time the frame completed or the read gave up.
	At time.Time
	// Marked reports whether At came from the ':' marker.
	Marked bool
	// TimedOut is set when the end-of-line marker did not arrive in time.
	TimedOut bool
	// ReadErr holds a transport read failure or context error.
	ReadErr error
}

// Err returns the read failure, ErrResponseTimeout for a timed-out frame, or
// nil for a complete frame.
func (a Ack) Err() error {
	switch {
	case a.ReadErr != nil:
		return a.ReadErr
	case a.TimedOut:
		return errors.ErrResponseTimeout
	default:
		return nil
	}
}

// FetchOption adjusts a single FetchResponse call.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	timeout time.Duration
	cleanup bool
	eol     string
}

// WithTimeout bounds the read. The default is Options.ResponseTimeout.
func WithTimeout(d time.Duration) FetchOption {
	return func(o *fetchOptions) {
		o.timeout = d
	}
}

// KeepLineEndings returns the frame text with its '\r' and '\n' bytes intact.
func KeepLineEndings() FetchOption {
	return func(o *fetchOptions) {
		o.cleanup = false
	}
}

// WithEOL overrides the frame terminator. The default is Options.EOL.
func WithEOL(eol string) FetchOption {
	return func(o *fetchOptions) {
		o.eol = eol
	}
}

// FetchResponse reads one acknowledgment frame.
//
// Bytes are consumed one at a time until the accumulated text contains the
// end-of-line marker or the timeout, measured from the start of the call,
// elapses. Whatever happens, stray input is flushed afterward so an overrun
// from this exchange cannot bleed into the next one. FetchResponse never
// blocks past its timeout by more than one transport read.
func (d *Driver) FetchResponse(ctx context.Context, opts ...FetchOption) Ack {
	fo := fetchOptions{
		timeout: d.opts.ResponseTimeout,
		cleanup: true,
		eol:     d.opts.EOL,
	}

	for _, opt := range opts {
		opt(&fo)
	}

	ack := d.readFrame(ctx, fo)

	if ack.TimedOut {
		d.log.Warn("No acknowledgment before timeout", "timeout", fo.timeout)
	} else if ack.ReadErr != nil {
		d.log.Warn("Acknowledgment read failed", "error", ack.ReadErr)
	} else {
		d.log.Debug("Acknowledgment received", "text", ack.Text, "ack_at", ack.At, "marked", ack.Marked)
	}

	if fo.cleanup {
		ack.Text = stripLineEndings(ack.Text)
	}

	if d.echo != nil {
		fmt.Fprintf(d.echo, "   %s\n", ack.Text)
	}

	return ack
}

func (d *Driver) readFrame(ctx context.Context, fo fetchOptions) Ack {
	d.mu.Lock()
	defer d.mu.Unlock()

	defer func() {
		if err := d.transport.Flush(); err != nil {
			d.log.Debug("Failed to flush input after acknowledgment", "error", err)
		}
	}()

	if !d.open {
		return Ack{
			Text:    NoResponse,
			At:      d.clock.Now(),
			ReadErr: &errors.TransportError{Op: "read", Err: errors.ErrTransportNotOpen},
		}
	}

	eol := []byte(fo.eol)
	start := d.clock.Now()
	frame := make([]byte, 0, 64)
	one := make([]byte, 1)

	var ack Ack

	for !bytes.Contains(frame, eol) {
		now := d.clock.Now()
		if now.Sub(start) >= fo.timeout {
			return Ack{Text: NoResponse, At: now, TimedOut: true}
		}

		if err := ctx.Err(); err != nil {
			return Ack{Text: NoResponse, At: now, ReadErr: err}
		}

		n, err := d.transport.Read(one)
		if err != nil {
			return Ack{
				Text:    NoResponse,
				At:      d.clock.Now(),
				ReadErr: &errors.TransportError{Op: "read", Err: err},
			}
		}

		if n == 0 {
			continue
		}

		if one[0] == ackMarker && !ack.Marked {
			ack.At = d.clock.Now()
			ack.Marked = true
		}

		frame = append(frame, one[0])
	}

	if !ack.Marked {
		ack.At = d.clock.Now()
	}

	ack.Text = string(frame)

	return ack
}

func stripLineEndings(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
