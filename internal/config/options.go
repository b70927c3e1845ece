package config

import (
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultTTLLength is the firmware's default outgoing TTL pulse length.
	DefaultTTLLength = 100 * time.Millisecond
	// DefaultRelayLength is the firmware's default valve relay active time.
	DefaultRelayLength = 500 * time.Millisecond
	// DefaultResponseTimeout bounds a single acknowledgment read.
	DefaultResponseTimeout = time.Second
	// DefaultEOL terminates every acknowledgment frame the firmware sends.
	DefaultEOL = "\r\n\n"

	// ZeroLength marks a TTL or relay length configured as zero on the
	// device. A zero Duration in Options means "use the default" instead.
	ZeroLength time.Duration = -1
)

// Options configures the protocol driver.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// TTLLength is the pulse length configured on the device. It is only used
	// to size settle delays; it is never sent to the device.
	// Zero selects DefaultTTLLength; ZeroLength describes a zero-length TTL.
	TTLLength time.Duration

	// RelayLength is the valve relay active time configured on the device.
	// Zero selects DefaultRelayLength; ZeroLength describes a zero relay time.
	RelayLength time.Duration

	// ResponseTimeout is the default acknowledgment read timeout.
	ResponseTimeout time.Duration

	// EOL is the acknowledgment frame terminator.
	EOL string

	// Firmware selects the configuration-menu dialect.
	Firmware Firmware

	// Echo receives every device response for operator visibility.
	// If nil, responses are only logged.
	Echo io.Writer

	// Clock supplies timestamps and sleeps. If nil, SystemClock is used.
	Clock Clock
}

// WithDefaults returns a copy of o with zero fields replaced by the
// firmware defaults.
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	o.TTLLength = lengthOrDefault(o.TTLLength, DefaultTTLLength)
	o.RelayLength = lengthOrDefault(o.RelayLength, DefaultRelayLength)

	if o.ResponseTimeout == 0 {
		o.ResponseTimeout = DefaultResponseTimeout
	}

	if o.EOL == "" {
		o.EOL = DefaultEOL
	}

	if o.Firmware == "" {
		o.Firmware = FirmwareTTLMode
	}

	if o.Clock == nil {
		o.Clock = SystemClock{}
	}

	return o
}

func lengthOrDefault(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	default:
		return d
	}
}

// ExplicitLength converts a length that was set on purpose into Options
// form, so that zero is kept instead of replaced by the default.
func ExplicitLength(d time.Duration) time.Duration {
	if d <= 0 {
		return ZeroLength
	}

	return d
}
