package recordrig

import (
	"io"
	"log/slog"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
)

// Option configures the rig using the functional options pattern.
type Option func(*options)

type options struct {
	config.Options

	decider   Decider
	exporters []Exporter
	syncQuery *bool
}

// applyOptions applies functional options to an options struct.
func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.Logger = logger
	}
}

// WithEcho writes every device response to w, indented, as it arrives.
func WithEcho(w io.Writer) Option {
	return func(o *options) {
		o.Echo = w
	}
}

// WithClock replaces the wall clock. Tests use it to avoid real sleeps.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.Clock = clock
	}
}

// ===== Device =====

// WithTTLLength sets the TTL pulse length configured on the device. It only
// sizes settle delays; use Driver.ReconfigureTTLLength to change the device.
// Zero describes a device whose TTL length was set to 0.
func WithTTLLength(d time.Duration) Option {
	return func(o *options) {
		o.TTLLength = config.ExplicitLength(d)
	}
}

// WithRelayLength sets the valve relay active time configured on the device.
// Zero describes a device whose relay time was set to 0.
func WithRelayLength(d time.Duration) Option {
	return func(o *options) {
		o.RelayLength = config.ExplicitLength(d)
	}
}

// WithResponseTimeout sets the default acknowledgment read timeout.
func WithResponseTimeout(d time.Duration) Option {
	return func(o *options) {
		o.ResponseTimeout = d
	}
}

// WithEOL sets the acknowledgment frame terminator.
func WithEOL(eol string) Option {
	return func(o *options) {
		o.EOL = eol
	}
}

// WithFirmware selects the configuration-menu dialect from a firmware
// version string such as "2.2.0".
func WithFirmware(version string) Option {
	return func(o *options) {
		o.Firmware = config.NormalizeFirmware(version)
	}
}

// ===== Session =====

// WithDecider sets the source of offer decisions.
// If not set, every offer is accepted.
func WithDecider(d Decider) Option {
	return func(o *options) {
		o.decider = d
	}
}

// WithExporters adds sinks that receive the session once the loop ends.
// They run concurrently.
func WithExporters(exporters ...Exporter) Option {
	return func(o *options) {
		o.exporters = append(o.exporters, exporters...)
	}
}

// WithSyncQuery overrides whether the digital input is queried after each
// external sync pulse.
func WithSyncQuery(enabled bool) Option {
	return func(o *options) {
		o.syncQuery = &enabled
	}
}
