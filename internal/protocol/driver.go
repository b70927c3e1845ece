package protocol

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Result reports the outcome of one command write.
//
// A write failure is carried in Err rather than returned, so callers always
// get the send timestamp back. Bad arguments are the only condition a Driver
// method returns as an error.
type Result struct {
	// Command is the exact payload written.
	Command string
	// SentAt is captured immediately after the write returns.
	SentAt time.Time
	// Err is a *errors.TransportError when the write failed, or the context
	// error when the settle delay was interrupted.
	Err error
}

// OK reports whether the command reached the transport and its settle delay
// completed.
func (r Result) OK() bool {
	return r.Err == nil
}

// SendOption adjusts a single command send.
type SendOption func(*sendOptions)

type sendOptions struct {
	ttlLength    time.Duration
	enforceDelay bool
}

// NoDelay skips the settle delay after the write. Use it when the caller
// reads the acknowledgment right away, which itself waits for the device.
func NoDelay() SendOption {
	return func(o *sendOptions) {
		o.enforceDelay = false
	}
}

// WithTTLLength overrides the TTL length used to size this command's settle delay.
func WithTTLLength(d time.Duration) SendOption {
	return func(o *sendOptions) {
		o.ttlLength = d
	}
}

// Driver issues RECORD commands over a Transport.
//
// A Driver serializes access to its transport: at most one write or ack read
// is in progress at any time. It never retries; a failed exchange is
// reported to the caller, who decides whether to resend.
type Driver struct {
	log       *slog.Logger
	transport config.Transport
	opts      config.Options
	clock     config.Clock
	echo      io.Writer

	mu   sync.Mutex
	open bool
}

// NewDriver creates a driver for transport. Zero option fields take the
// firmware defaults.
func NewDriver(transport config.Transport, opts config.Options) *Driver {
	opts = opts.WithDefaults()

	return &Driver{
		log:       opts.Logger.With("component", "protocol"),
		transport: transport,
		opts:      opts,
		clock:     opts.Clock,
		echo:      opts.Echo,
	}
}

// Open opens the underlying transport.
func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	if err := d.transport.Open(); err != nil {
		d.log.Error("Failed to open transport", "error", err)

		return &errors.TransportError{Op: "open", Err: err}
	}

	d.open = true
	d.log.Info("Transport opened")

	return nil
}

// Close closes the underlying transport. It's safe to call Close multiple times.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}

	d.open = false

	if err := d.transport.Close(); err != nil {
		d.log.Error("Failed to close transport", "error", err)

		return &errors.TransportError{Op: "close", Err: err}
	}

	d.log.Info("Transport closed")

	return nil
}

// Options returns the effective driver options.
func (d *Driver) Options() config.Options {
	return d.opts
}

// FeederLight turns on the cost light ring of feeder (1-4) at brightness
// level (0-3). Settle: ttl + 130ms.
func (d *Driver) FeederLight(ctx context.Context, feeder, level int, opts ...SendOption) (Result, error) {
	cmd, err := feederLightCommand(feeder, level)
	if err != nil {
		return Result{}, err
	}

	return d.send(ctx, cmd, overheadFeederLight, opts), nil
}

// ActivateValve opens reward valve (1-4) for the device's relay time.
// Settle: ttl + relay + 120ms.
func (d *Driver) ActivateValve(ctx context.Context, valve int, opts ...SendOption) (Result, error) {
	cmd, err := valveCommand(valve)
	if err != nil {
		return Result{}, err
	}

	return d.send(ctx, cmd, d.opts.RelayLength+overheadValve, opts), nil
}

// Reset returns the device to idle with all lights, relays and TTLs off.
// The onboard timer keeps running. Settle: ttl + 120ms.
func (d *Driver) Reset(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdReset, overheadReset, opts)
}

// AllOn turns every cost light on at level 3 without touching the valves.
// Diagnostic only; the device sends no timestamp. Settle: ttl + 20ms.
func (d *Driver) AllOn(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdAllOn, overheadAllOn, opts)
}

// ToggleIndicator toggles the trial indicator light. Settle: ttl + 100ms.
func (d *Driver) ToggleIndicator(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdIndicator, overheadIndicator, opts)
}

// StartTimer starts the onboard timer. Settle: ttl + 100ms.
func (d *Driver) StartTimer(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdTimerStart, overheadTimerStart, opts)
}

// FetchTimer asks the device for its current timer value. Settle: ttl.
func (d *Driver) FetchTimer(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdTimerFetch, overheadTimerFetch, opts)
}

// StopTimer stops and zeroes the onboard timer. Settle: ttl + 120ms.
func (d *Driver) StopTimer(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdTimerStop, overheadTimerStop, opts)
}

// SyncPulse emits one synchronization TTL for external recording hardware.
// Settle: ttl.
func (d *Driver) SyncPulse(ctx context.Context, opts ...SendOption) Result {
	return d.send(ctx, cmdSyncPulse, overheadSyncPulse, opts)
}

// SendRaw writes cmd verbatim. Settle: ttl.
func (d *Driver) SendRaw(ctx context.Context, cmd string, opts ...SendOption) Result {
	return d.send(ctx, cmd, overheadRaw, opts)
}

// ToggleTTLIn toggles servicing of incoming TTLs and reports the new state.
//
// Unlike the other actions this one always reads its acknowledgment: it
// waits ttl + 120ms, fetches the frame, and then, unless NoDelay is given,
// waits another ttl.
func (d *Driver) ToggleTTLIn(ctx context.Context, opts ...SendOption) (TriState, Result, Ack) {
	so := d.sendOptions(opts)

	res := d.send(ctx, cmdToggleTTLIn, overheadTTLIn, []SendOption{WithTTLLength(so.ttlLength)})
	if !res.OK() {
		return Unknown, res, Ack{}
	}

	ack := d.FetchResponse(ctx)
	state := ParseTTLInState(ack.Text)

	if so.enforceDelay {
		if err := d.clock.Sleep(ctx, so.ttlLength); err != nil {
			res.Err = err
		}
	}

	return state, res, ack
}

// QueryInput asks the device for the state of its TTL line and parses the
// reply. Text that matches neither "is HIGH" nor "is LOW" yields Unknown.
func (d *Driver) QueryInput(ctx context.Context) (TriState, Result, Ack) {
	res := d.send(ctx, cmdInputState, 0, []SendOption{NoDelay()})
	if !res.OK() {
		return Unknown, res, Ack{}
	}

	ack := d.FetchResponse(ctx)

	return ParseInputState(ack.Text), res, ack
}

func (d *Driver) sendOptions(opts []SendOption) sendOptions {
	so := sendOptions{
		ttlLength:    d.opts.TTLLength,
		enforceDelay: true,
	}

	for _, opt := range opts {
		opt(&so)
	}

	return so
}

// send performs exactly one write and the optional settle delay.
func (d *Driver) send(ctx context.Context, cmd string, overhead time.Duration, opts []SendOption) Result {
	so := d.sendOptions(opts)

	if err := ctx.Err(); err != nil {
		return Result{Command: cmd, SentAt: d.clock.Now(), Err: err}
	}

	sentAt, err := d.write(cmd)
	res := Result{Command: cmd, SentAt: sentAt, Err: err}

	if err != nil {
		d.log.Warn("Command write failed", "command", cmd, "error", err)

		return res
	}

	d.log.Debug("Command sent", "command", cmd, "sent_at", sentAt)

	if so.enforceDelay {
		if err := d.clock.Sleep(ctx, so.ttlLength+overhead); err != nil {
			res.Err = err
		}
	}

	return res
}

func (d *Driver) write(cmd string) (time.Time, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return d.clock.Now(), &errors.TransportError{Op: "write", Err: errors.ErrTransportNotOpen}
	}

	_, err := d.transport.Write([]byte(cmd))
	sentAt := d.clock.Now()

	if err != nil {
		return sentAt, &errors.TransportError{Op: "write", Err: err}
	}

	return sentAt, nil
}
