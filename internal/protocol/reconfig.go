package protocol

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Calibration limits enforced by the firmware's configuration menu.
const (
	MinCalibrationLevel = 1
	MaxCalibrationLevel = 3
	MaxCCRValue         = 8000
	MaxMilliseconds     = 9999
)

// TTLMode is the outgoing TTL operating mode selectable in configuration mode.
type TTLMode int

const (
	// TTLToggle keeps the TTL on until the next request.
	TTLToggle TTLMode = 1
	// TTLPulse pulses the TTL for the configured TTL length.
	TTLPulse TTLMode = 2
	// TTLOff ignores TTL requests.
	TTLOff TTLMode = 3
)

func (m TTLMode) String() string {
	switch m {
	case TTLToggle:
		return "toggle"
	case TTLPulse:
		return "pulse"
	case TTLOff:
		return "off"
	default:
		return "TTLMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Configuration-menu keys (firmware v2.1.1+).
const (
	menuFeeders   = "A"
	menuRelay     = "B"
	menuTTLLength = "C"
	menuTTLMode   = "D"
)

// Inter-command waits of the configuration dialogue. The firmware reads
// each key only after it has printed its prompt, so these are not tunable.
const (
	enterConfigWait = 500 * time.Millisecond
	menuKeyWait     = 150 * time.Millisecond
	feederKeyWait   = 300 * time.Millisecond
)

// scriptStep is one write of a configuration dialogue and the wait after it.
type scriptStep struct {
	payload string
	wait    time.Duration
}

// ReconfigureFeeder writes a new brightness calibration (CCR value 0-8000)
// for one feeder (1-4) at one level (1-3). When testNew is set the device
// turns every cost light on with the new value afterwards.
func (d *Driver) ReconfigureFeeder(ctx context.Context, feeder, level, value int, testNew bool) error {
	if err := checkRange("feeder", feeder, MinFeeder, MaxFeeder); err != nil {
		return err
	}

	if err := checkRange("calibration level", level, MinCalibrationLevel, MaxCalibrationLevel); err != nil {
		return err
	}

	if err := checkRange("calibration value", value, 0, MaxCCRValue); err != nil {
		return err
	}

	steps := []scriptStep{{payload: cmdConfigMode, wait: enterConfigWait}}
	if d.opts.Firmware.HasMenu() {
		steps = append(steps, scriptStep{payload: menuFeeders, wait: menuKeyWait})
	}

	confirm := "n"
	if testNew {
		confirm = "y"
	}

	steps = append(steps,
		scriptStep{payload: strconv.Itoa(level), wait: menuKeyWait},
		scriptStep{payload: strconv.Itoa(feeder), wait: feederKeyWait},
		scriptStep{payload: strconv.Itoa(value) + "\r", wait: menuKeyWait},
		scriptStep{payload: confirm, wait: menuKeyWait},
	)

	return d.runScript(ctx, "feeder calibration", steps)
}

// ReconfigureValve sets how long every valve stays open, in milliseconds
// (0-9999). Requires firmware v2.1.1 or later.
func (d *Driver) ReconfigureValve(ctx context.Context, ms int) error {
	return d.menuValue(ctx, "relay active time", menuRelay, ms, MaxMilliseconds)
}

// ReconfigureTTLLength sets the length of every TTL in and out of the
// device, in milliseconds (0-9999). Requires firmware v2.1.1 or later.
func (d *Driver) ReconfigureTTLLength(ctx context.Context, ms int) error {
	return d.menuValue(ctx, "TTL length", menuTTLLength, ms, MaxMilliseconds)
}

// ReconfigureTTLMode selects the outgoing TTL operating mode. Requires
// firmware v2.2 or later.
func (d *Driver) ReconfigureTTLMode(ctx context.Context, mode TTLMode) error {
	if !d.opts.Firmware.HasTTLMode() {
		return &errors.ValidationError{
			Field:      "firmware",
			Value:      d.opts.Firmware,
			Constraint: "TTL mode configuration needs firmware v2.2 or later",
		}
	}

	if err := checkRange("TTL mode", int(mode), int(TTLToggle), int(TTLOff)); err != nil {
		return err
	}

	return d.menuValue(ctx, "TTL mode", menuTTLMode, int(mode), int(TTLOff))
}

func (d *Driver) menuValue(ctx context.Context, name, key string, value, hi int) error {
	if !d.opts.Firmware.HasMenu() {
		return &errors.ValidationError{
			Field:      "firmware",
			Value:      d.opts.Firmware,
			Constraint: name + " configuration needs firmware v2.1.1 or later",
		}
	}

	if err := checkRange(name, value, 0, hi); err != nil {
		return err
	}

	return d.runScript(ctx, name, []scriptStep{
		{payload: cmdConfigMode, wait: enterConfigWait},
		{payload: key, wait: menuKeyWait},
		{payload: strconv.Itoa(value) + "\r", wait: menuKeyWait},
	})
}

// runScript writes each step and waits its fixed delay. A failed write
// aborts the rest of the dialogue.
func (d *Driver) runScript(ctx context.Context, name string, steps []scriptStep) error {
	d.log.Info("Running configuration script", "script", name, "steps", len(steps))

	for i, step := range steps {
		if _, err := d.write(step.payload); err != nil {
			d.log.Error("Configuration script aborted", "script", name, "step", i, "error", err)

			return fmt.Errorf("%s step %d: %w", name, i+1, err)
		}

		if err := d.clock.Sleep(ctx, step.wait); err != nil {
			return fmt.Errorf("%s step %d: %w", name, i+1, err)
		}
	}

	d.log.Info("Configuration script sent", "script", name)

	return nil
}
