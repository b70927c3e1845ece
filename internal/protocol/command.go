package protocol

import (
	"fmt"
	"time"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Device ranges. Feeders and valves are numbered from 1; brightness levels
// from 0 (off) to 3.
const (
	MinFeeder = 1
	MaxFeeder = 4
	MinLevel  = 0
	MaxLevel  = 3
	MinValve  = 1
	MaxValve  = 4
)

// Single-byte commands understood by the firmware.
const (
	cmdReset       = "R"
	cmdAllOn       = "A"
	cmdIndicator   = "K"
	cmdTimerStart  = "Q"
	cmdTimerFetch  = "W"
	cmdTimerStop   = "E"
	cmdSyncPulse   = "T"
	cmdToggleTTLIn = "Y"
	cmdInputState  = "t"
	cmdConfigMode  = "$"
)

// valveCommands maps valve ids to their command bytes.
var valveCommands = map[int]string{
	1: "F",
	2: "G",
	3: "H",
	4: "J",
}

// Settle overheads on top of the TTL length. Each is the firmware's
// execution plus report time for that command, measured on the rig.
const (
	overheadFeederLight = 130 * time.Millisecond
	overheadValve       = 120 * time.Millisecond // plus relay length
	overheadReset       = 120 * time.Millisecond
	overheadAllOn       = 20 * time.Millisecond
	overheadIndicator   = 100 * time.Millisecond
	overheadTimerStart  = 100 * time.Millisecond
	overheadTimerFetch  = 0
	overheadTimerStop   = 120 * time.Millisecond
	overheadSyncPulse   = 0
	overheadTTLIn       = 120 * time.Millisecond
	overheadRaw         = 0
)

func feederLightCommand(feeder, level int) (string, error) {
	if err := checkRange("feeder", feeder, MinFeeder, MaxFeeder); err != nil {
		return "", err
	}

	if err := checkRange("level", level, MinLevel, MaxLevel); err != nil {
		return "", err
	}

	return fmt.Sprintf("#F%dL%d", feeder, level), nil
}

func valveCommand(valve int) (string, error) {
	if err := checkRange("valve", valve, MinValve, MaxValve); err != nil {
		return "", err
	}

	return valveCommands[valve], nil
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &errors.ValidationError{
			Field:      field,
			Value:      v,
			Constraint: fmt.Sprintf("must be a whole number from %d through %d", lo, hi),
		}
	}

	return nil
}
