package protocol

import (
	"strconv"
	"strings"
	"time"
)

// TriState is a device-reported boolean that may be unrecognizable.
type TriState int8

const (
	// Unknown means the device text matched no expected pattern.
	Unknown TriState = iota
	// True is HIGH / on.
	True
	// False is LOW / off.
	False
)

func (s TriState) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Bool returns the state as a bool and whether it was known.
func (s TriState) Bool() (value, ok bool) {
	return s == True, s != Unknown
}

// ParseInputState interprets the reply to the 't' query.
func ParseInputState(text string) TriState {
	switch {
	case strings.Contains(text, "is HIGH"):
		return True
	case strings.Contains(text, "is LOW"):
		return False
	default:
		return Unknown
	}
}

// ParseTTLInState interprets the reply to the 'Y' toggle
// ("Y: external TTLs toggled on."). Only a standalone "on" or "off" word
// counts, so words like "configuration" do not match.
func ParseTTLInState(text string) TriState {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		switch strings.Trim(word, ".,:;!") {
		case "on":
			return True
		case "off":
			return False
		}
	}

	return Unknown
}

// ParseDeviceTime extracts the onboard timer value the firmware appends to
// most acknowledgments ("R: reset all peripherals at 12.345"). The part
// after the dot is a millisecond count printed without zero padding, so
// "12.5" is 12s 5ms.
func ParseDeviceTime(text string) (time.Duration, bool) {
	i := strings.LastIndex(text, " at ")
	if i < 0 {
		return 0, false
	}

	secPart, msPart, ok := strings.Cut(strings.TrimSpace(text[i+len(" at "):]), ".")
	if !ok {
		return 0, false
	}

	sec, err := strconv.Atoi(secPart)
	if err != nil || sec < 0 {
		return 0, false
	}

	ms, err := strconv.Atoi(msPart)
	if err != nil || ms < 0 || ms > 999 {
		return 0, false
	}

	return time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond, true
}
