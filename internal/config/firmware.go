package config

// Firmware identifies the RECORD firmware generation running on the
// microcontroller. It only affects the configuration-menu scripts.
type Firmware string

const (
	// FirmwareLegacy is firmware older than v2.1.1, whose configuration mode
	// opens straight into feeder calibration.
	FirmwareLegacy Firmware = "legacy"
	// FirmwareMenu is firmware v2.1.1, whose configuration mode presents a
	// menu (A feeders, B valves, C TTL length).
	FirmwareMenu Firmware = "2.1.1+"
	// FirmwareTTLMode is firmware v2.2 and later, which adds menu entry D
	// for the outgoing TTL mode.
	FirmwareTTLMode Firmware = "2.2+"
)

// NormalizeFirmware maps the version spellings operators tend to type onto
// the firmware generations the scripts distinguish.
//
// Mappings:
//   - "", "2.2", "v2.2", "2.2.0", "v2.2.0" -> "2.2+"
//   - "2.1.1", "v2.1.1" -> "2.1.1+"
//   - "2.0", "v2.0", "2.1", "v2.1", "pre-2.1.1" -> "legacy"
func NormalizeFirmware(version string) Firmware {
	switch version {
	case "", "2.2", "v2.2", "2.2.0", "v2.2.0":
		return FirmwareTTLMode
	case "2.1.1", "v2.1.1":
		return FirmwareMenu
	case "2.0", "v2.0", "2.1", "v2.1", "pre-2.1.1":
		return FirmwareLegacy
	default:
		return Firmware(version)
	}
}

// HasMenu reports whether configuration mode expects a menu selection first.
func (f Firmware) HasMenu() bool {
	return f != FirmwareLegacy
}

// HasTTLMode reports whether the configuration menu offers the TTL mode
// entry. Unrecognized versions are assumed to be newer firmware.
func (f Firmware) HasTTLMode() bool {
	return f != FirmwareLegacy && f != FirmwareMenu
}
