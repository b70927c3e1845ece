package recordrig

import (
	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/export"
	"github.com/wagiedev/recordrig-go/internal/protocol"
	"github.com/wagiedev/recordrig-go/internal/roi"
	"github.com/wagiedev/recordrig-go/internal/serialport"
	"github.com/wagiedev/recordrig-go/internal/session"
	"github.com/wagiedev/recordrig-go/internal/trials"
)

// ===== Configuration =====

// Session is the immutable configuration of one session.
type Session = config.Session

// Axis is a set of values with their draw probabilities.
type Axis = config.Axis

// Subject identifies the animal run in a session.
type Subject = config.Subject

// Firmware selects the configuration-menu dialect of the device.
type Firmware = config.Firmware

const (
	// FirmwareLegacy is firmware without the top-level configuration menu.
	FirmwareLegacy = config.FirmwareLegacy
	// FirmwareMenu is firmware 2.1.1, with the menu but no TTL mode entry.
	FirmwareMenu = config.FirmwareMenu
	// FirmwareTTLMode is firmware 2.2 and later.
	FirmwareTTLMode = config.FirmwareTTLMode
)

// SerialConfig describes the serial line to the device.
type SerialConfig = serialport.Config

// ===== Protocol =====

// Driver sends commands to the device and reads its acknowledgments.
type Driver = protocol.Driver

// Result is the outcome of one command write.
type Result = protocol.Result

// Ack is one acknowledgment frame read from the device.
type Ack = protocol.Ack

// TriState is a parsed device state that may be unknown.
type TriState = protocol.TriState

// TTLMode is the outgoing TTL behavior of the device.
type TTLMode = protocol.TTLMode

// SendOption adjusts a single command send.
type SendOption = protocol.SendOption

// FetchOption adjusts a single acknowledgment read.
type FetchOption = protocol.FetchOption

const (
	TTLToggle = protocol.TTLToggle
	TTLPulse  = protocol.TTLPulse
	TTLOff    = protocol.TTLOff
)

// NoResponse is the acknowledgment text recorded when the device stays silent.
const NoResponse = protocol.NoResponse

// ===== Trials and sessions =====

// TrialList holds the feeder and cost level of every trial.
type TrialList = trials.List

// Trial is one entry of a TrialList.
type Trial = trials.Trial

// TrialRecord is everything recorded about one executed trial.
type TrialRecord = session.TrialRecord

// Event is one timestamped command with its acknowledgment.
type Event = session.Event

// Summary is the result of a session run.
type Summary = session.Summary

// Decider reports whether the subject accepted an offer.
type Decider = session.Decider

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc = session.DeciderFunc

// Exporter persists a finished session.
type Exporter = session.Exporter

// AcceptAll is a Decider that accepts every offer.
var AcceptAll = session.AcceptAll

// ===== Export =====

// Metadata is the ordered key/value description of a session.
type Metadata = export.Metadata

// FileExporter writes the trial list, metadata and event log files.
type FileExporter = export.FileExporter

// SQLiteArchive stores sessions in a local SQLite database.
type SQLiteArchive = export.SQLiteArchive

// ArchivedSession is one row of the archive's session index.
type ArchivedSession = export.ArchivedSession

// ===== Tracking =====

// Zone identifies a tracked region of interest.
type Zone = roi.Zone

const (
	ZoneAll  = roi.All
	ZoneDiag = roi.Diag
	ZoneGrid = roi.Grid
	ZoneHori = roi.Hori
	ZoneRadi = roi.Radi
)
