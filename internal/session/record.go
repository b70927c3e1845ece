package session

import (
	"maps"
	"slices"
	"strconv"
	"time"
)

// Event names used as trial record keys and event-log columns.
const (
	EventExtSysOn      = "extsys_on"
	EventTimerStart    = "mcu_timer_start"
	EventFirstReset    = "first_reset"
	EventStartCue      = "trial_start_cue"
	EventOffer         = "offer_presented"
	EventRewardDeliver = "reward_delivery"
	EventLastReset     = "last_reset"
	EventTimerStop     = "mcu_timer_stop"
	EventExtSysOff     = "extsys_off"
)

// Events lists every device event of a trial in execution order.
var Events = []string{
	EventExtSysOn,
	EventTimerStart,
	EventFirstReset,
	EventStartCue,
	EventOffer,
	EventRewardDeliver,
	EventLastReset,
	EventTimerStop,
	EventExtSysOff,
}

// Null marks an event-log cell with no value.
const Null = "Null"

// TimestampLayout formats every exported timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000-0700"

// Event is one device exchange of a trial.
type Event struct {
	// SentAt is the host time right after the command write. Zero when the
	// write failed.
	SentAt time.Time
	// Response is the acknowledgment text, or the no-response sentinel.
	Response string
	// AckAt is the device execution time latched from the acknowledgment.
	AckAt time.Time
	// Fetched reports whether an acknowledgment read was made.
	Fetched bool
}

// TrialRecord collects everything that happened in one trial. A record is
// filled while its trial runs and is not modified after it is appended to
// the Summary.
type TrialRecord struct {
	// Index is the 1-based trial number.
	Index  int
	Feeder int
	Level  int

	CostIntensity       string
	RewardConcentration string

	Start time.Time
	End   time.Time

	// Decided is set once the decision source answered.
	Decided    bool
	Accepted   bool
	DecisionAt time.Time

	Events map[string]Event
}

func newTrialRecord(index, feeder, level int) *TrialRecord {
	return &TrialRecord{
		Index:  index,
		Feeder: feeder,
		Level:  level,
		Events: make(map[string]Event, len(Events)),
	}
}

// Elapsed returns the trial duration, or zero while it is incomplete.
func (r *TrialRecord) Elapsed() time.Duration {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}

	return r.End.Sub(r.Start)
}

// Decision returns "y" for an accepted offer, "n" for a declined one, or
// Null before the decision.
func (r *TrialRecord) Decision() string {
	switch {
	case !r.Decided:
		return Null
	case r.Accepted:
		return "y"
	default:
		return "n"
	}
}

// Columns renders the record as event-log cells. Every column of
// ColumnNames is present; missing values are Null.
func (r *TrialRecord) Columns(loc *time.Location) map[string]string {
	cols := make(map[string]string, len(ColumnNames()))

	for _, name := range Events {
		ev, ok := r.Events[name]
		cols[name] = FormatTime(ev.SentAt, loc)
		cols[name+"_resp"] = Null
		cols[name+"_ack"] = Null

		if ok && ev.Fetched {
			cols[name+"_resp"] = ev.Response
			cols[name+"_ack"] = FormatTime(ev.AckAt, loc)
		}
	}

	cols["trial_start"] = FormatTime(r.Start, loc)
	cols["trial_end"] = FormatTime(r.End, loc)
	cols["trial_elapsed"] = Null

	if d := r.Elapsed(); d > 0 {
		cols["trial_elapsed"] = d.String()
	}

	cols["trial_index"] = strconv.Itoa(r.Index)
	cols["cost_level"] = strconv.Itoa(r.Level)
	cols["reward_level"] = strconv.Itoa(r.Feeder)
	cols["cost_intensity"] = orNull(r.CostIntensity)
	cols["reward_concentration"] = orNull(r.RewardConcentration)
	cols["decision_made"] = r.Decision()
	cols["decision_ts"] = FormatTime(r.DecisionAt, loc)

	return cols
}

// ColumnNames returns the event-log header, sorted alphabetically.
func ColumnNames() []string {
	names := map[string]struct{}{
		"trial_start":          {},
		"trial_end":            {},
		"trial_elapsed":        {},
		"trial_index":          {},
		"cost_level":           {},
		"cost_intensity":       {},
		"reward_level":         {},
		"reward_concentration": {},
		"decision_made":        {},
		"decision_ts":          {},
	}

	for _, ev := range Events {
		names[ev] = struct{}{}
		names[ev+"_resp"] = struct{}{}
		names[ev+"_ack"] = struct{}{}
	}

	return slices.Sorted(maps.Keys(names))
}

// FormatTime renders t in loc with TimestampLayout, or Null for the zero time.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return Null
	}

	if loc != nil {
		t = t.In(loc)
	}

	return t.Format(TimestampLayout)
}

func orNull(s string) string {
	if s == "" {
		return Null
	}

	return s
}
