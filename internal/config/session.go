package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// unknownDescriptor fills descriptor slots the operator did not supply.
const unknownDescriptor = "unkn"

// Axis is one discrete trial parameter: the values it can take and the
// target probability of each, position for position.
type Axis struct {
	Values        []int     `mapstructure:"values"`
	Probabilities []float64 `mapstructure:"probabilities"`
}

// Clone returns a deep copy of a.
func (a Axis) Clone() Axis {
	return Axis{
		Values:        slices.Clone(a.Values),
		Probabilities: slices.Clone(a.Probabilities),
	}
}

// Sum adds the probabilities in order.
func (a Axis) Sum() float64 {
	var sum float64
	for _, p := range a.Probabilities {
		sum += p
	}

	return sum
}

// Contains reports whether v is one of the axis values.
func (a Axis) Contains(v int) bool {
	return slices.Contains(a.Values, v)
}

// Validate checks that the axis is usable for list generation. The
// probability sum must equal 1 exactly; no tolerance is applied.
func (a Axis) Validate(name string) error {
	if len(a.Values) == 0 {
		return fmt.Errorf("%s: %w", name, errors.ErrEmptyAxis)
	}

	if len(a.Values) != len(a.Probabilities) {
		return &errors.ValidationError{
			Field:      name + " probabilities",
			Value:      a.Probabilities,
			Constraint: fmt.Sprintf("need one probability per value (%d values)", len(a.Values)),
		}
	}

	for _, p := range a.Probabilities {
		if p < 0 || p > 1 {
			return &errors.ValidationError{
				Field:      name + " probability",
				Value:      p,
				Constraint: "must lie in [0, 1]",
			}
		}
	}

	if sum := a.Sum(); sum != 1 {
		return &errors.ProbabilityError{Axis: name, Sum: sum}
	}

	return nil
}

// Subject describes the animal run in a session.
type Subject struct {
	ID     string `mapstructure:"id"`
	Health string `mapstructure:"health"`
	Weight string `mapstructure:"weight"`
}

// Session is the immutable parameter set of one experiment session.
//
// It is passed by value; constructors that keep a Session call Clone so
// later edits to the caller's slices cannot leak into a running session.
type Session struct {
	InterTrial         time.Duration `mapstructure:"inter_trial_interval"`
	Decision           time.Duration `mapstructure:"decision_interval"`
	Feeding            time.Duration `mapstructure:"feeding_interval"`
	PostTrial          time.Duration `mapstructure:"post_trial_interval"`
	SyncSettle         time.Duration `mapstructure:"sync_settle_interval"`
	ResponseTimeout    time.Duration `mapstructure:"response_timeout"`
	CueResponseTimeout time.Duration `mapstructure:"cue_response_timeout"`

	Trials  int  `mapstructure:"trials"`
	Levels  Axis `mapstructure:"levels"`
	Feeders Axis `mapstructure:"feeders"`

	// CostIntensities and RewardConcentrations describe each level and
	// feeder value, position for position (e.g. "140lux", "5%").
	CostIntensities      []string `mapstructure:"cost_intensities"`
	RewardConcentrations []string `mapstructure:"reward_concentrations"`
	RewardVolume         string   `mapstructure:"reward_volume"`

	Subject       Subject `mapstructure:"subject"`
	RecordingType string  `mapstructure:"recording_type"`
	TaskType      string  `mapstructure:"task_type"`
	Timezone      string  `mapstructure:"timezone"`
	OutputRoot    string  `mapstructure:"output_root"`
	Notes         string  `mapstructure:"notes"`

	// QuerySyncState asks the device for its digital input state after every
	// external sync pulse so cleanup knows whether the external recorder is
	// still running.
	QuerySyncState bool `mapstructure:"query_sync_state"`
}

// DefaultSession returns the parameter set used when nothing is configured.
func DefaultSession() Session {
	return Session{
		InterTrial:           5 * time.Second,
		Decision:             2 * time.Second,
		Feeding:              5 * time.Second,
		PostTrial:            2 * time.Second,
		SyncSettle:           time.Second,
		ResponseTimeout:      DefaultResponseTimeout,
		CueResponseTimeout:   2 * time.Second,
		Trials:               4,
		Levels:               Axis{Values: []int{0, 1, 2, 3}, Probabilities: []float64{0.25, 0.25, 0.25, 0.25}},
		Feeders:              Axis{Values: []int{1, 2, 3, 4}, Probabilities: []float64{0.25, 0.25, 0.25, 0.25}},
		CostIntensities:      []string{"0", unknownDescriptor, unknownDescriptor, unknownDescriptor},
		RewardConcentrations: []string{unknownDescriptor, unknownDescriptor, unknownDescriptor, unknownDescriptor},
		RewardVolume:         "Undefined",
		Subject:              Subject{ID: "None", Health: "Undefined", Weight: "Undefined"},
		RecordingType:        "Undefined",
		TaskType:             "Undefined",
		Timezone:             "UTC",
		OutputRoot:           ".",
		QuerySyncState:       true,
	}
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	c := s
	c.Levels = s.Levels.Clone()
	c.Feeders = s.Feeders.Clone()
	c.CostIntensities = slices.Clone(s.CostIntensities)
	c.RewardConcentrations = slices.Clone(s.RewardConcentrations)

	return c
}

// Validate checks the session parameters.
func (s Session) Validate() error {
	if s.Trials < 1 {
		return errors.ErrNoTrials
	}

	if err := s.Levels.Validate("cost level"); err != nil {
		return err
	}

	if err := s.Feeders.Validate("feeder"); err != nil {
		return err
	}

	for name, d := range map[string]time.Duration{
		"inter_trial_interval": s.InterTrial,
		"decision_interval":    s.Decision,
		"feeding_interval":     s.Feeding,
		"post_trial_interval":  s.PostTrial,
		"sync_settle_interval": s.SyncSettle,
	} {
		if d < 0 {
			return &errors.ValidationError{Field: name, Value: d, Constraint: "must not be negative"}
		}
	}

	if _, err := s.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the session timezone.
func (s Session) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:      "timezone",
			Value:      s.Timezone,
			Constraint: err.Error(),
		}
	}

	return loc, nil
}

// CostIntensity returns the descriptor configured for a cost level.
func (s Session) CostIntensity(level int) string {
	return descriptor(s.Levels.Values, s.CostIntensities, level)
}

// RewardConcentration returns the descriptor configured for a feeder.
func (s Session) RewardConcentration(feeder int) string {
	return descriptor(s.Feeders.Values, s.RewardConcentrations, feeder)
}

func descriptor(values []int, descriptors []string, v int) string {
	i := slices.Index(values, v)
	if i < 0 || i >= len(descriptors) {
		return unknownDescriptor
	}

	return descriptors[i]
}
