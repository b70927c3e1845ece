package roi

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wagiedev/recordrig-go/internal/session"
	"github.com/wagiedev/recordrig-go/internal/trials"
)

// Decider accepts an offer when the latest tracking frame places the
// subject in the zone assigned to the offered feeder.
type Decider struct {
	log   *slog.Logger
	path  string
	zones map[int]Zone
}

var _ session.Decider = (*Decider)(nil)

// DecisionOption configures a Decider.
type DecisionOption func(*Decider)

// WithZone assigns zone z to feeder.
func WithZone(feeder int, z Zone) DecisionOption {
	return func(d *Decider) {
		d.zones[feeder] = z
	}
}

// NewDecider reads decisions from the tracking file at path. Feeder n maps
// to zone n unless overridden with WithZone.
func NewDecider(log *slog.Logger, path string, opts ...DecisionOption) *Decider {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d := &Decider{
		log:   log.With("component", "roi"),
		path:  path,
		zones: make(map[int]Zone, len(Zones)),
	}

	for _, z := range Zones {
		d.zones[int(z)] = z
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decide implements session.Decider.
func (d *Decider) Decide(ctx context.Context, trial trials.Trial) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	z, ok := d.zones[trial.Feeder]
	if !ok {
		return false, fmt.Errorf("no zone assigned to feeder %d", trial.Feeder)
	}

	sample, err := Last(d.path)
	if err != nil {
		return false, err
	}

	accepted := sample.In(z)
	d.log.Debug("Zone occupancy", "feeder", trial.Feeder, "zone", z, "in_zone", accepted)

	return accepted, nil
}
