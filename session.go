package recordrig

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/export"
	"github.com/wagiedev/recordrig-go/internal/protocol"
	"github.com/wagiedev/recordrig-go/internal/session"
	"github.com/wagiedev/recordrig-go/internal/trials"
)

// DefaultSession returns the stock session configuration: four trials over
// levels 0..3 and feeders 1..4 with uniform probabilities.
func DefaultSession() Session {
	return config.DefaultSession()
}

// LoadSession reads a session configuration file (YAML, TOML or JSON) with
// RECORD_* environment overrides. An empty path uses defaults and the
// environment only.
func LoadSession(path string) (Session, error) {
	return config.Load(path)
}

// GenerateTrialList draws a trial list for cfg. A nil src draws from a
// randomly seeded source.
func GenerateTrialList(cfg Session, src rand.Source, opts ...Option) (TrialList, error) {
	o := applyOptions(opts)

	return trials.NewGenerator(o.Logger, src).GenerateList(cfg.Trials, cfg.Levels, cfg.Feeders)
}

// ReshuffleTrialList shuffles the feeder and level sequences of l
// independently. A nil src draws from a randomly seeded source.
func ReshuffleTrialList(l *TrialList, src rand.Source, opts ...Option) {
	o := applyOptions(opts)

	trials.NewGenerator(o.Logger, src).Reshuffle(l)
}

// LoadTrialList reads a trial list saved with SaveTrialList.
func LoadTrialList(path string) (TrialList, error) {
	return trials.Load(path)
}

// SaveTrialList writes l as a "feeder,cost_level" CSV file.
func SaveTrialList(path string, l TrialList) error {
	return trials.Save(path, l)
}

// RunSession runs every trial of list on the device behind transport and
// exports the result. The transport is opened and closed by the session.
//
// Cancelling ctx stops the loop after the current step; the completed
// trials are still exported and the returned error wraps
// ErrSessionInterrupted. The returned Summary is non-nil whenever the
// loop started.
func RunSession(
	ctx context.Context,
	transport Transport,
	cfg Session,
	list TrialList,
	opts ...Option,
) (*Summary, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	o := applyOptions(opts)

	if o.syncQuery != nil {
		cfg = cfg.Clone()
		cfg.QuerySyncState = *o.syncQuery
	}

	driver := protocol.NewDriver(transport, o.Options)

	ctrl, err := session.NewController(o.Logger, driver, cfg, o.decider, o.exporter())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return ctrl.Run(ctx, list)
}

func (o *options) exporter() Exporter {
	switch len(o.exporters) {
	case 0:
		return nil
	case 1:
		return o.exporters[0]
	default:
		return export.Multi(o.exporters)
	}
}

// NewPromptDecider asks the experimenter for every decision, reading
// answers from in and writing prompts to out.
func NewPromptDecider(in io.Reader, out io.Writer) Decider {
	return session.NewPromptDecider(in, out)
}

// SessionBaseName returns the file base name shared by every file of a
// session created at t.
func SessionBaseName(cfg Session, t time.Time) string {
	return export.BaseName(cfg.OutputRoot, cfg, t)
}
