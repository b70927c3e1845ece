package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/errors"
	"github.com/wagiedev/recordrig-go/internal/protocol"
	"github.com/wagiedev/recordrig-go/internal/trials"
)

// Controller sequences one session. A Controller runs at most once.
type Controller struct {
	log      *slog.Logger
	driver   *protocol.Driver
	clock    config.Clock
	echo     io.Writer
	cfg      config.Session
	loc      *time.Location
	decider  Decider
	exporter Exporter

	ran        atomic.Bool
	syncActive bool
}

// NewController creates a controller for cfg. The configuration is copied;
// later changes to the caller's value are not seen. A nil decider accepts
// every offer and a nil exporter skips export.
func NewController(
	log *slog.Logger,
	driver *protocol.Driver,
	cfg config.Session,
	decider Decider,
	exporter Exporter,
) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	if err := checkDeviceRanges(cfg); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = driver.Options().Logger
	}

	if decider == nil {
		decider = AcceptAll
	}

	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = driver.Options().ResponseTimeout
	}

	if cfg.CueResponseTimeout <= 0 {
		cfg.CueResponseTimeout = cfg.ResponseTimeout
	}

	return &Controller{
		log:      log.With("component", "session"),
		driver:   driver,
		clock:    driver.Options().Clock,
		echo:     driver.Options().Echo,
		cfg:      cfg.Clone(),
		loc:      loc,
		decider:  decider,
		exporter: exporter,
	}, nil
}

// Run opens the device, runs every trial of list, exports the result and
// cleans up the device.
//
// The returned Summary is non-nil whenever the device was opened, even when
// Run also returns an error. An interruption through ctx yields an error
// wrapping ErrSessionInterrupted; any other loop failure is returned as is.
// Export failures are recorded in Summary.ExportErr only.
func (c *Controller) Run(ctx context.Context, list trials.List) (*Summary, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return nil, errors.ErrAlreadyRun
	}

	list = list.Clone()
	if err := list.Validate(c.cfg.Levels, c.cfg.Feeders); err != nil {
		return nil, fmt.Errorf("trial list: %w", err)
	}

	if err := c.driver.Open(); err != nil {
		return nil, err
	}

	start := c.clock.Now()
	summary := &Summary{
		ID:     ulid.MustNew(ulid.Timestamp(start), ulid.DefaultEntropy()),
		Config: c.cfg.Clone(),
		List:   list,
		Start:  start,
	}

	c.log.Info("Session started", "session_id", summary.ID, "trials", list.Len())

	// Cleanup and export must survive the cancellation that ended the loop.
	bg := context.WithoutCancel(ctx)
	defer c.cleanup(bg)

	loopErr := c.runTrials(ctx, list, summary)
	summary.End = c.clock.Now()

	switch {
	case loopErr == nil:
		c.log.Info("Trials ended successfully", "trials", len(summary.Trials), "duration", summary.Duration())
	case stderrors.Is(loopErr, errors.ErrSessionInterrupted):
		c.log.Warn("Session interrupted", "completed", len(summary.Trials), "error", loopErr)
	default:
		c.log.Error("Session aborted", "completed", len(summary.Trials), "error", loopErr)
	}

	c.export(bg, summary)

	return summary, loopErr
}

func (c *Controller) runTrials(ctx context.Context, list trials.List, summary *Summary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Trial loop panicked", "panic", r)
			err = fmt.Errorf("trial loop panicked: %v", r)
		}
	}()

	for i := range list.Len() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			summary.Interrupted = true

			return fmt.Errorf("%w before trial %d: %w", errors.ErrSessionInterrupted, i+1, ctxErr)
		}

		rec, trialErr := c.runTrial(ctx, list.Trial(i), list.Len())
		if trialErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				summary.Interrupted = true

				return fmt.Errorf("%w during trial %d: %w", errors.ErrSessionInterrupted, i+1, ctxErr)
			}

			return fmt.Errorf("trial %d: %w", i+1, trialErr)
		}

		summary.Trials = append(summary.Trials, *rec)
	}

	return nil
}

// runTrial walks one trial through the event sequence. Transport failures
// and missing acknowledgments are recorded and the trial continues; only a
// cancelled context, a decider failure or a rejected argument stop it.
func (c *Controller) runTrial(ctx context.Context, trial trials.Trial, total int) (*TrialRecord, error) {
	rec := newTrialRecord(trial.Index+1, trial.Feeder, trial.Level)
	rec.CostIntensity = c.cfg.CostIntensity(trial.Level)
	rec.RewardConcentration = c.cfg.RewardConcentration(trial.Feeder)

	log := c.log.With("trial", rec.Index)
	c.say("\n######### Trial number %d out of %d #########\n", rec.Index, total)

	log.Debug("Inter-trial interval", "wait", c.cfg.InterTrial)

	if err := c.clock.Sleep(ctx, c.cfg.InterTrial); err != nil {
		return nil, err
	}

	log.Debug("Starting external recording")

	if err := c.exchange(ctx, rec, EventExtSysOn, c.driver.SyncPulse(ctx, protocol.NoDelay())); err != nil {
		return nil, err
	}

	c.trackSync(ctx, true)

	if err := c.clock.Sleep(ctx, c.cfg.SyncSettle); err != nil {
		return nil, err
	}

	rec.Start = c.clock.Now()

	if err := c.exchange(ctx, rec, EventTimerStart, c.driver.StartTimer(ctx)); err != nil {
		return nil, err
	}

	if err := c.exchange(ctx, rec, EventFirstReset, c.driver.Reset(ctx, protocol.NoDelay())); err != nil {
		return nil, err
	}

	err := c.exchange(ctx, rec, EventStartCue, c.driver.ToggleIndicator(ctx, protocol.NoDelay()),
		protocol.WithTimeout(c.cfg.CueResponseTimeout))
	if err != nil {
		return nil, err
	}

	log.Info("Presenting offer", "feeder", trial.Feeder, "level", trial.Level)

	res, err := c.driver.FeederLight(ctx, trial.Feeder, trial.Level, protocol.NoDelay())
	if err != nil {
		return nil, err
	}

	if err := c.exchange(ctx, rec, EventOffer, res); err != nil {
		return nil, err
	}

	if err := c.clock.Sleep(ctx, c.cfg.Decision); err != nil {
		return nil, err
	}

	accepted, err := c.decider.Decide(ctx, trial)
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec.Decided = true
	rec.Accepted = accepted
	rec.DecisionAt = c.clock.Now()

	log.Info("Decision recorded", "accepted", accepted)

	if accepted {
		res, err := c.driver.ActivateValve(ctx, trial.Feeder, protocol.NoDelay())
		if err != nil {
			return nil, err
		}

		if err := c.exchange(ctx, rec, EventRewardDeliver, res); err != nil {
			return nil, err
		}

		if err := c.clock.Sleep(ctx, c.cfg.Feeding); err != nil {
			return nil, err
		}
	}

	if err := c.clock.Sleep(ctx, c.cfg.PostTrial); err != nil {
		return nil, err
	}

	if err := c.exchange(ctx, rec, EventLastReset, c.driver.Reset(ctx, protocol.NoDelay())); err != nil {
		return nil, err
	}

	if err := c.exchange(ctx, rec, EventTimerStop, c.driver.StopTimer(ctx, protocol.NoDelay())); err != nil {
		return nil, err
	}

	rec.End = c.clock.Now()

	log.Debug("Stopping external recording")

	if err := c.exchange(ctx, rec, EventExtSysOff, c.driver.SyncPulse(ctx, protocol.NoDelay())); err != nil {
		return nil, err
	}

	c.trackSync(ctx, false)

	log.Info("Trial complete", "elapsed", rec.Elapsed())

	return rec, nil
}

// exchange records the outcome of a sent command and reads its
// acknowledgment. The only error it returns is the context's.
func (c *Controller) exchange(
	ctx context.Context,
	rec *TrialRecord,
	name string,
	res protocol.Result,
	opts ...protocol.FetchOption,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var ev Event

	if res.OK() {
		ev.SentAt = res.SentAt
	} else {
		c.log.Warn("Command failed", "event", name, "command", res.Command, "error", res.Err)
	}

	opts = append([]protocol.FetchOption{protocol.WithTimeout(c.cfg.ResponseTimeout)}, opts...)
	ack := c.driver.FetchResponse(ctx, opts...)

	ev.Response = ack.Text
	ev.AckAt = ack.At
	ev.Fetched = true
	rec.Events[name] = ev

	return ctx.Err()
}

// trackSync updates whether the external recorder is believed to be running.
// With state queries enabled the device's input line decides and an
// unrecognizable reply leaves the previous belief; otherwise every pulse is
// assumed to have worked.
func (c *Controller) trackSync(ctx context.Context, expect bool) {
	if !c.cfg.QuerySyncState {
		c.syncActive = expect

		return
	}

	state, res, _ := c.driver.QueryInput(ctx)
	if !res.OK() {
		c.log.Warn("Sync state query failed", "error", res.Err)

		return
	}

	if active, ok := state.Bool(); ok {
		c.syncActive = active

		return
	}

	c.log.Warn("Sync state unknown, keeping previous", "active", c.syncActive)
}

func (c *Controller) export(ctx context.Context, summary *Summary) {
	if len(summary.Trials) == 0 {
		c.log.Warn("No session data to export")

		return
	}

	if c.exporter == nil {
		return
	}

	c.log.Info("Exporting session data", "session_id", summary.ID, "trials", len(summary.Trials))

	if err := c.exporter.Export(ctx, summary); err != nil {
		c.log.Error("Something went wrong during data export", "error", err)
		summary.ExportErr = err
	}
}

// cleanup returns the device to idle and closes it. Every step runs even when
// an earlier one fails.
func (c *Controller) cleanup(ctx context.Context) {
	if c.syncActive {
		c.log.Info("Sending TTL to stop external recording before exiting")

		if res := c.driver.SyncPulse(ctx, protocol.NoDelay()); !res.OK() {
			c.log.Error("Final sync pulse failed", "error", res.Err)
		}

		c.driver.FetchResponse(ctx)
		c.say("Please ensure that external system is inactive.\n")
	}

	if res := c.driver.StopTimer(ctx); !res.OK() {
		c.log.Error("Failed to stop device timer", "error", res.Err)
	}

	c.driver.FetchResponse(ctx)

	if res := c.driver.Reset(ctx); !res.OK() {
		c.log.Error("Failed to reset device", "error", res.Err)
	}

	c.driver.FetchResponse(ctx)

	if err := c.driver.Close(); err != nil {
		c.log.Error("Failed to close device", "error", err)
	}

	c.log.Info("Device cleanup complete")
}

func (c *Controller) say(format string, args ...any) {
	if c.echo != nil {
		fmt.Fprintf(c.echo, format, args...)
	}
}

// checkDeviceRanges rejects axis values the device cannot show.
func checkDeviceRanges(cfg config.Session) error {
	for _, v := range cfg.Levels.Values {
		if v < protocol.MinLevel || v > protocol.MaxLevel {
			return &errors.ValidationError{
				Field:      "cost level",
				Value:      v,
				Constraint: fmt.Sprintf("must be a whole number from %d through %d", protocol.MinLevel, protocol.MaxLevel),
			}
		}
	}

	for _, v := range cfg.Feeders.Values {
		if v < protocol.MinFeeder || v > protocol.MaxFeeder {
			return &errors.ValidationError{
				Field:      "feeder",
				Value:      v,
				Constraint: fmt.Sprintf("must be a whole number from %d through %d", protocol.MinFeeder, protocol.MaxFeeder),
			}
		}
	}

	return nil
}
