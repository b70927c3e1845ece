package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/trials"
)

// Exporter persists a finished session. Exporters are called once per Run,
// after the trial loop and before device cleanup, and only when at least one
// trial completed.
type Exporter interface {
	Export(ctx context.Context, summary *Summary) error
}

// Summary is the outcome of one session.
type Summary struct {
	// ID identifies the session in exported files and the archive.
	ID ulid.ULID
	// Config is the configuration the session ran with.
	Config config.Session
	// List is the trial list the session ran.
	List trials.List

	Start time.Time
	End   time.Time

	// Trials holds the completed trials in execution order.
	Trials []TrialRecord

	// Interrupted is set when the context was cancelled before every trial ran.
	Interrupted bool
	// ExportErr is the exporter failure, if any. Export failures never fail Run.
	ExportErr error
}

// Duration returns the session length, finalized when Run returns.
func (s *Summary) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}

	return s.End.Sub(s.Start)
}

// Location returns the session timezone, falling back to UTC.
func (s *Summary) Location() *time.Location {
	loc, err := s.Config.Location()
	if err != nil {
		return time.UTC
	}

	return loc
}

// WriteReport prints the session time and one line per completed trial.
func (s *Summary) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Session %s time: %s\n", s.ID, s.Duration()); err != nil {
		return err
	}

	for _, rec := range s.Trials {
		_, err := fmt.Fprintf(w, " %d. %s using feeder %d (%s) and level %d (%s) with decision %s\n",
			rec.Index, rec.Elapsed(), rec.Feeder, rec.RewardConcentration,
			rec.Level, rec.CostIntensity, rec.Decision())
		if err != nil {
			return err
		}
	}

	return nil
}
