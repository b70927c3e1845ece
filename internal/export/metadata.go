package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/recordrig-go/internal/session"
)

// Entry is one metadata line.
type Entry struct {
	Key   string
	Value string
}

// Metadata is the ordered descriptive dictionary of a session.
type Metadata []Entry

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}

	return "", false
}

// WriteTo writes one "key:value" line per entry.
func (m Metadata) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, e := range m {
		n, err := fmt.Fprintf(w, "%s:%s\n", e.Key, e.Value)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// BuildMetadata assembles the metadata of a finished session. List values
// are written in bracketed, comma-separated form ("[0, 1, 2, 3]") and
// intervals in seconds.
func BuildMetadata(s *session.Summary) Metadata {
	cfg := s.Config

	return Metadata{
		{Key: "sessionid", Value: s.ID.String()},
		{Key: "sessionstart", Value: session.FormatTime(s.Start, s.Location())},
		{Key: "sessionduration", Value: s.Duration().String()},
		{Key: "trials", Value: strconv.Itoa(cfg.Trials)},
		{Key: "avail_lvls", Value: intList(cfg.Levels.Values)},
		{Key: "costlevels", Value: stringList(cfg.CostIntensities)},
		{Key: "costprobabilities", Value: floatList(cfg.Levels.Probabilities)},
		{Key: "avail_reward", Value: intList(cfg.Feeders.Values)},
		{Key: "rewardlevels", Value: stringList(cfg.RewardConcentrations)},
		{Key: "rewardprobabilities", Value: floatList(cfg.Feeders.Probabilities)},
		{Key: "rewardvolume", Value: cfg.RewardVolume},
		{Key: "t_intertrial", Value: seconds(cfg.InterTrial)},
		{Key: "t_decision", Value: seconds(cfg.Decision)},
		{Key: "t_feeding", Value: seconds(cfg.Feeding)},
		{Key: "subjectid", Value: cfg.Subject.ID},
		{Key: "subjecthealth", Value: cfg.Subject.Health},
		{Key: "subjectweight", Value: cfg.Subject.Weight},
		{Key: "recordingtype", Value: cfg.RecordingType},
		{Key: "notes", Value: cfg.Notes},
	}
}

func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func floatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func stringList(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + v + "'"
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
