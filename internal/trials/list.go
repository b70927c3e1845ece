package trials

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/errors"
)

// header is the first row of every saved trial list.
var header = []string{"feeder", "cost_level"}

// List is the randomized trial order of one session. Position i of Feeders
// and Levels together describe trial i.
type List struct {
	Feeders []int
	Levels  []int
}

// Trial is one row of a List.
type Trial struct {
	Index  int
	Feeder int
	Level  int
}

// Len returns the number of trials.
func (l List) Len() int {
	return len(l.Levels)
}

// Trial returns trial i.
func (l List) Trial(i int) Trial {
	return Trial{Index: i, Feeder: l.Feeders[i], Level: l.Levels[i]}
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	return List{
		Feeders: slices.Clone(l.Feeders),
		Levels:  slices.Clone(l.Levels),
	}
}

// Validate checks that the sequences have the same non-zero length and only
// hold values of their axes. A loaded or hand-edited list must pass before a
// session runs it.
func (l List) Validate(levels, feeders config.Axis) error {
	if len(l.Levels) == 0 {
		return errors.ErrNoTrials
	}

	if len(l.Feeders) != len(l.Levels) {
		return &errors.ValidationError{
			Field:      "trial list",
			Value:      fmt.Sprintf("%d feeders, %d levels", len(l.Feeders), len(l.Levels)),
			Constraint: "feeder and cost level sequences must have the same length",
		}
	}

	for i, v := range l.Levels {
		if !levels.Contains(v) {
			return &errors.ValidationError{
				Field:      fmt.Sprintf("cost level of trial %d", i),
				Value:      v,
				Constraint: fmt.Sprintf("must be one of %v", levels.Values),
			}
		}
	}

	for i, v := range l.Feeders {
		if !feeders.Contains(v) {
			return &errors.ValidationError{
				Field:      fmt.Sprintf("feeder of trial %d", i),
				Value:      v,
				Constraint: fmt.Sprintf("must be one of %v", feeders.Values),
			}
		}
	}

	return nil
}

// Save writes l to path as CSV, creating parent directories as needed.
func Save(path string, l List) error {
	if len(l.Feeders) != len(l.Levels) {
		return &errors.ValidationError{
			Field:      "trial list",
			Value:      path,
			Constraint: "feeder and cost level sequences must have the same length",
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create trial list directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trial list: %w", err)
	}

	if err := Write(f, l); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close trial list: %w", err)
	}

	return nil
}

// Write encodes l as CSV.
func Write(w io.Writer, l List) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write trial list header: %w", err)
	}

	for i := range l.Levels {
		row := []string{strconv.Itoa(l.Feeders[i]), strconv.Itoa(l.Levels[i])}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trial list row %d: %w", i, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush trial list: %w", err)
	}

	return nil
}

// Load reads a list saved by Save.
func Load(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return List{}, fmt.Errorf("open trial list: %w", err)
	}
	defer f.Close()

	l, err := Read(f)
	if ferr, ok := stderrors.AsType[*errors.TrialListFormatError](err); ok {
		ferr.Path = path
	}

	return l, err
}

// Read decodes a CSV trial list. Columns are matched by header name, so
// files with the columns swapped load correctly.
func Read(r io.Reader) (List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return List{}, formatError(1, fmt.Errorf("read header: %w", err))
	}

	feederCol := slices.Index(head, header[0])
	levelCol := slices.Index(head, header[1])

	if feederCol < 0 || levelCol < 0 {
		return List{}, formatError(1, fmt.Errorf("header %v, want %v", head, header))
	}

	var l List

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return List{}, formatError(line, err)
		}

		feeder, err := strconv.Atoi(rec[feederCol])
		if err != nil {
			return List{}, formatError(line, fmt.Errorf("feeder: %w", err))
		}

		level, err := strconv.Atoi(rec[levelCol])
		if err != nil {
			return List{}, formatError(line, fmt.Errorf("cost_level: %w", err))
		}

		l.Feeders = append(l.Feeders, feeder)
		l.Levels = append(l.Levels, level)
	}

	if l.Len() == 0 {
		return List{}, formatError(0, errors.ErrNoTrials)
	}

	return l, nil
}

func formatError(line int, err error) error {
	return &errors.TrialListFormatError{Line: line, Err: err}
}
