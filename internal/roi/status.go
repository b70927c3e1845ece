package roi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// truthy holds the spellings the tracker and hand-edited files use for true.
var truthy = []string{"true", "1", "t", "y", "yes", "yeah", "yup", "certainly", "uh-huh"}

// Sample is the occupancy of every zone in one tracking frame.
type Sample [4]bool

// In reports whether the subject is in z. For All it reports whether the
// subject is in any zone.
func (s Sample) In(z Zone) bool {
	if z == All {
		return slices.Contains(s[:], true)
	}

	if z < Diag || z > Radi {
		return false
	}

	return s[z-1]
}

// ReadSamples reads every frame from a tracking CSV.
func ReadSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, lineError(1, errors.New("missing header"))
		}

		return nil, lineError(1, err)
	}

	var cols [4]int

	for i, z := range Zones {
		cols[i] = slices.IndexFunc(header, func(h string) bool {
			return strings.TrimSpace(h) == z.Column()
		})
		if cols[i] < 0 {
			return nil, lineError(1, fmt.Errorf("missing column %q", z.Column()))
		}
	}

	var samples []Sample

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		line, _ := cr.FieldPos(0)

		if err != nil {
			return nil, lineError(line, err)
		}

		var s Sample

		for i, col := range cols {
			if col >= len(record) {
				return nil, lineError(line, fmt.Errorf("short row: %d fields", len(record)))
			}

			s[i] = isTruthy(record[col])
		}

		samples = append(samples, s)
	}

	return samples, nil
}

func lineError(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}

func isTruthy(v string) bool {
	return slices.Contains(truthy, strings.ToLower(strings.TrimSpace(v)))
}

// Samples reads the tracking file at path.
func Samples(path string) ([]Sample, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tracking file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tracking file: %w", err)
	}
	defer f.Close()

	samples, err := ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("tracking file %s: %w", path, err)
	}

	return samples, nil
}

// Status returns the occupancy of z for every frame in the tracking file.
// For All each entry reports whether the subject was in any zone.
func Status(path string, z Zone) ([]bool, error) {
	samples, err := Samples(path)
	if err != nil {
		return nil, err
	}

	out := make([]bool, len(samples))
	for i, s := range samples {
		out[i] = s.In(z)
	}

	return out, nil
}

// Last returns the most recent frame in the tracking file.
func Last(path string) (Sample, error) {
	samples, err := Samples(path)
	if err != nil {
		return Sample{}, err
	}

	if len(samples) == 0 {
		return Sample{}, fmt.Errorf("tracking file %s has no frames", path)
	}

	return samples[len(samples)-1], nil
}
