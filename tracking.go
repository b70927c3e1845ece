package recordrig

import (
	"log/slog"

	"github.com/wagiedev/recordrig-go/internal/roi"
)

// ParseZone resolves a zone name ("diag", "grid", "hori", "radi", "all")
// or zone number 1..4.
func ParseZone(value string) (Zone, error) {
	return roi.Parse(value)
}

// ZoneStatus returns the occupancy of z for every frame of the tracking
// file at path.
func ZoneStatus(path string, z Zone) ([]bool, error) {
	return roi.Status(path, z)
}

// NewZoneDecider decides offers from the latest frame of the tracking file
// at path: feeder n is accepted when the subject is in zone n.
func NewZoneDecider(log *slog.Logger, path string) Decider {
	return roi.NewDecider(log, path)
}
