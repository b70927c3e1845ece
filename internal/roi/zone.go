package roi

import (
	"strconv"
	"strings"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Zone identifies a tracked region. All selects every zone.
type Zone int

const (
	All Zone = iota
	Diag
	Grid
	Hori
	Radi
)

// Zones lists the tracked zones in column order.
var Zones = []Zone{Diag, Grid, Hori, Radi}

var zoneNames = map[Zone]string{
	All:  "all",
	Diag: "diag",
	Grid: "grid",
	Hori: "hori",
	Radi: "radi",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}

	return "Zone(" + strconv.Itoa(int(z)) + ")"
}

// Column returns the tracking CSV header for z, or "" for All.
func (z Zone) Column() string {
	if z == All {
		return ""
	}

	return "IsIn" + strings.ToUpper(z.String())
}

// Parse resolves a zone name or a zone number 1..4. Names match
// case-insensitively anywhere in value, so "diagonal" selects Diag.
func Parse(value string) (Zone, error) {
	v := strings.ToLower(strings.TrimSpace(value))

	if n, err := strconv.Atoi(v); err == nil {
		if n >= int(Diag) && n <= int(Radi) {
			return Zone(n), nil
		}

		return 0, &errors.InvalidROIError{Value: value}
	}

	if v == zoneNames[All] {
		return All, nil
	}

	for _, z := range Zones {
		if strings.Contains(v, zoneNames[z]) {
			return z, nil
		}
	}

	return 0, &errors.InvalidROIError{Value: value}
}
