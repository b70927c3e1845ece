package trials

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Generator draws trial lists. A Generator is not safe for concurrent use.
type Generator struct {
	log *slog.Logger
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from src. A nil src seeds a PCG
// source from the runtime's random state; pass a fixed source for
// reproducible lists.
func NewGenerator(log *slog.Logger, src rand.Source) *Generator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Generator{
		log: log.With("component", "trials"),
		rng: rand.New(src),
	}
}

// GenerateList draws the cost-level and feeder sequences for n trials. The
// two axes are drawn independently and never shuffled together.
func (g *Generator) GenerateList(n int, levels, feeders config.Axis) (List, error) {
	lv, err := g.Generate(n, levels, "cost level")
	if err != nil {
		return List{}, err
	}

	fd, err := g.Generate(n, feeders, "feeder")
	if err != nil {
		return List{}, err
	}

	g.log.Info("Generated trial list", "trials", n, "levels", lv, "feeders", fd)

	return List{Feeders: fd, Levels: lv}, nil
}

// Generate draws one sequence of exactly n values from axis. Nothing is
// returned on error.
func (g *Generator) Generate(n int, axis config.Axis, name string) ([]int, error) {
	if n < 1 {
		return nil, errors.ErrNoTrials
	}

	if err := axis.Validate(name); err != nil {
		return nil, err
	}

	out := make([]int, 0, n)

	for i, v := range axis.Values {
		copies := int(axis.Probabilities[i] * float64(n))
		for range copies {
			out = append(out, v)
		}
	}

	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	truncated := len(out)
	out = g.correct(out, n, axis)

	g.log.Debug("Drew axis", "axis", name, "truncated", truncated, "corrected", len(out)-truncated)

	return out, nil
}

// correct brings out to exactly n values. Short sequences get weighted
// draws appended; long ones lose the first occurrence of each weighted
// draw, redrawing when the drawn value is absent.
func (g *Generator) correct(out []int, n int, axis config.Axis) []int {
	for len(out) < n {
		out = append(out, g.draw(axis))
	}

	for len(out) > n {
		if i := slices.Index(out, g.draw(axis)); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
	}

	return out
}

// Reshuffle permutes both sequences of l in place, independently of each
// other. Trial counts per value are unchanged.
func (g *Generator) Reshuffle(l *List) {
	g.rng.Shuffle(len(l.Levels), func(i, j int) {
		l.Levels[i], l.Levels[j] = l.Levels[j], l.Levels[i]
	})

	g.rng.Shuffle(len(l.Feeders), func(i, j int) {
		l.Feeders[i], l.Feeders[j] = l.Feeders[j], l.Feeders[i]
	})

	g.log.Info("Reshuffled trial list", "levels", l.Levels, "feeders", l.Feeders)
}

// draw samples one value from the categorical distribution of axis.
// Zero-probability values are never returned.
func (g *Generator) draw(axis config.Axis) int {
	u := g.rng.Float64()

	var (
		cum  float64
		last = -1
	)

	for i, p := range axis.Probabilities {
		if p == 0 {
			continue
		}

		cum += p
		last = i

		if u < cum {
			return axis.Values[i]
		}
	}

	// Rounding left cum just below u; fall back to the last possible value.
	if last < 0 {
		panic(fmt.Sprintf("trials: axis %v has no positive probability", axis.Values))
	}

	return axis.Values[last]
}
