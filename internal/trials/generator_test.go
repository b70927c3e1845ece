package trials

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/errors"
)

func newSeededGenerator(seed uint64) *Generator {
	return NewGenerator(nil, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func count(values []int) map[int]int {
	out := make(map[int]int)
	for _, v := range values {
		out[v]++
	}

	return out
}

func TestGenerateList_TenTrialScenario(t *testing.T) {
	levels := config.Axis{Values: []int{0, 1, 2, 3}, Probabilities: []float64{0, 0.5, 0, 0.5}}
	feeders := config.Axis{Values: []int{1, 2, 3, 4}, Probabilities: []float64{0.25, 0.25, 0.25, 0.25}}

	for seed := range uint64(50) {
		list, err := newSeededGenerator(seed).GenerateList(10, levels, feeders)
		require.NoError(t, err)

		require.Len(t, list.Levels, 10)
		require.Len(t, list.Feeders, 10)
		require.Equal(t, map[int]int{1: 5, 3: 5}, count(list.Levels))

		for v, n := range count(list.Feeders) {
			require.Contains(t, []int{1, 2, 3, 4}, v)
			require.GreaterOrEqual(t, n, 2)
			require.LessOrEqual(t, n, 4)
		}
	}
}

func TestGenerate_FrequencyWithinOneOfExpected(t *testing.T) {
	tests := []struct {
		name string
		n    int
		axis config.Axis
	}{
		{
			name: "uniform four",
			n:    4,
			axis: config.Axis{Values: []int{1, 2, 3, 4}, Probabilities: []float64{0.25, 0.25, 0.25, 0.25}},
		},
		{
			name: "skewed",
			n:    16,
			axis: config.Axis{Values: []int{0, 1, 2}, Probabilities: []float64{0.5, 0.25, 0.25}},
		},
		{
			name: "eighths with remainder",
			n:    7,
			axis: config.Axis{Values: []int{0, 1, 2, 3}, Probabilities: []float64{0.5, 0.25, 0.125, 0.125}},
		},
		{
			name: "two values",
			n:    9,
			axis: config.Axis{Values: []int{2, 3}, Probabilities: []float64{0.75, 0.25}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := range uint64(20) {
				got, err := newSeededGenerator(seed).Generate(tt.n, tt.axis, "test")
				require.NoError(t, err)
				require.Len(t, got, tt.n)

				counts := count(got)
				for i, v := range tt.axis.Values {
					// floor(p*N) copies are guaranteed; at most N - sum(floor)
					// correction draws can land on any one value.
					floor := int(tt.axis.Probabilities[i] * float64(tt.n))
					require.GreaterOrEqual(t, counts[v], floor)

					if tt.n-sumFloors(tt.n, tt.axis) <= 1 {
						expected := int(math.Round(tt.axis.Probabilities[i] * float64(tt.n)))
						require.InDelta(t, expected, counts[v], 1)
					}
				}

				for v := range counts {
					require.True(t, tt.axis.Contains(v))
				}
			}
		})
	}
}

func sumFloors(n int, axis config.Axis) int {
	var s int
	for _, p := range axis.Probabilities {
		s += int(p * float64(n))
	}

	return s
}

func TestGenerate_ZeroProbabilityNeverDrawn(t *testing.T) {
	axis := config.Axis{Values: []int{0, 1, 2}, Probabilities: []float64{0, 0.5, 0.5}}

	for seed := range uint64(20) {
		got, err := newSeededGenerator(seed).Generate(3, axis, "level")
		require.NoError(t, err)
		require.NotContains(t, got, 0)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	axis := config.Axis{Values: []int{1, 2, 3, 4}, Probabilities: []float64{0.25, 0.25, 0.25, 0.25}}

	a, err := newSeededGenerator(7).Generate(12, axis, "feeder")
	require.NoError(t, err)

	b, err := newSeededGenerator(7).Generate(12, axis, "feeder")
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestGenerate_Rejects(t *testing.T) {
	g := newSeededGenerator(1)

	t.Run("bad sum", func(t *testing.T) {
		got, err := g.Generate(10, config.Axis{Values: []int{1, 2}, Probabilities: []float64{0.5, 0.4}}, "feeder")
		require.ErrorIs(t, err, errors.ErrInvalidProbabilities)
		require.Nil(t, got)
	})

	t.Run("empty axis", func(t *testing.T) {
		got, err := g.Generate(10, config.Axis{}, "feeder")
		require.ErrorIs(t, err, errors.ErrEmptyAxis)
		require.Nil(t, got)
	})

	t.Run("no trials", func(t *testing.T) {
		_, err := g.Generate(0, config.Axis{Values: []int{1}, Probabilities: []float64{1}}, "feeder")
		require.ErrorIs(t, err, errors.ErrNoTrials)
	})

	t.Run("list refuses on second axis", func(t *testing.T) {
		levels := config.Axis{Values: []int{0}, Probabilities: []float64{1}}

		list, err := g.GenerateList(5, levels, config.Axis{Values: []int{1}, Probabilities: []float64{0.9}})
		require.ErrorIs(t, err, errors.ErrInvalidProbabilities)
		require.Zero(t, list.Len())
	})
}

func TestCorrect_RemovesFirstOccurrence(t *testing.T) {
	// Only 7 can be drawn, so every removal targets the leftmost 7.
	axis := config.Axis{Values: []int{7, 9}, Probabilities: []float64{1, 0}}
	g := newSeededGenerator(1)

	require.Equal(t, []int{9, 3, 7}, g.correct([]int{9, 7, 3, 7}, 3, axis))
	require.Equal(t, []int{9, 3}, g.correct([]int{9, 7, 3, 7}, 2, axis))
}

func TestCorrect_RedrawsWhenValueAbsent(t *testing.T) {
	// Draws of 2 find nothing to remove and are retried.
	axis := config.Axis{Values: []int{1, 2}, Probabilities: []float64{0.5, 0.5}}

	for seed := range uint64(20) {
		got := newSeededGenerator(seed).correct([]int{1, 1, 1, 1}, 2, axis)
		require.Equal(t, []int{1, 1}, got)
	}
}

func TestCorrect_AppendsWeightedDraws(t *testing.T) {
	axis := config.Axis{Values: []int{4, 5}, Probabilities: []float64{0, 1}}

	got := newSeededGenerator(3).correct([]int{4}, 4, axis)
	require.Equal(t, []int{4, 5, 5, 5}, got)
}

func TestCorrect_ExactLengthUnchanged(t *testing.T) {
	axis := config.Axis{Values: []int{1, 2}, Probabilities: []float64{0.5, 0.5}}

	got := newSeededGenerator(5).correct([]int{2, 1, 2}, 3, axis)
	require.Equal(t, []int{2, 1, 2}, got)
}

func TestReshuffle_PreservesCounts(t *testing.T) {
	g := newSeededGenerator(3)
	list := List{
		Feeders: []int{1, 1, 2, 2, 3, 3, 4, 4},
		Levels:  []int{0, 0, 0, 0, 3, 3, 3, 3},
	}
	before := list.Clone()

	g.Reshuffle(&list)

	require.Equal(t, count(before.Feeders), count(list.Feeders))
	require.Equal(t, count(before.Levels), count(list.Levels))

	sortedBefore := slices.Sorted(slices.Values(before.Feeders))
	sortedAfter := slices.Sorted(slices.Values(list.Feeders))
	require.Equal(t, sortedBefore, sortedAfter)
}
