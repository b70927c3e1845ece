package recordrig_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/recordrig-go"
)

func testSession(t *testing.T, trials int) recordrig.Session {
	t.Helper()

	cfg := recordrig.DefaultSession()
	cfg.Trials = trials
	cfg.OutputRoot = t.TempDir()
	cfg.Subject.ID = "rat07"
	cfg.TaskType = "foraging"

	return cfg
}

func TestGenerateTrialList_Reproducible(t *testing.T) {
	cfg := testSession(t, 12)

	a, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(1, 2))
	require.NoError(t, err)

	b, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(1, 2))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, 12, a.Len())
}

func TestGenerateTrialList_RejectsBadProbabilities(t *testing.T) {
	cfg := testSession(t, 4)
	cfg.Levels.Probabilities = []float64{0.5, 0.5, 0.5, 0.5}

	_, err := recordrig.GenerateTrialList(cfg, nil)
	require.ErrorIs(t, err, recordrig.ErrInvalidProbabilities)
}

func TestTrialList_SaveReshuffleLoad(t *testing.T) {
	cfg := testSession(t, 8)

	list, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(3, 4))
	require.NoError(t, err)

	shuffled := list.Clone()
	recordrig.ReshuffleTrialList(&shuffled, rand.NewPCG(5, 6))
	require.ElementsMatch(t, list.Feeders, shuffled.Feeders)
	require.ElementsMatch(t, list.Levels, shuffled.Levels)

	path := filepath.Join(cfg.OutputRoot, "list.csv")
	require.NoError(t, recordrig.SaveTrialList(path, shuffled))

	loaded, err := recordrig.LoadTrialList(path)
	require.NoError(t, err)
	require.Equal(t, shuffled.Feeders, loaded.Feeders)
	require.Equal(t, shuffled.Levels, loaded.Levels)
}

func TestRunSession_ExportsFilesAndArchive(t *testing.T) {
	cfg := testSession(t, 3)
	device := &echoDevice{}

	list, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(7, 8))
	require.NoError(t, err)

	archive, err := recordrig.OpenArchive(nil, filepath.Join(cfg.OutputRoot, "sessions.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = archive.Close() })

	base := filepath.Join(cfg.OutputRoot, "run")

	summary, err := recordrig.RunSession(context.Background(), device, cfg, list,
		recordrig.WithClock(newInstantClock()),
		recordrig.WithExporters(recordrig.NewFileExporter(nil, base), archive),
	)
	require.NoError(t, err)
	require.NoError(t, summary.ExportErr)
	require.Len(t, summary.Trials, 3)
	require.False(t, summary.Interrupted)

	for _, rec := range summary.Trials {
		require.True(t, rec.Accepted)
	}

	require.FileExists(t, base+"_metadata.txt")
	require.FileExists(t, base+"_events.csv")

	meta, err := os.ReadFile(base + "_metadata.txt")
	require.NoError(t, err)
	require.Contains(t, string(meta), "sessionid:"+summary.ID.String())
	require.Contains(t, string(meta), "trials:3")

	sessions, err := archive.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.Equal(t, 1, device.opens)
	require.Equal(t, 1, device.closes)
	require.Contains(t, device.getWrites(), "t")
}

func TestRunSession_WithSyncQueryDisabled(t *testing.T) {
	cfg := testSession(t, 1)
	device := &echoDevice{}

	list, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(9, 10))
	require.NoError(t, err)

	_, err = recordrig.RunSession(context.Background(), device, cfg, list,
		recordrig.WithClock(newInstantClock()),
		recordrig.WithSyncQuery(false),
	)
	require.NoError(t, err)
	require.False(t, slices.Contains(device.getWrites(), "t"))
}

func TestRunSession_Decider(t *testing.T) {
	cfg := testSession(t, 2)
	device := &echoDevice{}

	list, err := recordrig.GenerateTrialList(cfg, rand.NewPCG(11, 12))
	require.NoError(t, err)

	var offered []int

	decline := recordrig.DeciderFunc(func(_ context.Context, trial recordrig.Trial) (bool, error) {
		offered = append(offered, trial.Feeder)

		return false, nil
	})

	summary, err := recordrig.RunSession(context.Background(), device, cfg, list,
		recordrig.WithClock(newInstantClock()),
		recordrig.WithDecider(decline),
	)
	require.NoError(t, err)
	require.Equal(t, list.Feeders, offered)

	for _, rec := range summary.Trials {
		require.False(t, rec.Accepted)
		require.Equal(t, "n", rec.Decision())
	}

	for _, valve := range []string{"F", "G", "H", "J"} {
		require.NotContains(t, device.getWrites(), valve)
	}
}

func TestRunSession_CancelledContext(t *testing.T) {
	cfg := testSession(t, 1)
	device := &echoDevice{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := recordrig.RunSession(ctx, device, cfg, recordrig.TrialList{Feeders: []int{1}, Levels: []int{0}})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, summary)
	require.Empty(t, device.getWrites())
}

func TestRunSession_InvalidConfig(t *testing.T) {
	cfg := testSession(t, 1)
	cfg.Trials = 0

	_, err := recordrig.RunSession(context.Background(), &echoDevice{}, cfg, recordrig.TrialList{})
	require.ErrorIs(t, err, recordrig.ErrNoTrials)
}

func TestSessionBaseName(t *testing.T) {
	cfg := testSession(t, 1)
	start := newInstantClock().Now()

	base := recordrig.SessionBaseName(cfg, start)

	require.Equal(t, filepath.Join(cfg.OutputRoot, "rat07_foraging_Mon-May-06-2024_09-30-00"), base)
}

func TestErrorsMatchThroughAliases(t *testing.T) {
	var err error = &recordrig.ValidationError{Field: "feeder", Value: 9, Constraint: "must be 1 through 4"}

	verr, ok := errors.AsType[*recordrig.ValidationError](err)
	require.True(t, ok)
	require.Equal(t, "feeder", verr.Field)

	rerr, ok := errors.AsType[recordrig.RigError](err)
	require.True(t, ok)
	require.True(t, rerr.IsRigError())
}
