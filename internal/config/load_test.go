package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	def := DefaultSession()
	require.Equal(t, def.Trials, s.Trials)
	require.Equal(t, def.InterTrial, s.InterTrial)
	require.Equal(t, def.Levels, s.Levels)
	require.Equal(t, "UTC", s.Timezone)
	require.True(t, s.QuerySyncState)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "session.yaml", `
trials: 10
inter_trial_interval: 1s
decision_interval: 1500ms
levels:
  values: [0, 1, 2, 3]
  probabilities: [0, 0.5, 0, 0.5]
feeders:
  values: [1, 2, 3, 4]
  probabilities: [0.25, 0.25, 0.25, 0.25]
cost_intensities: ["0lux", "15lux", "140lux", "290lux"]
subject:
  id: A4
timezone: America/Denver
`)

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, s.Trials)
	require.Equal(t, time.Second, s.InterTrial)
	require.Equal(t, 1500*time.Millisecond, s.Decision)
	require.Equal(t, []float64{0, 0.5, 0, 0.5}, s.Levels.Probabilities)
	require.Equal(t, "A4", s.Subject.ID)
	require.Equal(t, "Undefined", s.Subject.Health, "unset nested key keeps default")
	require.Equal(t, "America/Denver", s.Timezone)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RECORD_TRIALS", "12")
	t.Setenv("RECORD_SUBJECT_ID", "B7")

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 12, s.Trials)
	require.Equal(t, "B7", s.Subject.ID)
}

func TestLoad_InvalidProbabilities(t *testing.T) {
	path := writeConfig(t, "bad.yaml", `
feeders:
  values: [1, 2]
  probabilities: [0.5, 0.6]
`)

	_, err := Load(path)
	require.ErrorIs(t, err, errors.ErrInvalidProbabilities)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestOptionsFromViper(t *testing.T) {
	path := writeConfig(t, "rig.yaml", `
ttl_length: 250ms
firmware: v2.0
`)

	v, err := NewViper(path)
	require.NoError(t, err)

	opts := OptionsFromViper(v)
	require.Equal(t, 250*time.Millisecond, opts.TTLLength)
	require.Equal(t, DefaultRelayLength, opts.RelayLength)
	require.Equal(t, FirmwareLegacy, opts.Firmware)
}

func TestOptionsFromViper_ZeroLengths(t *testing.T) {
	path := writeConfig(t, "rig.yaml", `
ttl_length: 0s
relay_length: 0s
`)

	v, err := NewViper(path)
	require.NoError(t, err)

	opts := OptionsFromViper(v).WithDefaults()
	require.Zero(t, opts.TTLLength)
	require.Zero(t, opts.RelayLength)
}
