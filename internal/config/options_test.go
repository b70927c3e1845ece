package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()

	require.Equal(t, DefaultTTLLength, opts.TTLLength)
	require.Equal(t, DefaultRelayLength, opts.RelayLength)
	require.Equal(t, DefaultResponseTimeout, opts.ResponseTimeout)
	require.Equal(t, DefaultEOL, opts.EOL)
	require.Equal(t, FirmwareTTLMode, opts.Firmware)
	require.NotNil(t, opts.Logger)
	require.NotNil(t, opts.Clock)
}

func TestOptions_WithDefaultsKeepsZeroLength(t *testing.T) {
	opts := Options{TTLLength: ZeroLength, RelayLength: 300 * time.Millisecond}.WithDefaults()

	require.Zero(t, opts.TTLLength)
	require.Equal(t, 300*time.Millisecond, opts.RelayLength)
}

func TestExplicitLength(t *testing.T) {
	require.Equal(t, ZeroLength, ExplicitLength(0))
	require.Equal(t, ZeroLength, ExplicitLength(-time.Second))
	require.Equal(t, time.Second, ExplicitLength(time.Second))
}
