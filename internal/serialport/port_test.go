package serialport

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	rigerrors "github.com/wagiedev/recordrig-go/internal/errors"
)

type fakeDevice struct {
	mu          sync.Mutex
	in          bytes.Buffer
	out         bytes.Buffer
	readTimeout time.Duration
	resets      int
	closed      int
}

func (f *fakeDevice) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.in.Len() == 0 {
		return 0, nil
	}

	return f.in.Read(p)
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.out.Write(p)
}

func (f *fakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++

	return nil
}

func (f *fakeDevice) ResetInputBuffer() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.in.Reset()
	f.resets++

	return nil
}

func (f *fakeDevice) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readTimeout = t

	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyTEST"
	cfg.OpenRetries = 3
	cfg.OpenRetryInterval = time.Millisecond

	return cfg
}

func TestPort_OpenAppliesModeAndTimeout(t *testing.T) {
	dev := &fakeDevice{}

	var gotName string

	var gotMode *serial.Mode

	p := New(nil, testConfig())
	p.open = func(name string, mode *serial.Mode) (device, error) {
		gotName, gotMode = name, mode

		return dev, nil
	}

	require.NoError(t, p.Open())
	require.Equal(t, "/dev/ttyTEST", gotName)
	require.Equal(t, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}, gotMode)
	require.Equal(t, DefaultReadTimeout, dev.readTimeout)
}

func TestPort_OpenRetriesUntilDeviceAppears(t *testing.T) {
	dev := &fakeDevice{}
	attempts := 0

	p := New(nil, testConfig())
	p.open = func(string, *serial.Mode) (device, error) {
		attempts++
		if attempts < 3 {
			return nil, &serial.PortError{}
		}

		return dev, nil
	}

	require.NoError(t, p.Open())
	require.Equal(t, 3, attempts)
}

func TestPort_OpenGivesUpAfterRetries(t *testing.T) {
	missing := errors.New("no such file or directory")
	attempts := 0

	p := New(nil, testConfig())
	p.open = func(string, *serial.Mode) (device, error) {
		attempts++

		return nil, missing
	}

	err := p.Open()
	require.ErrorIs(t, err, missing)
	require.Equal(t, 4, attempts)
}

func TestPort_OpenRejectsBadSettingsWithoutTrying(t *testing.T) {
	cfg := testConfig()
	cfg.StopBits = 3

	p := New(nil, cfg)
	p.open = func(string, *serial.Mode) (device, error) {
		t.Fatal("open must not be called")

		return nil, nil
	}

	err := p.Open()

	verr, ok := errors.AsType[*rigerrors.ValidationError](err)
	require.True(t, ok)
	require.Equal(t, "stop bits", verr.Field)
}

func TestPort_ReadWriteFlushClose(t *testing.T) {
	dev := &fakeDevice{}
	dev.in.WriteString("R: ok\r\n\n")

	p := New(nil, testConfig())
	p.open = func(string, *serial.Mode) (device, error) { return dev, nil }
	require.NoError(t, p.Open())

	n, err := p.Write([]byte("R"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "R", dev.out.String())

	buf := make([]byte, 2)
	n, err = p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "R:", string(buf[:n]))

	require.NoError(t, p.Flush())
	require.Equal(t, 1, dev.resets)

	n, err = p.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.Equal(t, 1, dev.closed)
}

func TestPort_UseBeforeOpen(t *testing.T) {
	p := New(nil, testConfig())

	_, err := p.Write([]byte("R"))
	require.ErrorIs(t, err, rigerrors.ErrTransportNotOpen)

	_, err = p.Read(make([]byte, 1))
	require.ErrorIs(t, err, rigerrors.ErrTransportNotOpen)

	require.ErrorIs(t, p.Flush(), rigerrors.ErrTransportNotOpen)
	require.NoError(t, p.Close())
}

func TestLoadConfig(t *testing.T) {
	v := viper.New()
	v.Set("serial.port", "COM7")
	v.Set("serial.parity", "e")
	v.Set("serial.read_timeout", "50ms")

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	require.Equal(t, "COM7", cfg.Port)
	require.Equal(t, 9600, cfg.BaudRate)
	require.Equal(t, "e", cfg.Parity)
	require.Equal(t, 50*time.Millisecond, cfg.ReadTimeout)
	require.Equal(t, DefaultOpenRetries, cfg.OpenRetries)

	mode, err := cfg.mode()
	require.NoError(t, err)
	require.Equal(t, serial.EvenParity, mode.Parity)
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("serial.parity", "X")

	_, err := LoadConfig(v)

	verr, ok := errors.AsType[*rigerrors.ValidationError](err)
	require.True(t, ok)
	require.Equal(t, "parity", verr.Field)
}
