package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/protocol"
)

// fakeDevice answers every command the way the RECORD firmware does and
// tracks its TTL output so input-state queries reflect the sync pulses sent.
type fakeDevice struct {
	mu     sync.Mutex
	writes []string
	input  []byte
	ttlOn  bool
	opens  int
	closes int
	// silent lists commands the device never acknowledges.
	silent map[string]bool
}

var _ config.Transport = (*fakeDevice)(nil)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{silent: make(map[string]bool)}
}

func (d *fakeDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opens++

	return nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := string(p)
	d.writes = append(d.writes, cmd)

	if d.silent[cmd] {
		return len(p), nil
	}

	var reply string

	switch {
	case cmd == "T":
		d.ttlOn = !d.ttlOn
		reply = "T: TTL out toggled at 1.100"
	case cmd == "t":
		if d.ttlOn {
			reply = "t: TTL is HIGH"
		} else {
			reply = "t: TTL is LOW"
		}
	case cmd == "R":
		reply = "R: reset all peripherals at 1.200"
	case cmd == "Q":
		reply = "Q: timer started at 0.0"
	case cmd == "E":
		reply = "E: timer stopped at 9.999"
	case cmd == "K":
		reply = "K: indicator toggled at 0.300"
	case strings.HasPrefix(cmd, "#F"):
		reply = fmt.Sprintf("%s: feeder light on at 0.400", cmd)
	case strings.Contains("FGHJ", cmd):
		reply = fmt.Sprintf("%s: valve open at 2.500", cmd)
	default:
		return len(p), nil
	}

	d.input = append(d.input, reply+config.DefaultEOL...)

	return len(p), nil
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.input) == 0 || len(p) == 0 {
		return 0, nil
	}

	p[0] = d.input[0]
	d.input = d.input[1:]

	return 1, nil
}

func (d *fakeDevice) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.input = nil

	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++

	return nil
}

func (d *fakeDevice) getWrites() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.writes))
	copy(out, d.writes)

	return out
}

func (d *fakeDevice) count(cmd string) int {
	var n int

	for _, w := range d.getWrites() {
		if w == cmd {
			n++
		}
	}

	return n
}

// fakeClock advances one millisecond per Now call and by the full duration
// on Sleep.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

var _ config.Clock = (*fakeClock)(nil)

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Millisecond)

	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)

	return ctx.Err()
}

// recordingExporter keeps every summary it is given.
type recordingExporter struct {
	mu    sync.Mutex
	calls []*Summary
	err   error
}

func (e *recordingExporter) Export(_ context.Context, s *Summary) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, s)

	return e.err
}

func testSession(trialCount int) config.Session {
	cfg := config.DefaultSession()
	cfg.Trials = trialCount
	cfg.CostIntensities = []string{"0", "70lux", "140lux", "210lux"}
	cfg.RewardConcentrations = []string{"2%", "5%", "10%", "20%"}

	return cfg
}

func newTestRig() (*protocol.Driver, *fakeDevice, *fakeClock) {
	device := newFakeDevice()
	clock := newFakeClock()
	driver := protocol.NewDriver(device, config.Options{Clock: clock})

	return driver, device, clock
}
