package recordrig_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/recordrig-go"
)

// echoDevice acknowledges every command with "<cmd>: ok" and records what
// it was sent.
type echoDevice struct {
	mu     sync.Mutex
	writes []string
	input  []byte
	opens  int
	closes int
}

var _ recordrig.Transport = (*echoDevice)(nil)

func (d *echoDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opens++

	return nil
}

func (d *echoDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := string(p)
	d.writes = append(d.writes, cmd)

	if cmd == "t" {
		d.input = append(d.input, "t: TTL is LOW\r\n\n"...)
	} else {
		d.input = append(d.input, strings.TrimSpace(cmd)+": ok\r\n\n"...)
	}

	return len(p), nil
}

func (d *echoDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.input) == 0 || len(p) == 0 {
		return 0, nil
	}

	n := copy(p, d.input)
	d.input = d.input[n:]

	return n, nil
}

func (d *echoDevice) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.input = nil

	return nil
}

func (d *echoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++

	return nil
}

func (d *echoDevice) getWrites() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.writes...)
}

// instantClock never sleeps.
type instantClock struct {
	mu  sync.Mutex
	now time.Time
}

func newInstantClock() *instantClock {
	return &instantClock{now: time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)}
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Millisecond)

	return c.now
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	return ctx.Err()
}
