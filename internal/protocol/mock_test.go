package protocol

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
)

// mockTransport is a scripted device: every write of a known command queues
// its reply on the input side, which Read hands out one byte at a time.
type mockTransport struct {
	mu       sync.Mutex
	replies  map[string]string
	input    []byte
	writes   []string
	flushes  int
	closes   int
	openErr  error
	writeErr error
	// failAfter makes every write after the first failAfter ones fail with
	// writeErr. Zero fails from the first write.
	failAfter int
}

var _ config.Transport = (*mockTransport)(nil)

func newMockTransport() *mockTransport {
	return &mockTransport{replies: make(map[string]string)}
}

func (m *mockTransport) reply(cmd, frame string) *mockTransport {
	m.replies[cmd] = frame

	return m
}

func (m *mockTransport) Open() error {
	return m.openErr
}

func (m *mockTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil && len(m.writes) >= m.failAfter {
		return 0, m.writeErr
	}

	m.writes = append(m.writes, string(p))

	if frame, ok := m.replies[string(p)]; ok {
		m.input = append(m.input, frame...)
	}

	return len(p), nil
}

func (m *mockTransport) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.input) == 0 || len(p) == 0 {
		return 0, nil
	}

	p[0] = m.input[0]
	m.input = m.input[1:]

	return 1, nil
}

func (m *mockTransport) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.input = nil
	m.flushes++

	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closes++

	return nil
}

func (m *mockTransport) getWrites() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.writes))
	copy(out, m.writes)

	return out
}

func (m *mockTransport) pending() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return string(m.input)
}

// fakeClock advances one millisecond per Now call and by the full duration
// on Sleep, recording every sleep.
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

func (c *fakeClock) getSleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)

	return out
}

// newTestDriver returns an opened driver over a fresh mock and fake clock.
func newTestDriver(opts ...func(*config.Options)) (*Driver, *mockTransport, *fakeClock) {
	transport := newMockTransport()
	clock := newFakeClock()

	o := config.Options{Clock: clock}
	for _, opt := range opts {
		opt(&o)
	}

	d := NewDriver(transport, o)
	if err := d.Open(); err != nil {
		panic(err)
	}

	return d, transport, clock
}

func frame(text string) string {
	return text + config.DefaultEOL
}

func joined(writes []string) string {
	return strings.Join(writes, "|")
}
