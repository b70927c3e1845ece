package serialport

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.bug.st/serial"

	"github.com/wagiedev/recordrig-go/internal/config"
	rigerrors "github.com/wagiedev/recordrig-go/internal/errors"
)

// device is the subset of serial.Port the transport uses.
type device interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

type openFunc func(name string, mode *serial.Mode) (device, error)

func openSerial(name string, mode *serial.Mode) (device, error) {
	return serial.Open(name, mode)
}

// Port is a config.Transport over a local serial device.
type Port struct {
	log  *slog.Logger
	cfg  Config
	open openFunc

	mu  sync.Mutex
	dev device
}

// Compile-time verification that Port implements config.Transport.
var _ config.Transport = (*Port)(nil)

// New creates a closed Port. Line settings are checked on Open.
func New(log *slog.Logger, cfg Config) *Port {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Port{
		log:  log.With("component", "serialport", "port", cfg.Port),
		cfg:  cfg,
		open: openSerial,
	}
}

// Open opens the device, retrying while it is missing or busy. Bad line
// settings fail immediately.
func (p *Port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev != nil {
		return nil
	}

	mode, err := p.cfg.mode()
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.OpenRetryInterval

	retries := max(p.cfg.OpenRetries, 0)
	attempt := 0

	operation := func() error {
		attempt++

		dev, err := p.open(p.cfg.Port, mode)
		if err != nil {
			if permanent(err) {
				return backoff.Permanent(err)
			}

			p.log.Warn("Serial port not ready", "attempt", attempt, "error", err)

			return err
		}

		if err := dev.SetReadTimeout(p.cfg.ReadTimeout); err != nil {
			_ = dev.Close()

			return backoff.Permanent(fmt.Errorf("set read timeout: %w", err))
		}

		p.dev = dev

		return nil
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(b, uint64(retries))); err != nil {
		return fmt.Errorf("open %s: %w", p.cfg.Port, err)
	}

	p.log.Info("Serial port opened", "baud", p.cfg.BaudRate, "attempts", attempt)

	return nil
}

// permanent reports whether retrying an open cannot help.
func permanent(err error) bool {
	perr, ok := stderrors.AsType[*serial.PortError](err)
	if !ok {
		return false
	}

	switch perr.Code() {
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
		serial.InvalidStopBits, serial.InvalidSerialPort, serial.PermissionDenied:
		return true
	default:
		return false
	}
}

// Write sends p to the device.
func (p *Port) Write(b []byte) (int, error) {
	dev, err := p.device()
	if err != nil {
		return 0, err
	}

	return dev.Write(b)
}

// Read returns available bytes, or (0, nil) after the read timeout.
func (p *Port) Read(b []byte) (int, error) {
	dev, err := p.device()
	if err != nil {
		return 0, err
	}

	return dev.Read(b)
}

// Flush discards unread input.
func (p *Port) Flush() error {
	dev, err := p.device()
	if err != nil {
		return err
	}

	return dev.ResetInputBuffer()
}

// Close closes the device. It's safe to call Close multiple times.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return nil
	}

	err := p.dev.Close()
	p.dev = nil

	if err != nil {
		return fmt.Errorf("close %s: %w", p.cfg.Port, err)
	}

	p.log.Info("Serial port closed")

	return nil
}

func (p *Port) device() (device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dev == nil {
		return nil, rigerrors.ErrTransportNotOpen
	}

	return p.dev, nil
}

// ListPorts returns the serial devices present on this machine.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	return ports, nil
}
