package serialport

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.bug.st/serial"

	"github.com/wagiedev/recordrig-go/internal/errors"
)

// Defaults match the RECORD firmware's UART setup.
const (
	DefaultBaudRate          = 9600
	DefaultDataBits          = 8
	DefaultParity            = "N"
	DefaultStopBits          = 1
	DefaultReadTimeout       = 100 * time.Millisecond
	DefaultOpenRetries       = 5
	DefaultOpenRetryInterval = 250 * time.Millisecond
)

// DefaultPortName returns the usual device name of the launchpad's
// application UART on this OS.
func DefaultPortName() string {
	if runtime.GOOS == "windows" {
		return "COM4"
	}

	return "/dev/ttyACM0"
}

// Config describes the serial line.
type Config struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	// Parity is "N", "E" or "O".
	Parity   string `mapstructure:"parity"`
	StopBits int    `mapstructure:"stop_bits"`

	// ReadTimeout bounds one Read call. Keep it well below the
	// acknowledgment timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// OpenRetries is how many times a failed open is retried.
	OpenRetries       int           `mapstructure:"open_retries"`
	OpenRetryInterval time.Duration `mapstructure:"open_retry_interval"`
}

// DefaultConfig returns the firmware's line settings on the default port.
func DefaultConfig() Config {
	return Config{
		Port:              DefaultPortName(),
		BaudRate:          DefaultBaudRate,
		DataBits:          DefaultDataBits,
		Parity:            DefaultParity,
		StopBits:          DefaultStopBits,
		ReadTimeout:       DefaultReadTimeout,
		OpenRetries:       DefaultOpenRetries,
		OpenRetryInterval: DefaultOpenRetryInterval,
	}
}

// LoadConfig reads the "serial" section of v over the defaults.
func LoadConfig(v *viper.Viper) (Config, error) {
	def := DefaultConfig()
	v.SetDefault("serial.port", def.Port)
	v.SetDefault("serial.baud_rate", def.BaudRate)
	v.SetDefault("serial.data_bits", def.DataBits)
	v.SetDefault("serial.parity", def.Parity)
	v.SetDefault("serial.stop_bits", def.StopBits)
	v.SetDefault("serial.read_timeout", def.ReadTimeout)
	v.SetDefault("serial.open_retries", def.OpenRetries)
	v.SetDefault("serial.open_retry_interval", def.OpenRetryInterval)

	var c Config
	if err := v.UnmarshalKey("serial", &c); err != nil {
		return Config{}, fmt.Errorf("decode serial config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks the line settings.
func (c Config) Validate() error {
	_, err := c.mode()

	return err
}

func (c Config) mode() (*serial.Mode, error) {
	if c.Port == "" {
		return nil, &errors.ValidationError{Field: "serial port", Value: `""`, Constraint: "a device name is required"}
	}

	if c.BaudRate <= 0 {
		return nil, &errors.ValidationError{Field: "baud rate", Value: c.BaudRate, Constraint: "must be positive"}
	}

	if c.DataBits < 5 || c.DataBits > 8 {
		return nil, &errors.ValidationError{Field: "data bits", Value: c.DataBits, Constraint: "must be 5 through 8"}
	}

	if c.ReadTimeout <= 0 {
		return nil, &errors.ValidationError{Field: "read timeout", Value: c.ReadTimeout, Constraint: "must be positive"}
	}

	mode := &serial.Mode{BaudRate: c.BaudRate, DataBits: c.DataBits}

	switch strings.ToUpper(c.Parity) {
	case "N", "":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		return nil, &errors.ValidationError{Field: "parity", Value: c.Parity, Constraint: `must be "N", "E" or "O"`}
	}

	switch c.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, &errors.ValidationError{Field: "stop bits", Value: c.StopBits, Constraint: "must be 1 or 2"}
	}

	return mode, nil
}
