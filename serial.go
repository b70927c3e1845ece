package recordrig

import (
	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/serialport"
)

// DefaultSerialConfig returns 9600 baud 8N1 on the platform's default port.
func DefaultSerialConfig() SerialConfig {
	return serialport.DefaultConfig()
}

// LoadSerialConfig reads the "serial" section of the configuration file at
// path, with RECORD_SERIAL_* environment overrides.
func LoadSerialConfig(path string) (SerialConfig, error) {
	v, err := config.NewViper(path)
	if err != nil {
		return SerialConfig{}, err
	}

	return serialport.LoadConfig(v)
}

// NewSerialPort returns an unopened serial Transport. Only WithLogger is
// used from opts.
func NewSerialPort(cfg SerialConfig, opts ...Option) *serialport.Port {
	o := applyOptions(opts)

	return serialport.New(o.Logger, cfg)
}

// OpenSerial creates and opens a serial Transport, retrying while the
// device enumerates.
func OpenSerial(cfg SerialConfig, opts ...Option) (*serialport.Port, error) {
	port := NewSerialPort(cfg, opts...)
	if err := port.Open(); err != nil {
		return nil, err
	}

	return port, nil
}

// ListSerialPorts returns the serial devices present on this machine.
func ListSerialPorts() ([]string, error) {
	return serialport.ListPorts()
}
