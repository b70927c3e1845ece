package recordrig

import "github.com/wagiedev/recordrig-go/internal/config"

// Transport defines the byte channel to the rig's microcontroller.
// Implement this to provide custom transports for testing, simulation,
// or alternative links (e.g., a network serial bridge).
//
// The default implementation is the serial Port returned by NewSerialPort.
// Read must return (0, nil) when no byte arrives within a short poll
// interval so acknowledgment timeouts can be honored.
type Transport = config.Transport

// Clock supplies timestamps and sleeps to the driver and controller.
type Clock = config.Clock
