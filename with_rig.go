package recordrig

import (
	"context"
	"fmt"

	"github.com/wagiedev/recordrig-go/internal/protocol"
)

// NewDriver creates an unopened Driver over transport. Zero-valued device
// options take the firmware defaults.
func NewDriver(transport Transport, opts ...Option) *Driver {
	return protocol.NewDriver(transport, applyOptions(opts).Options)
}

// WithRig manages driver lifecycle with automatic cleanup.
//
// This helper creates a Driver over transport, opens it, executes the
// callback function, and ensures the transport is closed when done.
// If Close fails, a warning is logged but does not override the callback's
// error.
//
// Example usage:
//
//	err := recordrig.WithRig(ctx, port, func(d *recordrig.Driver) error {
//	    d.Reset(ctx)
//	    fmt.Println(d.FetchResponse(ctx).Text)
//
//	    return nil
//	},
//	    recordrig.WithLogger(log),
//	)
func WithRig(ctx context.Context, transport Transport, fn func(*Driver) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	driver := protocol.NewDriver(transport, options.Options)
	if err := driver.Open(); err != nil {
		return fmt.Errorf("failed to open rig: %w", err)
	}

	defer func() {
		if closeErr := driver.Close(); closeErr != nil {
			log.Warn("failed to close rig", "error", closeErr)
		}
	}()

	return fn(driver)
}
