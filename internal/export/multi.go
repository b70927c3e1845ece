package export

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/recordrig-go/internal/session"
)

// Multi fans a session out to several exporters. All of them run even when
// some fail; the failures are joined.
type Multi []session.Exporter

// Compile-time verification that all exporters implement session.Exporter.
var (
	_ session.Exporter = Multi(nil)
	_ session.Exporter = (*FileExporter)(nil)
	_ session.Exporter = (*SQLiteArchive)(nil)
)

// Export implements session.Exporter.
func (m Multi) Export(ctx context.Context, s *session.Summary) error {
	errs := make([]error, len(m))

	var g errgroup.Group

	for i, exp := range m {
		if exp == nil {
			continue
		}

		g.Go(func() error {
			if err := exp.Export(ctx, s); err != nil {
				errs[i] = fmt.Errorf("exporter %d: %w", i, err)
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
