package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wagiedev/recordrig-go/internal/config"
	"github.com/wagiedev/recordrig-go/internal/session"
)

// File name suffixes appended to a session base name.
const (
	TrialListSuffix = "_trial_list.csv"
	MetadataSuffix  = "_metadata.txt"
	EventsSuffix    = "_events.csv"
)

// baseStampLayout timestamps session file names.
const baseStampLayout = "Mon-Jan-02-2006_15-04-05"

// BaseName returns "<root>/<subject>_<task>_<stamp>" for a session created
// at t, with the stamp in the session timezone.
func BaseName(root string, cfg config.Session, t time.Time) string {
	if loc, err := cfg.Location(); err == nil {
		t = t.In(loc)
	}

	name := fmt.Sprintf("%s_%s_%s", cfg.Subject.ID, cfg.TaskType, t.Format(baseStampLayout))

	return filepath.Join(root, name)
}

// FileExporter writes the metadata text file and the event-log CSV.
type FileExporter struct {
	log  *slog.Logger
	base string
}

// NewFileExporter creates an exporter writing to base plus the file
// suffixes. An empty base derives one from the session's output root,
// subject, task and start time.
func NewFileExporter(log *slog.Logger, base string) *FileExporter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &FileExporter{
		log:  log.With("component", "export"),
		base: base,
	}
}

// Export implements session.Exporter.
func (e *FileExporter) Export(_ context.Context, s *session.Summary) error {
	base := e.base
	if base == "" {
		base = BaseName(s.Config.OutputRoot, s.Config, s.Start)
	}

	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFile(base+MetadataSuffix, func(w io.Writer) error {
		_, err := BuildMetadata(s).WriteTo(w)

		return err
	}); err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}

	e.log.Info("Exported session metadata", "path", base+MetadataSuffix)

	if err := writeFile(base+EventsSuffix, func(w io.Writer) error {
		return WriteEvents(w, s)
	}); err != nil {
		return fmt.Errorf("export events: %w", err)
	}

	e.log.Info("Exported session events", "path", base+EventsSuffix, "trials", len(s.Trials))

	return nil
}

// WriteEvents writes the event log: a header of session.ColumnNames and one
// row per completed trial.
func WriteEvents(w io.Writer, s *session.Summary) error {
	cw := csv.NewWriter(w)
	names := session.ColumnNames()
	loc := s.Location()

	if err := cw.Write(names); err != nil {
		return err
	}

	row := make([]string, len(names))

	for i := range s.Trials {
		cols := s.Trials[i].Columns(loc)
		for j, name := range names {
			row[j] = cols[name]
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fill(f); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}
