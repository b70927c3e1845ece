package recordrig

import (
	"log/slog"

	"github.com/wagiedev/recordrig-go/internal/export"
)

// NewFileExporter writes the metadata and event-log files of a session to
// base plus "_metadata.txt" and "_events.csv". An empty base derives one
// with SessionBaseName.
func NewFileExporter(log *slog.Logger, base string) *FileExporter {
	return export.NewFileExporter(log, base)
}

// OpenArchive opens or creates the SQLite session archive at path.
func OpenArchive(log *slog.Logger, path string) (*SQLiteArchive, error) {
	return export.OpenSQLiteArchive(log, path)
}

// BuildMetadata returns the metadata dictionary of a finished session.
func BuildMetadata(s *Summary) Metadata {
	return export.BuildMetadata(s)
}
