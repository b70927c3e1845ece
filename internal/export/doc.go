// Package export persists finished sessions.
//
// Three session.Exporter implementations are provided:
//   - FileExporter writes "<base>_metadata.txt" (key:value lines) and
//     "<base>_events.csv" (one row per trial, columns sorted alphabetically)
//   - SQLiteArchive stores metadata and trial events in a local SQLite file
//     keyed by session ID
//   - Multi runs several exporters concurrently and joins their errors
package export
