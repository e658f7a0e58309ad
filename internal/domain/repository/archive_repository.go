package repository

import (
	"context"
	"io"
)

// ArchiveRepository keeps a raw copy of every uploaded file for audit.
// Archiving is a side channel: ingestion proceeds whether or not the
// archive accepts the copy.
type ArchiveRepository interface {
	// NewObject opens a writer for the raw bytes of one upload and
	// returns it together with the object path that identifies the copy.
	NewObject(ctx context.Context, uploadID, filename string) (io.WriteCloser, string, error)
	// Ready reports whether the archive backend is usable.
	Ready() bool
}
