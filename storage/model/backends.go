package model

import (
	"context"
	"time"
)

// CellEdit addresses a single cell write in the auth sheet.
type CellEdit struct {
	// Row is the 1-based physical sheet row.
	Row int
	// Col is the zero-based column index.
	Col int
	// Value is the new raw cell content.
	Value string
}

// TableGateway is the only component that talks to the remote spreadsheet.
// Implementations are stateless beyond connection and auth; all consistency
// handling lives with the caller.
type TableGateway interface {
	// ReadAll returns every row of the auth sheet including the header row.
	ReadAll(ctx context.Context) ([][]string, error)
	// ReadHeader returns just the header row.
	ReadHeader(ctx context.Context) ([]string, error)
	// AppendRow appends one row after the existing data.
	AppendRow(ctx context.Context, cells []string) error
	// BatchUpdateCells applies all edits in a single batch request; on error
	// none of the cells may be assumed updated.
	BatchUpdateCells(ctx context.Context, edits []CellEdit) error
	// BatchDeleteRows structurally deletes the passed 1-based rows. The
	// implementation must delete from the highest row down so earlier
	// deletions never shift later ones within the batch.
	BatchDeleteRows(ctx context.Context, rows []int) error
	// AppendAudit appends an account event to the stats sheet.
	AppendAudit(ctx context.Context, ev AuditEvent) error
}

// SnapshotSlot is a single-slot store for the serialized DirectorySnapshot.
type SnapshotSlot interface {
	// Store replaces the slot content.
	Store(snap *DirectorySnapshot) error
	// Retrieve returns the stored snapshot, or (nil, nil) when the slot is
	// empty.
	Retrieve() (*DirectorySnapshot, error)
	// Remove empties the slot. No error when already empty.
	Remove() error
}

// FlagSlot is a smaller slot holding the schema-validation result together
// with the time it was determined, so it can age out independently of the
// user snapshot.
type FlagSlot interface {
	StoreFlag(value bool, at time.Time) error
	// RetrieveFlag returns the stored value and timestamp; ok is false when
	// the slot is empty.
	RetrieveFlag() (value bool, at time.Time, ok bool, err error)
	RemoveFlag() error
}
