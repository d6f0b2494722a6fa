/*
store.go - Persistence interfaces for parts and the audit log

PURPOSE:
  The interface between the ledger and the database. An implementation
  must make WithTx atomic: either every write inside the function commits,
  or none do. The ledger relies on that for its "part update and log
  append are one unit" contract, and for the indivisible read-then-write
  of a part's stock.

APPEND-ONLY CONTRACT:
  The log side has AppendLog and reads. No update, no delete. Corrections
  are new ADJUSTMENT entries.

IMPLEMENTATIONS:
  - store/memory: mutex + snapshot/rollback, for tests and dev
  - store/sqlite: WAL-mode SQLite with real transactions
*/
package ledger

import "context"

// Store handles persistence of parts and log entries.
//
// GetPart returns (nil, nil) when the part does not exist; callers decide
// whether that is an error.
type Store interface {
	GetPart(ctx context.Context, id string) (*Part, error)
	SavePart(ctx context.Context, p Part) error
	DeletePart(ctx context.Context, id string) error
	ListParts(ctx context.Context) ([]Part, error)

	// AppendLog persists an audit record. Append-only.
	AppendLog(ctx context.Context, e LogEntry) error

	// ListLogs returns all entries, newest first.
	ListLogs(ctx context.Context) ([]LogEntry, error)

	// ListLogsByPart returns entries for one part, newest first.
	ListLogsByPart(ctx context.Context, partID string) ([]LogEntry, error)
}

// TxStore extends Store with atomic multi-write support.
//
// No other mutation of the same data may interleave with fn; the ledger's
// check-and-set of part stock runs entirely inside one WithTx call.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
