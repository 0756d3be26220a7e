package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/allocation"
	"github.com/iliyamo/hotel-reservation/internal/database"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL implementation of allocation.TxStore.  Every query is
// scoped by hotel_id.  A Store returned to a WithTx callback runs on the
// transaction and takes row locks (SELECT ... FOR UPDATE) on the lock
// variants of its reads.
type Store struct {
	db   *sql.DB
	q    Querier
	inTx bool
}

var _ allocation.TxStore = (*Store)(nil)

// NewStore returns a Store on the connection pool.
func NewStore(db *sql.DB) *Store { return &Store{db: db, q: db} }

// WithTx runs fn inside a SERIALIZABLE transaction.  Calling WithTx on a
// Store that is already inside a transaction reuses it.
func (s *Store) WithTx(ctx context.Context, fn func(tx allocation.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return database.WithTx(ctx, s.db, opts, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, q: tx, inTx: true})
	})
}

// forUpdate appends a row lock clause when running in a transaction.
func (s *Store) forUpdate(q string) string {
	if s.inTx {
		return q + " FOR UPDATE"
	}
	return q
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// blockingStatuses is the SQL list of reservation statuses that hold a room.
const blockingStatuses = `('BOOKED', 'CHECKED_IN')`

// blockedRoomStatuses is the SQL list of room statuses that take no guests.
const blockedRoomStatuses = `('MAINTENANCE', 'OUT_OF_SERVICE')`
