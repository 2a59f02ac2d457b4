package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/bookingd/internal/persistence"
	_ "modernc.org/sqlite"
)

// ConnectionPool manages SQLite connections with transaction support.
//
// The pool is capped at a single open connection: SQLite serializes writers
// through the file lock anyway, and a single connection keeps in-process
// transactions from tripping over SQLITE_BUSY while still allowing other
// process instances to contend safely on the same file.
type ConnectionPool struct {
	db *sql.DB
}

// Open creates a connection pool for the given DSN.
//
// The DSN is normalized so every transaction starts in immediate mode and
// lock contention waits instead of failing fast. Immediate mode takes the
// write lock at BEGIN, which is what makes the check-then-mutate booking
// operations safe against other process instances on the same file: a
// conflicting writer blocks at BEGIN until the winner commits, then runs its
// overlap check against the committed row and reports the conflict sentinel
// instead of SQLITE_BUSY.
func Open(dsn string) (*ConnectionPool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: empty DSN")
	}
	db, err := sql.Open("sqlite", normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)
	return &ConnectionPool{db: db}, nil
}

// normalizeDSN appends the connection options the repositories rely on when
// the caller's DSN does not set them already.
func normalizeDSN(dsn string) string {
	for _, option := range []string{"_txlock=immediate", "_pragma=busy_timeout(5000)"} {
		key := option[:strings.IndexByte(option, '=')+1]
		if strings.Contains(dsn, key) {
			continue
		}
		separator := "?"
		if strings.ContainsRune(dsn, '?') {
			separator = "&"
		}
		dsn += separator + option
	}
	return dsn
}

// DB exposes the underlying handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close releases the pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc runs within a database transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn inside a transaction, rolling back when fn
// returns an error or panics and committing otherwise.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
