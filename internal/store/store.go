// Package store persists encoded endpoint keys and serialized responses in a
// sqlite database. It performs no transformation of keys or values.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultBucket is the table used when none is configured.
const DefaultBucket = "json_data"

// FileName is the database file created inside the data directory.
const FileName = "jsonstash.db"

var bucketName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Record is one persisted key/value pair.
type Record struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Error reports a failure of the underlying database.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Store is a string key/value bucket.
type Store struct {
	db     *sql.DB
	bucket string
}

// Open opens the bucket in the database at dbPath, creating both if needed.
// dbPath may be ":memory:".
func Open(dbPath, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if !bucketName.MatchString(bucket) {
		return nil, &Error{Op: "open", Err: fmt.Errorf("invalid bucket name %q", bucket)}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("opening db: %w", err)}
	}
	// one connection so ":memory:" databases are shared across calls
	db.SetMaxOpenConns(1)

	if err := createTable(db, bucket); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: bucket}, nil
}

// OpenDir opens the bucket in dir/FileName, creating dir if needed.
func OpenDir(dir, bucket string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("creating data dir: %w", err)}
	}
	return Open(filepath.Join(dir, FileName), bucket)
}

func createTable(db *sql.DB, bucket string) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, bucket))
	if err != nil {
		return &Error{Op: "open", Err: fmt.Errorf("creating bucket table: %w", err)}
	}
	return nil
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %q (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.bucket),
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &Error{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %q WHERE key = ?`, s.bucket), key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, &Error{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

// Iterate yields every record in key order. Rows that cannot be read are
// yielded as errors and iteration moves on. The sequence is single-use, and
// other Store methods must not be called until it has finished.
func (s *Store) Iterate(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT key, value, updated_at FROM %q ORDER BY key`, s.bucket))
		if err != nil {
			yield(Record{}, &Error{Op: "iterate", Err: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if !yield(rec, err) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, &Error{Op: "iterate", Err: err})
		}
	}
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var key, value, ts sql.NullString
	if err := rows.Scan(&key, &value, &ts); err != nil {
		return Record{}, &Error{Op: "iterate", Err: fmt.Errorf("scanning row: %w", err)}
	}
	if !key.Valid || !value.Valid {
		return Record{}, &Error{Op: "iterate", Key: key.String, Err: errors.New("null key or value")}
	}
	rec.Key = key.String
	rec.Value = value.String
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts.String)
	return rec, nil
}

// Delete removes key. It reports whether a record existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, s.bucket), key)
	if err != nil {
		return false, &Error{Op: "delete", Key: key, Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, &Error{Op: "delete", Key: key, Err: err}
	}
	return n > 0, nil
}

// Flush removes every record in the bucket.
func (s *Store) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, s.bucket)); err != nil {
		return &Error{Op: "flush", Err: err}
	}
	return nil
}

// Count returns the number of records in the bucket.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, s.bucket)).Scan(&n); err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
