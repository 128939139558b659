package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/briefdesk/briefdesk/internal/secure"
)

// Supported storage drivers.
const (
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
)

// KV is the key-value surface the account, session and option stores need.
// Values are opaque strings; use GetObject and PutObject for encoded blobs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store is briefdesk's persistent key-value storage, the server-side
// equivalent of a browser's local storage. It is backed by SQLite by default
// and can use PostgreSQL, MySQL or SQL Server for shared deployments.
type Store struct {
	db     *sqlx.DB
	driver string
}

// NewStore creates a SQLite-backed store in dataDir. Pass empty string for
// in-memory.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "briefdesk.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return Open(DriverSQLite, dsn)
}

// Open connects to the storage database for driver using dsn and applies
// migrations.
func Open(driver, dsn string) (*Store, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite"
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverMySQL:
		sqlDriver = "mysql"
	case DriverSQLServer:
		sqlDriver = "sqlserver"
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sqlx.Connect(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open storage database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate storage database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the storage driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks that the storage database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	q := s.db.Rebind("SELECT item_value FROM storage WHERE item_key = ?")
	if err := s.db.GetContext(ctx, &value, q, key); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	var q string
	switch s.driver {
	case DriverMySQL:
		q = `INSERT INTO storage (item_key, item_value, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE item_value = VALUES(item_value), updated_at = VALUES(updated_at)`
	case DriverSQLServer:
		q = `MERGE storage WITH (HOLDLOCK) AS t
			USING (SELECT ? AS item_key, ? AS item_value, ? AS updated_at) AS src
			ON t.item_key = src.item_key
			WHEN MATCHED THEN UPDATE SET item_value = src.item_value, updated_at = src.updated_at
			WHEN NOT MATCHED THEN INSERT (item_key, item_value, updated_at)
				VALUES (src.item_key, src.item_value, src.updated_at);`
	default:
		q = `INSERT INTO storage (item_key, item_value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (item_key) DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at`
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	q := s.db.Rebind("DELETE FROM storage WHERE item_key = ?")
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, "SELECT item_key FROM storage ORDER BY item_key"); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// ---------------------------------------------------------------------------
// Encoded blobs
// ---------------------------------------------------------------------------

// GetObject loads the blob under key and decodes it into v. It returns
// ErrNotFound when the key is absent and an error wrapping secure.ErrDecode
// when the blob is corrupt.
func GetObject(ctx context.Context, kv KV, key string, v interface{}) error {
	blob, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	return secure.Deobfuscate(blob, v)
}

// PutObject encodes v and stores it under key.
func PutObject(ctx context.Context, kv KV, key string, v interface{}) error {
	blob, err := secure.Obfuscate(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, blob)
}
