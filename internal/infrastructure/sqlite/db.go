// Package sqlite stores rules in a SQLite database.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/phonrule/internal/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// BusyTimeout is the SQLite busy timeout in milliseconds.
const BusyTimeout = 5000

// DB owns the connection to a rules database.
type DB struct {
	conn *sql.DB
}

// NewDB opens the database at path, creating the file and its directory
// when missing, and applies pending migrations. An existing file is copied
// to path+".bak" first.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	existed, err := backup(path)
	if err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)",
		path, BusyTimeout)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug(log.CatStore, "opened rules database", "path", path, "existed", existed)
	return &DB{conn: conn}, nil
}

// Migrate applies every pending migration to conn.
func Migrate(conn *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", newMigrationDriver(conn))
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// backup copies an existing database file next to itself.
func backup(path string) (bool, error) {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return true, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return true, err
	}
	return true, dst.Close()
}

// RuleRepository returns the rule store backed by this database.
func (db *DB) RuleRepository() *RuleRepository {
	return NewRuleRepository(db.conn)
}

// Connection returns the underlying connection.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
