package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotInitialized is returned by a Store that has no database behind it.
var ErrNotInitialized = errors.New("lead store not initialized")

var leadsDDL = map[string]string{
	"mysql": `
CREATE TABLE IF NOT EXISTS leads (
  id CHAR(36) PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  rating VARCHAR(64) NULL,
  address TEXT NULL,
  phone_number VARCHAR(64) NULL,
  website_link TEXT NULL,
  created_at DATETIME(6) NOT NULL,
  updated_at DATETIME(6) NOT NULL,
  KEY idx_leads_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	"sqlite3": `
CREATE TABLE IF NOT EXISTS leads (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  rating TEXT NULL,
  address TEXT NULL,
  phone_number TEXT NULL,
  website_link TEXT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);`,
	"pgx": `
CREATE TABLE IF NOT EXISTS leads (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  rating TEXT NULL,
  address TEXT NULL,
  phone_number TEXT NULL,
  website_link TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);`,
}

// Store persists leads in a SQL database. A nil *Store is valid and
// answers every call with ErrNotInitialized.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database, verifies the connection and creates the
// leads table when missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}
	store, err := New(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create leads table: %w", err)
	}
	return store, nil
}

// New wraps an existing handle. driver selects the SQL dialect.
func New(db *sql.DB, driver string) (*Store, error) {
	if _, ok := leadsDDL[driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, leadsDDL[s.driver])
	if err != nil || s.driver != "sqlite3" {
		return err
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at)`)
	return err
}

// Insert stores the batch in one transaction.
func (s *Store) Insert(ctx context.Context, leads []Lead) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, s.rebind(`
INSERT INTO leads (id, name, rating, address, phone_number, website_link, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer prepared.Close()

	for _, l := range leads {
		if _, err := prepared.ExecContext(ctx,
			l.ID,
			l.Name,
			nullString(l.Rating),
			nullString(l.Address),
			nullString(l.PhoneNumber),
			nullString(l.WebsiteLink),
			l.CreatedAt.UTC(),
			l.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert lead %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

// List returns every lead, newest first.
func (s *Store) List(ctx context.Context) ([]Lead, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, rating, address, phone_number, website_link, created_at, updated_at
FROM leads
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []Lead{}
	for rows.Next() {
		var l Lead
		var rating, address, phone, website sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &rating, &address, &phone, &website, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Rating = stringPtr(rating)
		l.Address = stringPtr(address)
		l.PhoneNumber = stringPtr(phone)
		l.WebsiteLink = stringPtr(website)
		l.CreatedAt = l.CreatedAt.UTC()
		l.UpdatedAt = l.UpdatedAt.UTC()
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *Store) Close() error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
