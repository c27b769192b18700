package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opmodel/combogen/internal/combo"
)

// dialect captures the differences between the SQL drivers.
type dialect struct {
	name string

	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: "postgres", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS rendered_combos (
	fingerprint TEXT PRIMARY KEY,
	rarity DOUBLE PRECISION NOT NULL
)`

// SQLStore writes every Put straight to a rendered_combos table, so an
// interrupted pass keeps the entries of every completed render.
type SQLStore struct {
	*index

	db      *sql.DB
	dialect dialect
	upsert  string
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s cache table: %w", d.name, err)
	}

	entries, err := loadEntries(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load %s cache: %w", d.name, err)
	}

	return &SQLStore{
		index:   newIndex(entries),
		db:      db,
		dialect: d,
		upsert: fmt.Sprintf(
			`INSERT INTO rendered_combos (fingerprint, rarity) VALUES (%s, %s)
ON CONFLICT (fingerprint) DO UPDATE SET rarity = excluded.rarity`,
			d.placeholder(1), d.placeholder(2)),
	}, nil
}

func loadEntries(ctx context.Context, db *sql.DB) (map[combo.Fingerprint]float64, error) {
	rows, err := db.QueryContext(ctx, `SELECT fingerprint, rarity FROM rendered_combos`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := make(map[combo.Fingerprint]float64)
	for rows.Next() {
		var fp string
		var rarity float64
		if err := rows.Scan(&fp, &rarity); err != nil {
			return nil, err
		}
		entries[combo.Fingerprint(fp)] = rarity
	}
	return entries, rows.Err()
}

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, fp combo.Fingerprint, rarity float64) error {
	if err := validateFingerprint(fp); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, string(fp), rarity); err != nil {
		return fmt.Errorf("%s cache put: %w", s.dialect.name, err)
	}
	s.set(fp, rarity)
	return nil
}

// Flush implements Store. Puts are already durable.
func (s *SQLStore) Flush(context.Context) error { return nil }

// Close closes the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
