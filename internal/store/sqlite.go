package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/vendora-crm/research-service/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	organization    TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	region          TEXT NOT NULL DEFAULT '',
	industry        TEXT NOT NULL DEFAULT '',
	seller          TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	potential_score REAL,
	website         TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS research_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_customers_country ON customers(country);
CREATE INDEX IF NOT EXISTS idx_customers_region ON customers(region);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetCustomer fetches one customer by id.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, organization, country, region, industry, seller, notes, potential_score, website FROM customers WHERE id = ?`,
		id,
	)
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Organization, &c.Country, &c.Region, &c.Industry, &c.Seller, &c.Notes, &c.PotentialScore, &c.Website)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get customer")
	}
	return &c, nil
}

// ListCustomers returns customers matching the filter, up to limit.
func (s *SQLiteStore) ListCustomers(ctx context.Context, filter CustomerFilter, limit int) ([]model.Customer, error) {
	query := `SELECT id, name, organization, country, region, industry, seller, notes, potential_score, website FROM customers`
	var conds []string
	var args []any

	if filter.Country != "" {
		conds = append(conds, "country = ?")
		args = append(args, filter.Country)
	}
	if filter.Region != "" {
		conds = append(conds, "region = ?")
		args = append(args, filter.Region)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list customers")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Organization, &c.Country, &c.Region, &c.Industry, &c.Seller, &c.Notes, &c.PotentialScore, &c.Website); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate customers")
	}
	return out, nil
}

// InsertCustomer adds a customer row, generating an id when absent. Used by
// migrations and tests; the research pipeline itself never writes.
func (s *SQLiteStore) InsertCustomer(ctx context.Context, c model.Customer) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, organization, country, region, industry, seller, notes, potential_score, website) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Organization, c.Country, c.Region, c.Industry, c.Seller, c.Notes, c.PotentialScore, c.Website,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert customer")
	}
	return c.ID, nil
}

// GetSettings reads the research settings row. Returns (nil, nil) when the
// row has never been saved.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*model.ResearchSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM research_settings WHERE key = ?`, settingsKey)

	var raw string
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get settings")
	}

	var settings model.ResearchSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode settings")
	}
	return &settings, nil
}

// SaveSettings normalizes and upserts the settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, in model.ResearchSettings) (*model.ResearchSettings, error) {
	normalized := normalizeSettings(in)

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: encode settings")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO research_settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		settingsKey, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: save settings")
	}
	return &normalized, nil
}
