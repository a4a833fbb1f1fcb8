package repository

import (
	"context"
	"database/sql"
	"time"
)

type NamesSQLite struct {
	db *sql.DB
}

func NewNamesSQLite(db *sql.DB) *NamesSQLite { return &NamesSQLite{db: db} }

var _ NamesRepo = (*NamesSQLite)(nil)

const (
	upsertNameSQL = `
		INSERT INTO custom_names (key, name, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name=excluded.name,
			updated_at=excluded.updated_at
	`

	selectNamesSQL = `SELECT key, name FROM custom_names`
)

// SaveAll upserts every custom-name entry in one transaction.
func (r *NamesSQLite) SaveAll(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for key, name := range names {
		if _, err := tx.ExecContext(ctx, upsertNameSQL, key, name, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadAll returns the full custom-name table.
func (r *NamesSQLite) LoadAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, selectNamesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, 16)
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, err
		}
		out[key] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
