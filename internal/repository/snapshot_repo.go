package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	uponor "uponor_bridge"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

var _ SnapshotRepo = (*SnapshotSQLite)(nil)

// The table holds exactly one row: the latest snapshot replaces the
// previous one on every save.
const (
	snapshotRowID = 1

	upsertSnapshotSQL = `
		INSERT INTO snapshot (id, thermostats, system, last_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thermostats=excluded.thermostats,
			system=excluded.system,
			last_update=excluded.last_update
	`

	selectSnapshotSQL = `
		SELECT thermostats, system, last_update
		FROM snapshot WHERE id=?
	`
)

// Save replaces the stored snapshot with snap. Maps are persisted as JSON
// text columns.
func (r *SnapshotSQLite) Save(ctx context.Context, snap uponor.Snapshot) error {
	thermostats, err := json.Marshal(snap.Thermostats)
	if err != nil {
		return fmt.Errorf("marshal thermostats: %w", err)
	}
	system, err := json.Marshal(snap.System)
	if err != nil {
		return fmt.Errorf("marshal system: %w", err)
	}

	ts := snap.LastUpdate
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err = r.db.ExecContext(ctx, upsertSnapshotSQL,
		snapshotRowID,
		string(thermostats),
		string(system),
		ts,
	)
	return err
}

// Load fetches the stored snapshot. A missing row yields an empty snapshot
// and no error, matching a cold start.
func (r *SnapshotSQLite) Load(ctx context.Context) (uponor.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, selectSnapshotSQL, snapshotRowID)

	var thermostats, system string
	var lastUpdate time.Time
	if err := row.Scan(&thermostats, &system, &lastUpdate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uponor.Snapshot{}, nil
		}
		return uponor.Snapshot{}, err
	}

	snap := uponor.Snapshot{LastUpdate: lastUpdate.UTC()}
	if thermostats != "" {
		if err := json.Unmarshal([]byte(thermostats), &snap.Thermostats); err != nil {
			return uponor.Snapshot{}, fmt.Errorf("unmarshal thermostats: %w", err)
		}
	}
	if system != "" {
		if err := json.Unmarshal([]byte(system), &snap.System); err != nil {
			return uponor.Snapshot{}, fmt.Errorf("unmarshal system: %w", err)
		}
	}
	return snap, nil
}
