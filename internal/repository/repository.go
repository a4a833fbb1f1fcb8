package repository

import (
	"context"
	"database/sql"

	uponor "uponor_bridge"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*uponor.User, error)
}

// SnapshotRepo stores the latest normalized snapshot only, a warm-start
// cache rather than history.
type SnapshotRepo interface {
	Save(ctx context.Context, snap uponor.Snapshot) error
	Load(ctx context.Context) (uponor.Snapshot, error)
}

// NamesRepo stores the raw custom-name table keyed by wire key.
type NamesRepo interface {
	SaveAll(ctx context.Context, names map[string]string) error
	LoadAll(ctx context.Context) (map[string]string, error)
}

type Repository struct {
	Snapshots SnapshotRepo
	Names     NamesRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Snapshots: NewSnapshotSQLite(db),
		Names:     NewNamesSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
