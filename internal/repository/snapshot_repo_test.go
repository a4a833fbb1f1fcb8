package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	uponor "uponor_bridge"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockSnapshotRepo(t *testing.T) (*SnapshotSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewSnapshotSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func testSnapshot(ts time.Time) uponor.Snapshot {
	return uponor.Snapshot{
		Thermostats: map[string]uponor.ThermostatRecord{
			"C1_T1": {
				ID:         "C1_T1",
				Controller: "C1",
				Thermostat: "T1",
				Name:       "Living Room",
				Data:       map[string]any{"humidity": 45},
			},
		},
		System:     map[string]any{"heat_cool_mode": true},
		LastUpdate: ts,
	}
}

func TestSnapshotSQLite_Save(t *testing.T) {
	repo, mock, cleanup := newMockSnapshotRepo(t)
	defer cleanup()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshotSQL)).
		WithArgs(snapshotRowID, sqlmock.AnyArg(), sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), testSnapshot(ts)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
}

func TestSnapshotSQLite_Save_ExecError(t *testing.T) {
	repo, mock, cleanup := newMockSnapshotRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshotSQL)).
		WillReturnError(errors.New("disk full"))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Save(context.Background(), testSnapshot(ts)); err == nil {
		t.Fatalf("expected exec error, got nil")
	}
}

func TestSnapshotSQLite_Load_RoundTrip(t *testing.T) {
	repo, mock, cleanup := newMockSnapshotRepo(t)
	defer cleanup()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	thermostats := `{"C1_T1":{"id":"C1_T1","controller":"C1","thermostat":"T1","name":"Living Room","data":{"humidity":45}}}`
	system := `{"heat_cool_mode":true}`

	rows := sqlmock.NewRows([]string{"thermostats", "system", "last_update"}).
		AddRow(thermostats, system, ts)
	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotSQL)).
		WithArgs(snapshotRowID).
		WillReturnRows(rows)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !snap.LastUpdate.Equal(ts) {
		t.Fatalf("LastUpdate = %v, want %v", snap.LastUpdate, ts)
	}
	rec, ok := snap.Thermostats["C1_T1"]
	if !ok || rec.Name != "Living Room" || rec.Controller != "C1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	// JSON numbers come back as float64
	if rec.Data["humidity"] != float64(45) {
		t.Fatalf("humidity = %v (%T)", rec.Data["humidity"], rec.Data["humidity"])
	}
	if snap.System["heat_cool_mode"] != true {
		t.Fatalf("system = %v", snap.System)
	}
}

func TestSnapshotSQLite_Load_NoRowIsColdStart(t *testing.T) {
	repo, mock, cleanup := newMockSnapshotRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotSQL)).
		WithArgs(snapshotRowID).
		WillReturnError(sql.ErrNoRows)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error on missing row, got %v", err)
	}
	if len(snap.Thermostats) != 0 || len(snap.System) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestSnapshotSQLite_Load_CorruptJSON(t *testing.T) {
	repo, mock, cleanup := newMockSnapshotRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"thermostats", "system", "last_update"}).
		AddRow("{not json", "{}", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotSQL)).
		WithArgs(snapshotRowID).
		WillReturnRows(rows)

	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
