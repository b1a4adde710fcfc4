// Package sqlite implements the run-artifact ledger on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rackwire/internal/domain"
	"rackwire/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS boms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		spares_fraction REAL NOT NULL,
		total_quantity INTEGER NOT NULL,
		data JSON NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bom_id INTEGER,
		kind TEXT NOT NULL,
		fail_count INTEGER NOT NULL,
		warn_count INTEGER NOT NULL,
		data JSON NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (bom_id) REFERENCES boms(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_reports_bom ON reports(bom_id);
	CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveBOM persists a BOM artifact and returns its ledger id.
func (r *Repository) SaveBOM(ctx context.Context, label string, bom *domain.BOM) (int64, error) {
	bom.Sort()
	data, err := json.Marshal(bom)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal bom: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO boms (label, spares_fraction, total_quantity, data, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, label, bom.Meta.SparesFraction, bom.TotalQuantity(), data, now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert bom: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read bom id: %w", err)
	}
	return id, nil
}

// LatestBOM returns the most recently saved BOM with its payload, or
// nil when the ledger is empty.
func (r *Repository) LatestBOM(ctx context.Context) (*repository.BOMRecord, error) {
	var row bomRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+bomColumns+` FROM boms ORDER BY id DESC LIMIT 1
	`).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest bom: %w", err)
	}

	record, err := row.toRecord(true)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBOMs returns ledger metadata for every saved BOM, newest first.
// Payloads are omitted.
func (r *Repository) ListBOMs(ctx context.Context) ([]repository.BOMRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bomColumns+` FROM boms ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query boms: %w", err)
	}
	defer rows.Close()

	var records []repository.BOMRecord
	for rows.Next() {
		var row bomRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan bom: %w", err)
		}
		record, err := row.toRecord(false)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating boms: %w", err)
	}
	return records, nil
}

// SaveReport persists one check result. bomID is nil for checks that
// ran without a materialized BOM, such as validate.
func (r *Repository) SaveReport(ctx context.Context, kind string, bomID *int64, failCount, warnCount int, report any) (int64, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (bom_id, kind, fail_count, warn_count, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, int64PtrToNull(bomID), kind, failCount, warnCount, data, now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	return id, nil
}

// ListReports returns metadata for every saved report, newest first.
func (r *Repository) ListReports(ctx context.Context) ([]repository.ReportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM reports ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var records []repository.ReportRecord
	for rows.Next() {
		var row reportRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// now renders timestamps in a fixed format so rows scan identically
// across drivers.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
