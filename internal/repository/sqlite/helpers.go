package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rackwire/internal/domain"
	"rackwire/internal/repository"
)

// nullToInt64Ptr safely converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		return &ni.Int64
	}
	return nil
}

// int64PtrToNull safely converts *int64 to sql.NullInt64
func int64PtrToNull(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// parseTime parses the fixed timestamp format written by now().
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// bomRow holds all columns from a bom query for scanning
type bomRow struct {
	ID             int64
	Label          string
	SparesFraction float64
	TotalQuantity  int
	Data           []byte
	CreatedAt      string
}

// scanArgs returns pointers to all fields for sql.Scan().
// MUST match bomColumns order exactly.
func (r *bomRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Label,
		&r.SparesFraction,
		&r.TotalQuantity,
		&r.Data,
		&r.CreatedAt,
	}
}

// toRecord converts the scanned row to a repository.BOMRecord. The
// payload is only unmarshalled when requested.
func (r *bomRow) toRecord(withPayload bool) (repository.BOMRecord, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return repository.BOMRecord{}, err
	}

	record := repository.BOMRecord{
		ID:             r.ID,
		Label:          r.Label,
		SparesFraction: r.SparesFraction,
		TotalQuantity:  r.TotalQuantity,
		CreatedAt:      created,
	}
	if withPayload {
		var bom domain.BOM
		if err := json.Unmarshal(r.Data, &bom); err != nil {
			return repository.BOMRecord{}, fmt.Errorf("failed to unmarshal bom data: %w", err)
		}
		record.BOM = &bom
	}
	return record, nil
}

// bomColumns is the SELECT column list for bom queries
const bomColumns = `id, label, spares_fraction, total_quantity, data, created_at`

// reportRow holds all columns from a report query for scanning
type reportRow struct {
	ID        int64
	BOMID     sql.NullInt64
	Kind      string
	FailCount int
	WarnCount int
	CreatedAt string
}

// scanArgs returns pointers to all fields for sql.Scan().
// MUST match reportColumns order exactly.
func (r *reportRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.BOMID,
		&r.Kind,
		&r.FailCount,
		&r.WarnCount,
		&r.CreatedAt,
	}
}

// toRecord converts the scanned row to a repository.ReportRecord
func (r *reportRow) toRecord() (repository.ReportRecord, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return repository.ReportRecord{}, err
	}
	return repository.ReportRecord{
		ID:        r.ID,
		BOMID:     nullToInt64Ptr(r.BOMID),
		Kind:      r.Kind,
		FailCount: r.FailCount,
		WarnCount: r.WarnCount,
		CreatedAt: created,
	}, nil
}

// reportColumns is the SELECT column list for report queries
const reportColumns = `id, bom_id, kind, fail_count, warn_count, created_at`
