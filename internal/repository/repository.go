// Package repository defines persistence for rackwire run artifacts.
//
// Every calculate run can record its materialized BOM, and every check
// run can record its report against the BOM it examined. The ledger
// makes "which BOM did we order from, and what did its checks say"
// answerable after the fact. The actual implementation is in the
// sqlite subpackage.
package repository

import (
	"context"
	"time"

	"rackwire/internal/domain"
)

// BOMRecord is one persisted BOM artifact with ledger metadata. BOM is
// nil on listing calls that return metadata only.
type BOMRecord struct {
	ID             int64
	Label          string
	SparesFraction float64
	TotalQuantity  int
	CreatedAt      time.Time
	BOM            *domain.BOM
}

// ReportRecord is one persisted check result. The full report payload
// lives in the row; the severity counts are indexed for quick scanning.
type ReportRecord struct {
	ID        int64
	BOMID     *int64
	Kind      string
	FailCount int
	WarnCount int
	CreatedAt time.Time
}

// Report kinds stored in the ledger.
const (
	KindValidate      = "validate"
	KindCrossValidate = "crossvalidate"
	KindRoundtrip     = "roundtrip"
)

// Repository is the run-artifact ledger.
type Repository interface {
	SaveBOM(ctx context.Context, label string, bom *domain.BOM) (int64, error)
	LatestBOM(ctx context.Context) (*BOMRecord, error)
	ListBOMs(ctx context.Context) ([]BOMRecord, error)

	SaveReport(ctx context.Context, kind string, bomID *int64, failCount, warnCount int, report any) (int64, error)
	ListReports(ctx context.Context) ([]ReportRecord, error)

	// Close releases resources
	Close() error
}
