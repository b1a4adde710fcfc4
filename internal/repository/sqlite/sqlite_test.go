package sqlite

import (
	"context"
	"testing"

	"rackwire/internal/domain"
	"rackwire/internal/repository"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func testBOM(quantity int) *domain.BOM {
	return &domain.BOM{
		Meta: domain.BOMMeta{
			GeneratedBy:    "rackwire calculate",
			SparesFraction: 0.1,
			Bins:           map[domain.CableType][]int{domain.CableSFP28: {1, 2, 3, 5, 7, 10}},
		},
		Items: []domain.BOMItem{
			{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3, Quantity: quantity},
		},
	}
}

func TestLatestBOMEmpty(t *testing.T) {
	repo := newTestRepo(t)
	record, err := repo.LatestBOM(context.Background())
	if err != nil {
		t.Fatalf("LatestBOM: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for empty ledger, got %+v", record)
	}
}

func TestSaveAndLatestBOM(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SaveBOM(ctx, "run-1", testBOM(9))
	if err != nil {
		t.Fatalf("SaveBOM: %v", err)
	}
	second, err := repo.SaveBOM(ctx, "run-2", testBOM(18))
	if err != nil {
		t.Fatalf("SaveBOM: %v", err)
	}
	if second <= first {
		t.Errorf("ids not monotonic: %d then %d", first, second)
	}

	latest, err := repo.LatestBOM(ctx)
	if err != nil {
		t.Fatalf("LatestBOM: %v", err)
	}
	if latest == nil || latest.ID != second || latest.Label != "run-2" {
		t.Fatalf("latest = %+v, want id %d label run-2", latest, second)
	}
	if latest.BOM == nil || latest.BOM.TotalQuantity() != 18 {
		t.Errorf("latest payload = %+v, want total quantity 18", latest.BOM)
	}
	if latest.SparesFraction != 0.1 {
		t.Errorf("spares_fraction = %v, want 0.1", latest.SparesFraction)
	}
	if latest.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestListBOMs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, label := range []string{"run-1", "run-2", "run-3"} {
		if _, err := repo.SaveBOM(ctx, label, testBOM(9+i)); err != nil {
			t.Fatalf("SaveBOM: %v", err)
		}
	}

	records, err := repo.ListBOMs(ctx)
	if err != nil {
		t.Fatalf("ListBOMs: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].Label != "run-3" || records[2].Label != "run-1" {
		t.Errorf("records not newest-first: %+v", records)
	}
	for _, rec := range records {
		if rec.BOM != nil {
			t.Error("listing must omit payloads")
		}
	}
}

func TestSaveAndListReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bomID, err := repo.SaveBOM(ctx, "run-1", testBOM(9))
	if err != nil {
		t.Fatalf("SaveBOM: %v", err)
	}

	report := domain.NewReport([]domain.Finding{
		{Severity: domain.SeverityWarn, Code: "OVERSUB_RATIO", Message: "rack rack-1"},
	}, 10)
	if _, err := repo.SaveReport(ctx, repository.KindValidate, nil, report.Summary.Fail, report.Summary.Warn, report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if _, err := repo.SaveReport(ctx, repository.KindCrossValidate, &bomID, 2, 0, report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	records, err := repo.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	cross := records[0]
	if cross.Kind != repository.KindCrossValidate || cross.BOMID == nil || *cross.BOMID != bomID {
		t.Errorf("cross record = %+v, want kind crossvalidate bom %d", cross, bomID)
	}
	if cross.FailCount != 2 {
		t.Errorf("fail_count = %d, want 2", cross.FailCount)
	}

	validate := records[1]
	if validate.Kind != repository.KindValidate || validate.BOMID != nil {
		t.Errorf("validate record = %+v, want nil bom id", validate)
	}
	if validate.WarnCount != 1 {
		t.Errorf("warn_count = %d, want 1", validate.WarnCount)
	}
}
