package engine

import (
	"testing"

	"rackwire/internal/domain"
)

// referenceBOM materializes the reference scenario's BOM via the
// calculation path, so cross-validation tests exercise the real
// producer, not hand-typed fixtures.
func referenceBOM(t *testing.T) *domain.BOM {
	t.Helper()
	bom, _, err := Calculate(twoRackManifests(), twoRackPolicy(), nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return bom
}

func mutateItem(t *testing.T, bom *domain.BOM, key domain.BucketKey, fn func(*domain.BOMItem)) {
	t.Helper()
	for i := range bom.Items {
		it := &bom.Items[i]
		if it.Class == key.Class && it.CableType == key.CableType && it.LengthBinM == key.LengthBinM {
			fn(it)
			return
		}
	}
	t.Fatalf("no BOM item for %+v", key)
}

var leafNodeBin3 = domain.BucketKey{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3}

func TestCrossValidateClean(t *testing.T) {
	report := CrossValidate(referenceBOM(t), twoRackManifests(), twoRackPolicy())

	if len(report.Findings) != 0 {
		t.Fatalf("expected zero findings for a freshly calculated BOM, got %v", report.Findings)
	}
	if report.HasFail() {
		t.Error("clean reconciliation must not fail")
	}
	if s := report.Summary; s.Missing+s.Phantom+s.MismatchedMedia+s.MismatchedBin+s.CountMismatch != 0 {
		t.Errorf("summary should be all zero, got %+v", s)
	}
	if len(report.MappingStats.Intent) != 3 || len(report.MappingStats.BOM) != 3 {
		t.Errorf("mapping stats = %d intent / %d bom buckets, want 3/3",
			len(report.MappingStats.Intent), len(report.MappingStats.BOM))
	}
}

func TestCrossValidateMissingLink(t *testing.T) {
	bom := referenceBOM(t)
	kept := bom.Items[:0]
	for _, it := range bom.Items {
		if it.Class == domain.ClassLeafNode {
			continue
		}
		kept = append(kept, it)
	}
	bom.Items = kept

	report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
	if report.Summary.Missing != 1 {
		t.Fatalf("missing = %d, want 1; findings %v", report.Summary.Missing, report.Findings)
	}
	if !report.HasFail() {
		t.Error("missing link must fail")
	}
}

func TestCrossValidatePhantomItem(t *testing.T) {
	bom := referenceBOM(t)
	bom.Items = append(bom.Items, domain.BOMItem{
		Class: domain.ClassMgmt, CableType: domain.CableRJ45, LengthBinM: 3, Quantity: 3,
	})
	bom.Sort()

	report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
	if report.Summary.Phantom != 1 {
		t.Fatalf("phantom = %d, want 1; findings %v", report.Summary.Phantom, report.Findings)
	}
	for _, f := range report.Findings {
		if f.Code == domain.CodePhantomItem && f.Severity != domain.SeverityWarn {
			t.Errorf("phantom severity = %s, want WARN", f.Severity)
		}
	}
	if report.HasFail() {
		t.Error("a phantom item alone must not fail")
	}
}

func TestCrossValidateCountMismatch(t *testing.T) {
	t.Run("exact normalization fails", func(t *testing.T) {
		bom := referenceBOM(t)
		// 11 = ceil(10 × 1.1): normalizes exactly to core 10, intent wants 8.
		mutateItem(t, bom, leafNodeBin3, func(it *domain.BOMItem) { it.Quantity = 11 })

		report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
		if report.Summary.CountMismatch != 1 {
			t.Fatalf("count_mismatch = %d, want 1; findings %v", report.Summary.CountMismatch, report.Findings)
		}
		for _, f := range report.Findings {
			if f.Code == domain.CodeCountMismatch && f.Severity != domain.SeverityFail {
				t.Errorf("severity = %s, want FAIL", f.Severity)
			}
		}
		if report.Summary.Missing != 0 || report.Summary.Phantom != 0 {
			t.Error("count mismatch must not double-report as missing or phantom")
		}
	})

	t.Run("ambiguous normalization degrades to warn", func(t *testing.T) {
		bom := referenceBOM(t)
		// 12 has no core with ceil(core × 1.1) = 12, so the bucket count is
		// only an estimate and the mismatch cannot be asserted as FAIL.
		mutateItem(t, bom, leafNodeBin3, func(it *domain.BOMItem) { it.Quantity = 12 })

		report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
		found := findingsByCode(report.Findings, domain.CodeCountMismatch)
		if len(found) != 1 || found[0].Severity != domain.SeverityWarn {
			t.Fatalf("expected one COUNT_MISMATCH WARN, got %v", found)
		}
	})
}

func TestCrossValidateBinMismatch(t *testing.T) {
	t.Run("within slop warns", func(t *testing.T) {
		bom := referenceBOM(t)
		// Same count moved to the 5m bin: covers the 3m intent, diff 2 ≤ slop 2.
		mutateItem(t, bom, leafNodeBin3, func(it *domain.BOMItem) { it.LengthBinM = 5 })

		report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
		found := findingsByCode(report.Findings, domain.CodeMismatchedBin)
		if len(found) != 1 || found[0].Severity != domain.SeverityWarn {
			t.Fatalf("expected one MISMATCHED_BIN WARN, got %v", report.Findings)
		}
		if report.Summary.MismatchedBin != 1 || report.Summary.Missing != 0 || report.Summary.Phantom != 0 {
			t.Errorf("summary = %+v", report.Summary)
		}
	})

	t.Run("beyond slop fails", func(t *testing.T) {
		bom := referenceBOM(t)
		mutateItem(t, bom, leafNodeBin3, func(it *domain.BOMItem) { it.LengthBinM = 7 })

		report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
		found := findingsByCode(report.Findings, domain.CodeMismatchedBin)
		if len(found) != 1 || found[0].Severity != domain.SeverityFail {
			t.Fatalf("expected one MISMATCHED_BIN FAIL, got %v", report.Findings)
		}
	})

	t.Run("crossing dac boundary is a media mismatch", func(t *testing.T) {
		bom := referenceBOM(t)
		// dac_max is 7m in the reference policy; 10m implies optical while
		// the 3m intent is copper.
		mutateItem(t, bom, leafNodeBin3, func(it *domain.BOMItem) { it.LengthBinM = 10 })

		report := CrossValidate(bom, twoRackManifests(), twoRackPolicy())
		found := findingsByCode(report.Findings, domain.CodeMismatchedMedia)
		if len(found) != 1 || found[0].Severity != domain.SeverityFail {
			t.Fatalf("expected one MISMATCHED_MEDIA FAIL, got %v", report.Findings)
		}
		if report.Summary.MismatchedMedia != 1 {
			t.Errorf("summary = %+v", report.Summary)
		}
	})
}
