package engine

import (
	"fmt"
	"sort"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// classPair identifies one (class, cable_type) reconciliation group.
type classPair struct {
	Class     domain.LinkClass
	CableType domain.CableType
}

// CrossValidate reconciles a materialized BOM against freshly-derived
// intent. BOM quantities are normalized back to core counts using the
// artifact's own spares metadata before comparison, so a correct BOM with
// spares applied reconciles cleanly.
func CrossValidate(bom *domain.BOM, m *domain.Manifests, pol *config.Policy) *domain.CrossReport {
	report := &domain.CrossReport{}
	intent := BuildIntent(m, pol)

	intentBuckets := intent.Buckets()
	bomBuckets := bom.Buckets()

	// Normalize BOM quantities to pre-spares core counts. Buckets whose
	// quantity has no exact preimage under the ceiling inflation are
	// remembered so their count comparisons degrade to WARN.
	sf := bom.Meta.SparesFraction
	normalized := make(map[domain.BucketKey]int, len(bomBuckets))
	ambiguous := make(map[domain.BucketKey]bool)
	for key, qty := range bomBuckets {
		core, exact := CoreFromQuantity(qty, sf)
		normalized[key] = core
		if !exact {
			ambiguous[key] = true
		}
	}

	report.MappingStats = domain.MappingStats{
		Intent: bucketCounts(intentBuckets),
		BOM:    bucketCounts(bomBuckets),
	}

	// Group both sides by (class, cable_type); reconcile bin by bin
	// inside each group.
	groups := make(map[classPair]bool)
	for key := range intentBuckets {
		groups[classPair{key.Class, key.CableType}] = true
	}
	for key := range normalized {
		groups[classPair{key.Class, key.CableType}] = true
	}
	ordered := make([]classPair, 0, len(groups))
	for g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Class != b.Class {
			return domain.ClassRank(a.Class) < domain.ClassRank(b.Class)
		}
		return a.CableType < b.CableType
	})

	for _, g := range ordered {
		reconcileGroup(report, g, intentBuckets, normalized, ambiguous, pol)
	}

	for _, f := range report.Findings {
		switch f.Code {
		case domain.CodeMissingLink:
			report.Summary.Missing++
		case domain.CodePhantomItem:
			report.Summary.Phantom++
		case domain.CodeMismatchedMedia:
			report.Summary.MismatchedMedia++
		case domain.CodeMismatchedBin:
			report.Summary.MismatchedBin++
		case domain.CodeCountMismatch:
			report.Summary.CountMismatch++
		}
	}
	return report
}

// reconcileGroup compares intent vs normalized BOM counts for one
// (class, cable_type) group. Exact bin matches are consumed first; then
// equal-count buckets in nearby bins become bin or media mismatches;
// whatever remains is missing or phantom.
func reconcileGroup(
	report *domain.CrossReport,
	g classPair,
	intentBuckets, bomBuckets map[domain.BucketKey]int,
	ambiguous map[domain.BucketKey]bool,
	pol *config.Policy,
) {
	intentBins := groupBins(intentBuckets, g)
	bomBins := groupBins(bomBuckets, g)

	remIntent := make(map[int]int)
	for _, bin := range intentBins {
		remIntent[bin] = intentBuckets[domain.BucketKey{Class: g.Class, CableType: g.CableType, LengthBinM: bin}]
	}
	remBOM := make(map[int]int)
	for _, bin := range bomBins {
		remBOM[bin] = bomBuckets[domain.BucketKey{Class: g.Class, CableType: g.CableType, LengthBinM: bin}]
	}

	// Exact bin matches. Equal keys with differing counts are a single
	// COUNT_MISMATCH, consumed entirely so they do not double-report as
	// missing or phantom.
	for _, bin := range bomBins {
		intentCount, ok := remIntent[bin]
		if !ok {
			continue
		}
		bomCount := remBOM[bin]
		if bomCount == intentCount {
			delete(remIntent, bin)
			delete(remBOM, bin)
			continue
		}
		severity := domain.SeverityFail
		key := domain.BucketKey{Class: g.Class, CableType: g.CableType, LengthBinM: bin}
		if ambiguous[key] {
			severity = domain.SeverityWarn
		}
		report.Findings = append(report.Findings, domain.Finding{
			Severity: severity,
			Code:     domain.CodeCountMismatch,
			Message: fmt.Sprintf("%s %s @ %dm: intent requires %d, BOM provides %d (normalized)",
				g.Class, g.CableType, bin, intentCount, bomCount),
			Context: map[string]any{
				"class":        g.Class,
				"cable_type":   g.CableType,
				"length_bin_m": bin,
				"required":     intentCount,
				"provided":     bomCount,
			},
		})
		delete(remIntent, bin)
		delete(remBOM, bin)
	}

	// Bin mismatches: a BOM bucket whose count equals a remaining intent
	// bucket in a different bin. Crossing the DAC boundary is a media
	// mismatch; staying on the same side is a bin mismatch, tolerated
	// within the slop when the BOM bin covers the intent distance.
	binSlop := pol.Heuristics.BinSlopM
	dacMax, _ := pol.DACMaxM(g.CableType)
	for _, bomBin := range sortedKeys(remBOM) {
		intentRemaining := sortedKeys(remIntent)
		if len(intentRemaining) == 0 {
			break
		}
		closest := intentRemaining[0]
		for _, b := range intentRemaining[1:] {
			if abs(b-bomBin) < abs(closest-bomBin) {
				closest = b
			}
		}
		if remBOM[bomBin] != remIntent[closest] {
			continue
		}

		bomMedia := mediaForBin(bomBin, dacMax)
		intentMedia := mediaForBin(closest, dacMax)
		ctx := map[string]any{
			"class":        g.Class,
			"cable_type":   g.CableType,
			"bom_bin_m":    bomBin,
			"intent_bin_m": closest,
		}
		switch {
		case bomMedia != intentMedia:
			ctx["bom_media"] = bomMedia
			ctx["intent_media"] = intentMedia
			report.Findings = append(report.Findings, domain.Finding{
				Severity: domain.SeverityFail,
				Code:     domain.CodeMismatchedMedia,
				Message: fmt.Sprintf("%s %s: BOM bin %dm implies %s, intent expects %s at %dm",
					g.Class, g.CableType, bomBin, bomMedia, intentMedia, closest),
				Context: ctx,
			})
		case bomBin >= closest && bomBin-closest <= binSlop:
			ctx["bin_slop_m"] = binSlop
			report.Findings = append(report.Findings, domain.Finding{
				Severity: domain.SeverityWarn,
				Code:     domain.CodeMismatchedBin,
				Message: fmt.Sprintf("%s %s: BOM uses %dm bin, intent expects %dm (within slop)",
					g.Class, g.CableType, bomBin, closest),
				Context: ctx,
			})
		default:
			ctx["bin_slop_m"] = binSlop
			report.Findings = append(report.Findings, domain.Finding{
				Severity: domain.SeverityFail,
				Code:     domain.CodeMismatchedBin,
				Message: fmt.Sprintf("%s %s: BOM uses %dm bin, intent expects %dm",
					g.Class, g.CableType, bomBin, closest),
				Context: ctx,
			})
		}
		delete(remBOM, bomBin)
		delete(remIntent, closest)
	}

	// True leftovers.
	for _, bin := range sortedKeys(remIntent) {
		report.Findings = append(report.Findings, domain.Finding{
			Severity: domain.SeverityFail,
			Code:     domain.CodeMissingLink,
			Message: fmt.Sprintf("%s requires %d × %s @ %dm; BOM provides 0",
				g.Class, remIntent[bin], g.CableType, bin),
			Context: map[string]any{
				"class":        g.Class,
				"cable_type":   g.CableType,
				"length_bin_m": bin,
				"required":     remIntent[bin],
				"provided":     0,
			},
		})
	}
	for _, bin := range sortedKeys(remBOM) {
		report.Findings = append(report.Findings, domain.Finding{
			Severity: domain.SeverityWarn,
			Code:     domain.CodePhantomItem,
			Message: fmt.Sprintf("%s BOM has %d × %s @ %dm; intent requires 0",
				g.Class, remBOM[bin], g.CableType, bin),
			Context: map[string]any{
				"class":        g.Class,
				"cable_type":   g.CableType,
				"length_bin_m": bin,
				"required":     0,
				"provided":     remBOM[bin],
			},
		})
	}
}

func mediaForBin(binM int, dacMaxM float64) domain.Media {
	if float64(binM) <= dacMaxM {
		return domain.MediaDAC
	}
	return domain.MediaOptical
}

func groupBins(buckets map[domain.BucketKey]int, g classPair) []int {
	var bins []int
	for key := range buckets {
		if key.Class == g.Class && key.CableType == g.CableType {
			bins = append(bins, key.LengthBinM)
		}
	}
	sort.Ints(bins)
	return bins
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func bucketCounts(buckets map[domain.BucketKey]int) []domain.BucketCount {
	keys := domain.SortedBucketKeys(buckets)
	out := make([]domain.BucketCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.BucketCount{
			Class:      k.Class,
			CableType:  k.CableType,
			LengthBinM: k.LengthBinM,
			Quantity:   buckets[k],
		})
	}
	return out
}
