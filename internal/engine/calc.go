package engine

import (
	"fmt"
	"math"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// WithSpares inflates a core cable count by the spares fraction, rounding
// up. ceil(16 × 1.1) = 18, not 17.
func WithSpares(count int, sparesFraction float64) int {
	return int(math.Ceil(float64(count) * (1.0 + sparesFraction)))
}

// CoreFromQuantity inverts WithSpares. The inflation is strictly
// increasing in the core count, so when an exact preimage exists it is
// unique; exact=false means the quantity cannot be the result of
// inflating any core count and the returned value is the closest
// candidate from below.
func CoreFromQuantity(quantity int, sparesFraction float64) (core int, exact bool) {
	if quantity <= 0 {
		return 0, quantity == 0
	}
	if sparesFraction <= 0 {
		return quantity, true
	}
	candidate := int(float64(quantity) / (1.0 + sparesFraction))
	for c := candidate + 1; c >= candidate-1 && c >= 0; c-- {
		if WithSpares(c, sparesFraction) == quantity {
			return c, true
		}
	}
	return candidate, false
}

// Calculate derives intent from the manifests and aggregates it into a
// Bill of Materials. Any infeasible link in a structurally required class
// is fatal; infeasible optional links are dropped with a WARN finding.
// The spares override, when non-nil, replaces the policy fraction.
func Calculate(m *domain.Manifests, pol *config.Policy, sparesOverride *float64) (*domain.BOM, []domain.Finding, error) {
	intent := BuildIntent(m, pol)
	findings := intent.Findings

	for _, inf := range intent.Infeasible {
		if inf.Class.Required() {
			endpoint := inf.RackID
			if inf.NodeID != "" {
				endpoint = inf.NodeID
			}
			return nil, findings, fmt.Errorf(
				"%s link at %s requires %.1fm but the largest %s bin is %dm",
				inf.Class, endpoint, inf.DistanceM, inf.CableType, inf.MaxBinM)
		}
		findings = append(findings, domain.Finding{
			Severity: domain.SeverityWarn,
			Code:     domain.CodeCalcInfeasibleDropped,
			Message: fmt.Sprintf("%s link dropped: %.1fm exceeds largest %s bin %dm",
				inf.Class, inf.DistanceM, inf.CableType, inf.MaxBinM),
			Context: map[string]any{
				"class":      inf.Class,
				"cable_type": inf.CableType,
				"distance_m": inf.DistanceM,
				"max_bin_m":  inf.MaxBinM,
			},
		})
	}

	spares := pol.SparesFraction(sparesOverride)
	buckets := intent.Buckets()

	bom := &domain.BOM{
		Meta: domain.BOMMeta{
			GeneratedBy:    "rackwire calculate",
			PolicyVersion:  pol.Version,
			SparesFraction: spares,
			Bins:           pol.BinTables(),
		},
	}
	for key, core := range buckets {
		bom.Items = append(bom.Items, domain.BOMItem{
			Class:      key.Class,
			CableType:  key.CableType,
			LengthBinM: key.LengthBinM,
			Quantity:   WithSpares(core, spares),
		})
	}
	bom.Sort()
	return bom, findings, nil
}
