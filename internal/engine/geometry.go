// Package engine implements the cabling engines: intent derivation,
// BOM calculation, manifest validation, BOM cross-validation, roundtrip
// port accounting, and the policy-only estimator. All of them resolve
// distance, media, and length bins through the single resolver in this
// file so the paths cannot drift apart.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// ErrNoFeasibleBin reports a distance exceeding every configured length
// bin for the cable type.
var ErrNoFeasibleBin = errors.New("no feasible length bin")

// RackDistanceM is the Manhattan distance between two grid positions in
// meters.
func RackDistanceM(a, b domain.GridPos, tileM float64) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx+dy) * tileM
}

// ApplySlack inflates a physical distance by the policy slack factor.
func ApplySlack(distanceM, slackFactor float64) float64 {
	return distanceM * slackFactor
}

// SelectBin picks the smallest bin that accommodates the distance. The
// second return is false when no bin is large enough.
func SelectBin(distanceM float64, binsM []int) (int, bool) {
	sorted := make([]int, len(binsM))
	copy(sorted, binsM)
	sort.Ints(sorted)
	for _, b := range sorted {
		if distanceM <= float64(b) {
			return b, true
		}
	}
	return 0, false
}

// Resolution is the resolved media and length bin for one link.
type Resolution struct {
	Media domain.Media
	BinM  int
}

// Resolve maps a slack-adjusted distance to media and bin for a cable
// type. The DAC comparison is inclusive: a distance exactly at the
// threshold selects DAC. Returns ErrNoFeasibleBin when the distance
// exceeds every configured bin.
func Resolve(distanceM float64, ct domain.CableType, pol *config.Policy) (Resolution, error) {
	bins := pol.Bins(ct)
	if len(bins) == 0 {
		return Resolution{}, fmt.Errorf("%s: no length bins configured", ct)
	}
	bin, ok := SelectBin(distanceM, bins)
	if !ok {
		return Resolution{}, fmt.Errorf("%s: distance %.1fm: %w", ct, distanceM, ErrNoFeasibleBin)
	}

	dacMax, _ := pol.DACMaxM(ct)
	media := domain.MediaOptical
	if distanceM <= dacMax {
		media = domain.MediaDAC
	}
	return Resolution{Media: media, BinM: bin}, nil
}

// MaxBin returns the largest configured bin for a cable type, or 0.
func MaxBin(pol *config.Policy, ct domain.CableType) int {
	max := 0
	for _, b := range pol.Bins(ct) {
		if b > max {
			max = b
		}
	}
	return max
}
