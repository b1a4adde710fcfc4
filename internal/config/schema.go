// Package config loads and defaults the cabling policy.
//
// The policy is the single tunable input of every engine: per-node NIC
// defaults, media rules (DAC thresholds and length bins), redundancy and
// oversubscription requirements, and distance heuristics. Missing sections
// are filled with engine defaults, and each defaulted section is recorded
// so validation can surface an advisory finding instead of silently
// baking the default in.
package config

import (
	"rackwire/internal/domain"
)

// Defaults supplies implied per-node and per-ToR counts for manifests that
// omit explicit NIC or uplink declarations.
type Defaults struct {
	Nodes25GPerNode       int     `yaml:"nodes_25g_per_node" json:"nodes_25g_per_node"`
	MgmtRJ45PerNode       int     `yaml:"mgmt_rj45_per_node" json:"mgmt_rj45_per_node"`
	TorUplinkQSFP28PerTor int     `yaml:"tor_uplink_qsfp28_per_tor" json:"tor_uplink_qsfp28_per_tor"`
	SparesFraction        float64 `yaml:"spares_fraction" json:"spares_fraction"`
	WANCat6ACount         *int    `yaml:"wan_cat6a_count,omitempty" json:"wan_cat6a_count,omitempty"`
}

// SiteDefaults parameterizes the policy-only heuristic estimator. It never
// influences manifest-driven calculation or validation.
type SiteDefaults struct {
	NumRacks        int `yaml:"num_racks" json:"num_racks"`
	NodesPerRack    int `yaml:"nodes_per_rack" json:"nodes_per_rack"`
	UplinksPerRack  int `yaml:"uplinks_per_rack" json:"uplinks_per_rack"`
	MgmtRJ45PerNode int `yaml:"mgmt_rj45_per_node" json:"mgmt_rj45_per_node"`
	WANCat6A        int `yaml:"wan_cat6a" json:"wan_cat6a"`
}

// MediaRule configures media selection for one cable type: the DAC
// distance threshold and the orderable length bins.
type MediaRule struct {
	DACMaxM *float64 `yaml:"dac_max_m,omitempty" json:"dac_max_m,omitempty"`
	BinsM   []int    `yaml:"bins_m" json:"bins_m"`
}

// Redundancy declares structural redundancy requirements.
type Redundancy struct {
	NodeDualHoming bool `yaml:"node_dual_homing" json:"node_dual_homing"`
	TorUplinksMin  int  `yaml:"tor_uplinks_min" json:"tor_uplinks_min"`
	AllowSingleTor bool `yaml:"allow_single_tor" json:"allow_single_tor"`
	LAGGroupSize   int  `yaml:"lag_group_size" json:"lag_group_size"`
	RequireLACP    bool `yaml:"require_lacp" json:"require_lacp"`
	MgmtDualHoming bool `yaml:"mgmt_dual_homing" json:"mgmt_dual_homing"`
}

// Oversubscription bounds the leaf-to-spine bandwidth ratio. Ratios above
// the ceiling but inside the warn margin degrade to WARN instead of FAIL.
type Oversubscription struct {
	MaxLeafToSpineRatio float64 `yaml:"max_leaf_to_spine_ratio" json:"max_leaf_to_spine_ratio"`
	WarnMarginFraction  float64 `yaml:"warn_margin_fraction" json:"warn_margin_fraction"`
}

// Heuristics are the fallback distance constants used when site geometry is
// absent, plus the grid scale and slack applied when it is present.
type Heuristics struct {
	SameRackLeafToNodeM         float64 `yaml:"same_rack_leaf_to_node_m" json:"same_rack_leaf_to_node_m"`
	AdjacentRackLeafToSpineM    float64 `yaml:"adjacent_rack_leaf_to_spine_m" json:"adjacent_rack_leaf_to_spine_m"`
	NonAdjacentRackLeafToSpineM float64 `yaml:"non_adjacent_rack_leaf_to_spine_m" json:"non_adjacent_rack_leaf_to_spine_m"`
	WANToSpineM                 float64 `yaml:"wan_to_spine_m" json:"wan_to_spine_m"`
	TileM                       float64 `yaml:"tile_m" json:"tile_m"`
	SlackFactor                 float64 `yaml:"slack_factor" json:"slack_factor"`
	BinSlopM                    int     `yaml:"bin_slop_m" json:"bin_slop_m"`
}

// Policy is the root cabling policy document.
type Policy struct {
	Version          string               `yaml:"version,omitempty" json:"version,omitempty"`
	Defaults         *Defaults            `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	SiteDefaults     *SiteDefaults        `yaml:"site_defaults,omitempty" json:"site_defaults,omitempty"`
	MediaRules       map[string]MediaRule `yaml:"media_rules,omitempty" json:"media_rules,omitempty"`
	Redundancy       *Redundancy          `yaml:"redundancy,omitempty" json:"redundancy,omitempty"`
	Oversubscription *Oversubscription    `yaml:"oversubscription,omitempty" json:"oversubscription,omitempty"`
	Heuristics       *Heuristics          `yaml:"heuristics,omitempty" json:"heuristics,omitempty"`
	LineRates        map[string]float64   `yaml:"line_rates,omitempty" json:"line_rates,omitempty"`

	// Defaulted lists section paths that applyDefaults filled in because
	// the document omitted them. Validation turns these into advisory
	// findings; the list is never serialized back out.
	Defaulted []string `yaml:"-" json:"-"`
}

// MediaRule returns the rule for a cable type, or a zero rule if none is
// configured.
func (p *Policy) MediaRule(ct domain.CableType) (MediaRule, bool) {
	r, ok := p.MediaRules[string(ct)]
	return r, ok
}

// Bins returns the configured length bins for a cable type, or nil.
func (p *Policy) Bins(ct domain.CableType) []int {
	if r, ok := p.MediaRules[string(ct)]; ok {
		return r.BinsM
	}
	return nil
}

// BinTables snapshots every configured bin table keyed by cable type, for
// embedding in BOM metadata.
func (p *Policy) BinTables() map[domain.CableType][]int {
	out := make(map[domain.CableType][]int, len(p.MediaRules))
	for k, r := range p.MediaRules {
		bins := make([]int, len(r.BinsM))
		copy(bins, r.BinsM)
		out[domain.CableType(k)] = bins
	}
	return out
}

// LineRateGbps resolves a NIC type to its line rate in Gbps. The policy
// line_rates map overrides the engine defaults; an unknown type falls back
// to the edge default and reports defaulted=true so callers can emit an
// advisory finding.
func (p *Policy) LineRateGbps(t domain.NICType) (rate float64, defaulted bool) {
	if p.LineRates != nil {
		if r, ok := p.LineRates[string(t)]; ok {
			return r, false
		}
	}
	switch t {
	case domain.NICTypeSFP28:
		return 25, false
	case domain.NICTypeQSFP28:
		return 100, false
	case domain.NICTypeRJ45:
		return 10, false
	}
	return 25, true
}
