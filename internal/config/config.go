package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"rackwire/internal/domain"
)

// Engine defaults. Each constant is surfaced through a defaulted-section
// advisory when it substitutes for a missing policy value, never applied
// silently.
const (
	defaultDACMaxM        = 3.0
	defaultSparesFraction = 0.10
	rj45CopperMaxM        = 100
)

// The 30m bin keeps the default policy self-consistent: the heuristic
// leaf-spine fallback (adjacent_rack 10m × slack 1.2 = 12m) must land in
// some bin, or a geometry-less run could never calculate.
func defaultBins() []int { return []int{1, 3, 5, 10, 30} }

// Load reads the policy at path, or returns the full engine-default policy
// when path is empty. The returned string is the path actually used.
func Load(path string) (*Policy, string, error) {
	if path == "" {
		p := DefaultPolicy()
		p.Defaulted = []string{"policy"}
		return p, "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and defaults the policy from a specific file.
func LoadFromPath(path string) (*Policy, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read policy: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return p, path, nil
}

// Parse decodes a policy document and applies defaults.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	// Some manifests spell the estimator section with a hyphen. Accept it
	// as an alias, with the underscore spelling winning on conflict.
	if p.SiteDefaults == nil {
		var alias struct {
			SiteDefaults *SiteDefaults `yaml:"site-defaults"`
		}
		if err := yaml.Unmarshal(data, &alias); err == nil && alias.SiteDefaults != nil {
			p.SiteDefaults = alias.SiteDefaults
		}
	}

	p.applyDefaults()
	return &p, nil
}

// DefaultPolicy returns the complete engine-default policy.
func DefaultPolicy() *Policy {
	dac := defaultDACMaxM
	p := &Policy{
		Defaults: &Defaults{
			Nodes25GPerNode:       1,
			MgmtRJ45PerNode:       1,
			TorUplinkQSFP28PerTor: 2,
			SparesFraction:        defaultSparesFraction,
		},
		SiteDefaults: &SiteDefaults{
			NumRacks:        4,
			NodesPerRack:    4,
			UplinksPerRack:  2,
			MgmtRJ45PerNode: 1,
			WANCat6A:        2,
		},
		MediaRules: map[string]MediaRule{
			string(domain.CableSFP28):  {DACMaxM: &dac, BinsM: defaultBins()},
			string(domain.CableQSFP28): {DACMaxM: &dac, BinsM: defaultBins()},
			string(domain.CableRJ45):   {BinsM: defaultBins()},
		},
		Redundancy: &Redundancy{
			NodeDualHoming: false,
			TorUplinksMin:  2,
		},
		Oversubscription: &Oversubscription{
			MaxLeafToSpineRatio: 4.0,
			WarnMarginFraction:  0.25,
		},
		Heuristics: &Heuristics{
			SameRackLeafToNodeM:         2.0,
			AdjacentRackLeafToSpineM:    10.0,
			NonAdjacentRackLeafToSpineM: 30.0,
			WANToSpineM:                 30.0,
			TileM:                       1.0,
			SlackFactor:                 1.2,
			BinSlopM:                    2,
		},
	}
	return p
}

// applyDefaults fills missing sections with engine defaults and records
// each substitution in p.Defaulted.
func (p *Policy) applyDefaults() {
	def := DefaultPolicy()

	if p.Defaults == nil {
		p.Defaults = def.Defaults
		p.markDefaulted("defaults")
	} else if p.Defaults.SparesFraction == 0 {
		// A literal 0.0 spares fraction is indistinguishable from an
		// omitted key after decoding. Treat it as omitted; callers who
		// genuinely want no spares pass an explicit override.
		p.Defaults.SparesFraction = defaultSparesFraction
		p.markDefaulted("defaults.spares_fraction")
	}
	if p.SiteDefaults == nil {
		p.SiteDefaults = def.SiteDefaults
		p.markDefaulted("site_defaults")
	}
	if len(p.MediaRules) == 0 {
		p.MediaRules = def.MediaRules
		p.markDefaulted("media_rules")
	} else {
		keys := make([]string, 0, len(p.MediaRules))
		for k := range p.MediaRules {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r := p.MediaRules[k]
			if len(r.BinsM) == 0 {
				r.BinsM = defaultBins()
				p.MediaRules[k] = r
				p.markDefaulted("media_rules." + k + ".bins_m")
			}
		}
	}
	if p.Redundancy == nil {
		p.Redundancy = def.Redundancy
		p.markDefaulted("redundancy")
	}
	if p.Oversubscription == nil {
		p.Oversubscription = def.Oversubscription
		p.markDefaulted("oversubscription")
	}
	if p.Heuristics == nil {
		p.Heuristics = def.Heuristics
		p.markDefaulted("heuristics")
	} else {
		h := p.Heuristics
		if h.SameRackLeafToNodeM == 0 {
			h.SameRackLeafToNodeM = def.Heuristics.SameRackLeafToNodeM
			p.markDefaulted("heuristics.same_rack_leaf_to_node_m")
		}
		if h.AdjacentRackLeafToSpineM == 0 {
			h.AdjacentRackLeafToSpineM = def.Heuristics.AdjacentRackLeafToSpineM
			p.markDefaulted("heuristics.adjacent_rack_leaf_to_spine_m")
		}
		if h.NonAdjacentRackLeafToSpineM == 0 {
			h.NonAdjacentRackLeafToSpineM = def.Heuristics.NonAdjacentRackLeafToSpineM
			p.markDefaulted("heuristics.non_adjacent_rack_leaf_to_spine_m")
		}
		if h.WANToSpineM == 0 {
			h.WANToSpineM = def.Heuristics.WANToSpineM
			p.markDefaulted("heuristics.wan_to_spine_m")
		}
		if h.TileM == 0 {
			h.TileM = def.Heuristics.TileM
			p.markDefaulted("heuristics.tile_m")
		}
		if h.SlackFactor == 0 {
			h.SlackFactor = def.Heuristics.SlackFactor
			p.markDefaulted("heuristics.slack_factor")
		}
		if h.BinSlopM == 0 {
			h.BinSlopM = def.Heuristics.BinSlopM
			p.markDefaulted("heuristics.bin_slop_m")
		}
	}
}

func (p *Policy) markDefaulted(section string) {
	p.Defaulted = append(p.Defaulted, section)
}

// WasDefaulted reports whether applyDefaults substituted the named section.
func (p *Policy) WasDefaulted(section string) bool {
	for _, s := range p.Defaulted {
		if s == section {
			return true
		}
	}
	return false
}

// DACMaxM resolves the effective DAC threshold for a cable type. RJ45 is
// copper end to end, so its threshold is the Cat6A reach. missing=true
// means the policy omitted the value and the engine default was used.
func (p *Policy) DACMaxM(ct domain.CableType) (max float64, missing bool) {
	if ct == domain.CableRJ45 {
		return rj45CopperMaxM, false
	}
	if r, ok := p.MediaRules[string(ct)]; ok && r.DACMaxM != nil {
		return *r.DACMaxM, false
	}
	return defaultDACMaxM, true
}

// SparesFraction returns the effective spares fraction, preferring an
// explicit override when one is given.
func (p *Policy) SparesFraction(override *float64) float64 {
	if override != nil {
		return *override
	}
	if p.Defaults != nil {
		return p.Defaults.SparesFraction
	}
	return defaultSparesFraction
}
