package engine

import (
	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// EstimateLine is one heuristic class count, before and after spares.
type EstimateLine struct {
	Class      domain.LinkClass `yaml:"class" json:"class"`
	CableType  domain.CableType `yaml:"cable_type" json:"cable_type"`
	Count      int              `yaml:"count" json:"count"`
	WithSpares int              `yaml:"with_spares" json:"with_spares"`
}

// EstimateResult is the policy-only heuristic projection.
type EstimateResult struct {
	Lines          []EstimateLine             `yaml:"lines" json:"lines"`
	SparesFraction float64                    `yaml:"spares_fraction" json:"spares_fraction"`
	Bins           map[domain.CableType][]int `yaml:"bins" json:"bins"`
	Assumptions    config.SiteDefaults        `yaml:"assumptions" json:"assumptions"`
}

// Estimate projects cable counts per class from the policy's site
// defaults alone, with no manifests and no geometry. It is a planning
// convenience; calculate is the authoritative path.
func Estimate(pol *config.Policy, sparesOverride *float64) *EstimateResult {
	site := pol.SiteDefaults
	spares := pol.SparesFraction(sparesOverride)

	leafNode := site.NumRacks * site.NodesPerRack * pol.Defaults.Nodes25GPerNode
	leafSpine := site.NumRacks * site.UplinksPerRack
	mgmt := site.NumRacks * site.NodesPerRack * site.MgmtRJ45PerNode
	wan := site.WANCat6A
	if pol.Defaults.WANCat6ACount != nil {
		wan = *pol.Defaults.WANCat6ACount
	}

	res := &EstimateResult{
		SparesFraction: spares,
		Bins:           pol.BinTables(),
		Assumptions:    *site,
	}
	for _, line := range []struct {
		class domain.LinkClass
		ct    domain.CableType
		count int
	}{
		{domain.ClassLeafNode, domain.CableSFP28, leafNode},
		{domain.ClassLeafSpine, domain.CableQSFP28, leafSpine},
		{domain.ClassMgmt, domain.CableRJ45, mgmt},
		{domain.ClassWAN, domain.CableRJ45, wan},
	} {
		res.Lines = append(res.Lines, EstimateLine{
			Class:      line.class,
			CableType:  line.ct,
			Count:      line.count,
			WithSpares: WithSpares(line.count, spares),
		})
	}
	return res
}
