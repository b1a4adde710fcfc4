package engine

import (
	"errors"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// IntentResult is the derived link set plus everything that could not be
// resolved into a feasible link.
type IntentResult struct {
	Links      []domain.Link
	Infeasible []domain.InfeasibleLink
	Findings   []domain.Finding
}

// BuildIntent derives the expected physical links from the manifests and
// policy, independent of any previously materialized BOM. The walk order
// is fixed (nodes in manifest order, then topology racks, then mgmt, then
// WAN) so two runs over the same inputs produce identical output.
func BuildIntent(m *domain.Manifests, pol *config.Policy) *IntentResult {
	res := &IntentResult{}

	sameRack := ApplySlack(pol.Heuristics.SameRackLeafToNodeM, pol.Heuristics.SlackFactor)

	// Leaf-node: one SFP28 link per declared (or defaulted) edge NIC,
	// bound to the node's rack ToR.
	for _, node := range m.Nodes {
		count := node.CountNICs(domain.NICTypeSFP28)
		if len(node.NICs) == 0 {
			count = pol.Defaults.Nodes25GPerNode
		}
		res.addLinks(domain.Link{
			Class:     domain.ClassLeafNode,
			CableType: domain.CableSFP28,
			DistanceM: sameRack,
			RackID:    node.RackID,
			NodeID:    node.ID,
		}, count, pol)
	}

	// Leaf-spine: one QSFP28 link per declared uplink. Geometry refines
	// the distance when both endpoints are placed; otherwise the flat
	// heuristic applies and the fallback is surfaced as INFO.
	spineGrid, spinePlaced := m.Site.SpineGrid()
	for _, rack := range m.Topology.Racks {
		uplinks := rack.Uplinks(pol.Defaults.TorUplinkQSFP28PerTor)

		var distance float64
		rackGrid, rackPlaced := m.Site.RackGrid(rack.RackID)
		if spinePlaced && rackPlaced {
			distance = ApplySlack(RackDistanceM(rackGrid, spineGrid, pol.Heuristics.TileM), pol.Heuristics.SlackFactor)
		} else {
			distance = ApplySlack(pol.Heuristics.AdjacentRackLeafToSpineM, pol.Heuristics.SlackFactor)
			res.Findings = append(res.Findings, domain.Finding{
				Severity: domain.SeverityInfo,
				Code:     domain.CodeGeometryFallback,
				Message:  "rack " + rack.RackID + " leaf-spine distance estimated from policy heuristic (no site geometry)",
				Context:  map[string]any{"rack_id": rack.RackID, "distance_m": distance},
			})
		}

		res.addLinks(domain.Link{
			Class:     domain.ClassLeafSpine,
			CableType: domain.CableQSFP28,
			DistanceM: distance,
			RackID:    rack.RackID,
		}, uplinks, pol)
	}

	// Mgmt: RJ45 runs from each node to the in-rack aggregation.
	for _, node := range m.Nodes {
		count := node.CountNICs(domain.NICTypeRJ45)
		if len(node.NICs) == 0 {
			count = pol.Defaults.MgmtRJ45PerNode
		}
		res.addLinks(domain.Link{
			Class:     domain.ClassMgmt,
			CableType: domain.CableRJ45,
			DistanceM: sameRack,
			RackID:    node.RackID,
			NodeID:    node.ID,
		}, count, pol)
	}

	// WAN: RJ45 trunks from the spine to the handoff.
	if m.Topology.WAN != nil && m.Topology.WAN.UplinksCat6A > 0 {
		wanDistance := ApplySlack(pol.Heuristics.WANToSpineM, pol.Heuristics.SlackFactor)
		res.addLinks(domain.Link{
			Class:     domain.ClassWAN,
			CableType: domain.CableRJ45,
			DistanceM: wanDistance,
		}, m.Topology.WAN.UplinksCat6A, pol)
	}

	return res
}

// addLinks resolves media/bin for the template link and appends count
// copies, or records the infeasibility once per endpoint.
func (r *IntentResult) addLinks(template domain.Link, count int, pol *config.Policy) {
	if count <= 0 {
		return
	}
	resolution, err := Resolve(template.DistanceM, template.CableType, pol)
	if err != nil {
		if errors.Is(err, ErrNoFeasibleBin) {
			r.Infeasible = append(r.Infeasible, domain.InfeasibleLink{
				Class:     template.Class,
				CableType: template.CableType,
				DistanceM: template.DistanceM,
				MaxBinM:   MaxBin(pol, template.CableType),
				RackID:    template.RackID,
				NodeID:    template.NodeID,
			})
		}
		return
	}
	template.Media = resolution.Media
	template.BinM = resolution.BinM
	for i := 0; i < count; i++ {
		r.Links = append(r.Links, template)
	}
}

// Buckets aggregates the intent links into (class, cable_type, bin)
// counts.
func (r *IntentResult) Buckets() map[domain.BucketKey]int {
	out := make(map[domain.BucketKey]int)
	for _, l := range r.Links {
		out[domain.BucketKey{Class: l.Class, CableType: l.CableType, LengthBinM: l.BinM}]++
	}
	return out
}
