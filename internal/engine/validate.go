package engine

import (
	"fmt"
	"sort"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// validator accumulates findings and counts the checks that passed, so
// the report summary reflects real work rather than an estimate.
type validator struct {
	m        *domain.Manifests
	pol      *config.Policy
	findings []domain.Finding
	pass     int
}

func (v *validator) add(sev domain.Severity, code, msg string, ctx map[string]any) {
	v.findings = append(v.findings, domain.Finding{Severity: sev, Code: code, Message: msg, Context: ctx})
}

func (v *validator) ok() { v.pass++ }

// Validate runs every rule family against the manifests. Policy sanity
// runs first; when it fails, the report is marked untrusted so callers
// know the downstream findings may be artifacts of bad policy values.
func Validate(m *domain.Manifests, pol *config.Policy) *domain.Report {
	v := &validator{m: m, pol: pol}

	v.checkPolicy()
	policyTrusted := true
	for _, f := range v.findings {
		if f.Severity == domain.SeverityFail {
			policyTrusted = false
			break
		}
	}

	v.checkPorts()
	v.checkCompatibility()
	v.checkOversubscription()
	v.checkCompleteness()
	v.checkLengths()
	v.checkRedundancy()

	report := domain.NewReport(v.findings, v.pass)
	report.PolicyTrusted = policyTrusted
	return report
}

// checkPolicy validates the policy document itself.
func (v *validator) checkPolicy() {
	pol := v.pol

	if sf := pol.Defaults.SparesFraction; sf < 0 || sf > 1 {
		v.add(domain.SeverityFail, domain.CodePolicySparesRange,
			fmt.Sprintf("defaults.spares_fraction %v must be between 0.0 and 1.0", sf),
			map[string]any{"key": "defaults.spares_fraction", "value": sf})
	} else {
		v.ok()
	}

	mediaKeys := make([]string, 0, len(pol.MediaRules))
	for k := range pol.MediaRules {
		mediaKeys = append(mediaKeys, k)
	}
	sort.Strings(mediaKeys)

	for _, key := range mediaKeys {
		rule := pol.MediaRules[key]
		v.checkBins(key, rule.BinsM)

		if key == string(domain.CableRJ45) {
			continue
		}
		switch {
		case rule.DACMaxM == nil:
			v.add(domain.SeverityWarn, domain.CodePolicyDACMaxMissing,
				fmt.Sprintf("media_rules.%s.dac_max_m missing, engine default applies", key),
				map[string]any{"media_type": key})
		case *rule.DACMaxM <= 0:
			v.add(domain.SeverityFail, domain.CodePolicyDACMaxInvalid,
				fmt.Sprintf("media_rules.%s.dac_max_m must be positive, got %v", key, *rule.DACMaxM),
				map[string]any{"media_type": key, "value": *rule.DACMaxM})
		case len(rule.BinsM) > 0 && *rule.DACMaxM < float64(smallestBin(rule.BinsM)):
			v.add(domain.SeverityWarn, domain.CodePolicyDACMaxLTBin,
				fmt.Sprintf("media_rules.%s.dac_max_m (%v) is below the smallest bin (%d)", key, *rule.DACMaxM, smallestBin(rule.BinsM)),
				map[string]any{"media_type": key, "dac_max_m": *rule.DACMaxM, "smallest_bin": smallestBin(rule.BinsM)})
		default:
			v.ok()
		}
	}

	for _, ct := range []domain.CableType{domain.CableSFP28, domain.CableQSFP28, domain.CableRJ45} {
		if _, ok := pol.MediaRules[string(ct)]; !ok {
			v.add(domain.SeverityWarn, domain.CodePolicyMediaDefaulted,
				fmt.Sprintf("media_rules.%s missing from policy, engine defaults apply", ct),
				map[string]any{"media_type": string(ct)})
		} else {
			v.ok()
		}
	}

	var over100 []int
	for _, b := range pol.Bins(domain.CableRJ45) {
		if b > 100 {
			over100 = append(over100, b)
		}
	}
	if len(over100) > 0 {
		v.add(domain.SeverityWarn, domain.CodePolicyRJ45BinsGT100M,
			fmt.Sprintf("rj45_cat6a.bins_m contains bins over 100m: %v (speed may downshift)", over100),
			map[string]any{"bins_over_100m": over100})
	} else {
		v.ok()
	}

	for _, d := range []struct {
		key   string
		value int
	}{
		{"defaults.nodes_25g_per_node", pol.Defaults.Nodes25GPerNode},
		{"defaults.mgmt_rj45_per_node", pol.Defaults.MgmtRJ45PerNode},
		{"defaults.tor_uplink_qsfp28_per_tor", pol.Defaults.TorUplinkQSFP28PerTor},
	} {
		if d.value < 0 {
			v.add(domain.SeverityFail, domain.CodePolicyDefaultNegative,
				fmt.Sprintf("%s must be non-negative, got %d", d.key, d.value),
				map[string]any{"key": d.key, "value": d.value})
		}
	}

	if pol.Redundancy.TorUplinksMin < 0 {
		v.add(domain.SeverityFail, domain.CodePolicyRedundancyInvalid,
			fmt.Sprintf("redundancy.tor_uplinks_min must be non-negative, got %d", pol.Redundancy.TorUplinksMin),
			map[string]any{"key": "redundancy.tor_uplinks_min", "value": pol.Redundancy.TorUplinksMin})
	} else {
		v.ok()
	}
	if pol.Redundancy.LAGGroupSize < 0 {
		v.add(domain.SeverityFail, domain.CodePolicyRedundancyInvalid,
			fmt.Sprintf("redundancy.lag_group_size must be non-negative, got %d", pol.Redundancy.LAGGroupSize),
			map[string]any{"key": "redundancy.lag_group_size", "value": pol.Redundancy.LAGGroupSize})
	}

	if pol.WasDefaulted("oversubscription") {
		v.add(domain.SeverityWarn, domain.CodePolicyOversubDefaulted,
			"oversubscription section missing, engine default ceiling 4.0 applies",
			map[string]any{"default_ratio": 4.0})
	} else if pol.Oversubscription.MaxLeafToSpineRatio <= 0 {
		v.add(domain.SeverityFail, domain.CodePolicyOversubInvalid,
			fmt.Sprintf("oversubscription.max_leaf_to_spine_ratio must be positive, got %v", pol.Oversubscription.MaxLeafToSpineRatio),
			map[string]any{"key": "oversubscription.max_leaf_to_spine_ratio", "value": pol.Oversubscription.MaxLeafToSpineRatio})
	} else {
		v.ok()
	}
	if pol.Oversubscription.WarnMarginFraction < 0 {
		v.add(domain.SeverityFail, domain.CodePolicyOversubInvalid,
			fmt.Sprintf("oversubscription.warn_margin_fraction must be non-negative, got %v", pol.Oversubscription.WarnMarginFraction),
			map[string]any{"key": "oversubscription.warn_margin_fraction", "value": pol.Oversubscription.WarnMarginFraction})
	}

	h := pol.Heuristics
	for _, check := range []struct {
		key   string
		value float64
		valid bool
		want  string
	}{
		{"heuristics.same_rack_leaf_to_node_m", h.SameRackLeafToNodeM, h.SameRackLeafToNodeM > 0, "> 0"},
		{"heuristics.adjacent_rack_leaf_to_spine_m", h.AdjacentRackLeafToSpineM, h.AdjacentRackLeafToSpineM > 0, "> 0"},
		{"heuristics.non_adjacent_rack_leaf_to_spine_m", h.NonAdjacentRackLeafToSpineM, h.NonAdjacentRackLeafToSpineM > 0, "> 0"},
		{"heuristics.wan_to_spine_m", h.WANToSpineM, h.WANToSpineM > 0, "> 0"},
		{"heuristics.tile_m", h.TileM, h.TileM > 0, "> 0"},
		{"heuristics.slack_factor", h.SlackFactor, h.SlackFactor >= 1.0, ">= 1.0"},
	} {
		if !check.valid {
			v.add(domain.SeverityFail, domain.CodePolicyHeuristicsInvalid,
				fmt.Sprintf("%s must be %s, got %v", check.key, check.want, check.value),
				map[string]any{"key": check.key, "value": check.value})
		}
	}

	// Surface every section applyDefaults had to fill in.
	for _, section := range pol.Defaulted {
		v.add(domain.SeverityInfo, domain.CodePolicySectionDefaulted,
			fmt.Sprintf("policy section %s omitted, engine defaults applied", section),
			map[string]any{"section": section})
	}
}

func (v *validator) checkBins(mediaType string, bins []int) {
	if len(bins) == 0 {
		v.add(domain.SeverityFail, domain.CodePolicyBinsEmpty,
			fmt.Sprintf("media_rules.%s.bins_m cannot be empty", mediaType),
			map[string]any{"media_type": mediaType})
		return
	}
	for _, b := range bins {
		if b <= 0 {
			v.add(domain.SeverityFail, domain.CodePolicyBinsInvalid,
				fmt.Sprintf("media_rules.%s.bins_m contains non-positive value %d", mediaType, b),
				map[string]any{"media_type": mediaType, "value": b})
			return
		}
	}
	seen := make(map[int]bool, len(bins))
	for _, b := range bins {
		if seen[b] {
			v.add(domain.SeverityFail, domain.CodePolicyBinsDuplicate,
				fmt.Sprintf("media_rules.%s.bins_m contains duplicate value %d", mediaType, b),
				map[string]any{"media_type": mediaType, "value": b})
			return
		}
		seen[b] = true
	}
	for i := 1; i < len(bins); i++ {
		if bins[i] < bins[i-1] {
			v.add(domain.SeverityFail, domain.CodePolicyBinsUnsorted,
				fmt.Sprintf("media_rules.%s.bins_m must be ascending: %v", mediaType, bins),
				map[string]any{"media_type": mediaType, "bins_m": bins})
			return
		}
	}
	v.ok()
}

func smallestBin(bins []int) int {
	min := bins[0]
	for _, b := range bins[1:] {
		if b < min {
			min = b
		}
	}
	return min
}

// sfp28Demand is the rack's required SFP28 port count, falling back to the
// policy default for nodes with no NIC declarations.
func (v *validator) sfp28Demand(nodes []domain.Node) int {
	demand := 0
	for _, n := range nodes {
		if len(n.NICs) == 0 {
			demand += v.pol.Defaults.Nodes25GPerNode
			continue
		}
		demand += n.CountNICs(domain.NICTypeSFP28)
	}
	return demand
}

func (v *validator) checkPorts() {
	byRack := v.m.NodesByRack()

	for _, rack := range v.m.Topology.Racks {
		tor, ok := v.m.Tors[rack.TorID]
		if !ok {
			v.add(domain.SeverityFail, domain.CodeMissingTor,
				fmt.Sprintf("rack %s references unknown ToR %s", rack.RackID, rack.TorID),
				map[string]any{"rack_id": rack.RackID, "tor_id": rack.TorID})
			continue
		}

		required := v.sfp28Demand(byRack[rack.RackID])
		if required > tor.Ports.SFP28Total {
			deficit := required - tor.Ports.SFP28Total
			v.add(domain.SeverityFail, domain.CodePortCapacityTorSFP28,
				fmt.Sprintf("rack %s requires %d SFP28 ports, ToR provides %d (deficit %d)",
					rack.RackID, required, tor.Ports.SFP28Total, deficit),
				map[string]any{"rack_id": rack.RackID, "required": required, "available": tor.Ports.SFP28Total, "deficit": deficit})
		} else {
			v.ok()
		}

		uplinks := v.rackUplinks(rack)
		if uplinks > tor.Ports.QSFP28Total {
			deficit := uplinks - tor.Ports.QSFP28Total
			v.add(domain.SeverityFail, domain.CodePortCapacityTorQSFP28,
				fmt.Sprintf("rack %s requires %d QSFP28 uplinks, ToR provides %d (deficit %d)",
					rack.RackID, uplinks, tor.Ports.QSFP28Total, deficit),
				map[string]any{"rack_id": rack.RackID, "required": uplinks, "available": tor.Ports.QSFP28Total, "deficit": deficit})
		} else {
			v.ok()
		}
	}

	if v.m.Spine != nil && v.m.Spine.Ports.QSFP28Total > 0 {
		totalUplinks := 0
		for _, rack := range v.m.Topology.Racks {
			totalUplinks += v.rackUplinks(rack)
		}
		capacity := v.m.Spine.Ports.QSFP28Total
		switch {
		case totalUplinks > capacity:
			deficit := totalUplinks - capacity
			v.add(domain.SeverityFail, domain.CodePortCapacitySpineQSFP28,
				fmt.Sprintf("total uplinks %d exceed spine capacity %d (deficit %d)", totalUplinks, capacity, deficit),
				map[string]any{"total_uplinks": totalUplinks, "spine_capacity": capacity, "deficit": deficit})
		case float64(totalUplinks) > float64(capacity)*0.95:
			utilization := float64(totalUplinks) / float64(capacity)
			v.add(domain.SeverityWarn, domain.CodePortCapacitySpineNearFull,
				fmt.Sprintf("spine utilization %.1f%% is near capacity limit", utilization*100),
				map[string]any{"total_uplinks": totalUplinks, "spine_capacity": capacity, "utilization": utilization})
		default:
			v.ok()
		}
	}

	v.add(domain.SeverityInfo, domain.CodeMgmtRJ45Unvalidated,
		"management RJ45 ports not validated (no mgmt switch inventory)", nil)
}

func (v *validator) checkCompatibility() {
	for _, node := range v.m.Nodes {
		for _, nic := range node.NICs {
			switch nic.Type {
			case domain.NICTypeSFP28:
				rack := v.rackEntry(node.RackID)
				if rack == nil {
					v.add(domain.SeverityFail, domain.CodeNICNoRack,
						fmt.Sprintf("node %s SFP28 NIC has no rack mapping", node.ID),
						map[string]any{"node_id": node.ID, "nic_type": string(nic.Type)})
					continue
				}
				tor, ok := v.m.Tors[rack.TorID]
				if !ok || tor.Ports.SFP28Total == 0 {
					v.add(domain.SeverityFail, domain.CodeNICSFP28,
						fmt.Sprintf("node %s SFP28 NIC cannot terminate (no SFP28 ports on ToR)", node.ID),
						map[string]any{"node_id": node.ID, "tor_id": rack.TorID, "nic_type": string(nic.Type)})
				} else {
					v.ok()
				}
			case domain.NICTypeQSFP28:
				v.add(domain.SeverityFail, domain.CodeNICQSFP28Unsupported,
					fmt.Sprintf("node %s QSFP28 NIC not supported (no breakout policy)", node.ID),
					map[string]any{"node_id": node.ID, "nic_type": string(nic.Type)})
			case domain.NICTypeRJ45:
				v.add(domain.SeverityInfo, domain.CodeNICRJ45Unmodeled,
					fmt.Sprintf("node %s RJ45 mgmt NIC termination not modeled", node.ID),
					map[string]any{"node_id": node.ID, "nic_type": string(nic.Type)})
			}
		}
	}
}

// rackUplinks resolves a rack's uplink count with the policy default, the
// same resolution intent derivation uses. An explicit zero stays zero.
func (v *validator) rackUplinks(rack domain.RackEntry) int {
	return rack.Uplinks(v.pol.Defaults.TorUplinkQSFP28PerTor)
}

func (v *validator) rackEntry(rackID string) *domain.RackEntry {
	for i := range v.m.Topology.Racks {
		if v.m.Topology.Racks[i].RackID == rackID {
			return &v.m.Topology.Racks[i]
		}
	}
	return nil
}

// oversubBand applies the shared threshold logic: within the ceiling is a
// pass, within the warn margin above it is WARN, beyond that is FAIL.
func (v *validator) oversubBand(code, scope string, edgeGbps, uplinkGbps float64, ctx map[string]any) {
	ratio := edgeGbps / uplinkGbps
	max := v.pol.Oversubscription.MaxLeafToSpineRatio
	margin := v.pol.Oversubscription.WarnMarginFraction
	ctx["edge_gbps"] = edgeGbps
	ctx["uplink_gbps"] = uplinkGbps
	ctx["ratio"] = ratio
	ctx["policy_max"] = max

	switch {
	case ratio <= max:
		v.ok()
	case ratio <= max*(1.0+margin):
		v.add(domain.SeverityWarn, code,
			fmt.Sprintf("%s edge %.0f Gbps, uplink %.0f Gbps: ratio %.2f:1 exceeds policy %.2f:1", scope, edgeGbps, uplinkGbps, ratio, max),
			ctx)
	default:
		v.add(domain.SeverityFail, code,
			fmt.Sprintf("%s edge %.0f Gbps, uplink %.0f Gbps: ratio %.2f:1 critically exceeds policy %.2f:1", scope, edgeGbps, uplinkGbps, ratio, max),
			ctx)
	}
}

func (v *validator) checkOversubscription() {
	byRack := v.m.NodesByRack()
	uplinkRate, _ := v.pol.LineRateGbps(domain.NICTypeQSFP28)

	siteEdge, siteUplink := 0.0, 0.0
	warnedTypes := make(map[domain.NICType]bool)

	for _, rack := range v.m.Topology.Racks {
		edge := 0.0
		for _, node := range byRack[rack.RackID] {
			if len(node.NICs) == 0 {
				rate, _ := v.pol.LineRateGbps(domain.NICTypeSFP28)
				edge += float64(v.pol.Defaults.Nodes25GPerNode) * rate
				continue
			}
			for _, nic := range node.NICs {
				if nic.Type == domain.NICTypeRJ45 {
					continue
				}
				rate, defaulted := v.pol.LineRateGbps(nic.Type)
				if defaulted && !warnedTypes[nic.Type] {
					warnedTypes[nic.Type] = true
					v.add(domain.SeverityWarn, domain.CodeLineRateDefaulted,
						fmt.Sprintf("NIC type %s has no line rate mapping, engine default %.0f Gbps applies", nic.Type, rate),
						map[string]any{"nic_type": string(nic.Type), "default_gbps": rate})
				}
				edge += float64(nic.Count) * rate
			}
		}

		uplink := float64(v.rackUplinks(rack)) * uplinkRate
		siteEdge += edge
		siteUplink += uplink

		if uplink == 0 && edge > 0 {
			v.add(domain.SeverityFail, domain.CodeOversubNoUplinks,
				fmt.Sprintf("rack %s has edge bandwidth %.0f Gbps but no uplinks", rack.RackID, edge),
				map[string]any{"rack_id": rack.RackID, "edge_gbps": edge, "uplink_gbps": uplink})
			continue
		}
		if uplink > 0 {
			v.oversubBand(domain.CodeOversubRatio, "rack "+rack.RackID, edge, uplink,
				map[string]any{"rack_id": rack.RackID})
		}
	}

	switch {
	case siteUplink == 0 && siteEdge > 0:
		v.add(domain.SeverityFail, domain.CodeOversubNoUplinks,
			fmt.Sprintf("site has edge bandwidth %.0f Gbps but no uplinks", siteEdge),
			map[string]any{"scope": "site", "edge_gbps": siteEdge, "uplink_gbps": siteUplink})
	case siteUplink > 0:
		v.oversubBand(domain.CodeOversubRatioSite, "site", siteEdge, siteUplink,
			map[string]any{"scope": "site"})
	}
}

func (v *validator) checkCompleteness() {
	for _, rack := range v.m.Topology.Racks {
		tor, ok := v.m.Tors[rack.TorID]
		if !ok {
			v.add(domain.SeverityFail, domain.CodeCompletenessMissingTor,
				fmt.Sprintf("topology rack %s references unknown ToR %s", rack.RackID, rack.TorID),
				map[string]any{"rack_id": rack.RackID, "tor_id": rack.TorID})
			continue
		}
		if tor.RackID != rack.RackID {
			v.add(domain.SeverityFail, domain.CodeCompletenessTorRackMismatch,
				fmt.Sprintf("ToR %s rack %s does not match topology rack %s", rack.TorID, tor.RackID, rack.RackID),
				map[string]any{"tor_id": rack.TorID, "tor_rack_id": tor.RackID, "topology_rack_id": rack.RackID})
		} else {
			v.ok()
		}
	}

	valid := make(map[string]bool)
	for _, rack := range v.m.Topology.Racks {
		valid[rack.RackID] = true
	}
	if v.m.Site != nil {
		for _, rack := range v.m.Site.Racks {
			valid[rack.ID] = true
		}
	}
	for _, node := range v.m.Nodes {
		if !valid[node.RackID] {
			v.add(domain.SeverityFail, domain.CodeCompletenessNodeRackMissing,
				fmt.Sprintf("node %s references unknown rack %s", node.ID, node.RackID),
				map[string]any{"node_id": node.ID, "rack_id": node.RackID})
		} else {
			v.ok()
		}
	}

	switch {
	case v.m.Spine == nil:
		v.add(domain.SeverityFail, domain.CodeCompletenessMissingSpine,
			"manifests missing spine configuration", nil)
	case v.m.Spine.Ports.QSFP28Total <= 0:
		v.add(domain.SeverityFail, domain.CodeCompletenessSpineNoPorts,
			fmt.Sprintf("spine %s has no QSFP28 ports defined", v.m.Spine.ID),
			map[string]any{"spine_id": v.m.Spine.ID})
	default:
		v.ok()
	}

	if v.m.Site != nil {
		occupied := make(map[domain.GridPos]string)
		for _, rack := range v.m.Site.Racks {
			if rack.Grid == nil {
				continue
			}
			if other, taken := occupied[*rack.Grid]; taken {
				v.add(domain.SeverityFail, domain.CodeCompletenessDuplicateGrid,
					fmt.Sprintf("racks %s and %s share grid position (%d,%d)", other, rack.ID, rack.Grid.X, rack.Grid.Y),
					map[string]any{"rack_ids": []string{other, rack.ID}, "x": rack.Grid.X, "y": rack.Grid.Y})
				continue
			}
			occupied[*rack.Grid] = rack.ID
		}
	}
}

func (v *validator) checkLengths() {
	if v.m.Site == nil {
		v.add(domain.SeverityInfo, domain.CodeSiteGeometryMissing,
			"geometry-based length checks skipped (no site manifest)", nil)
		return
	}

	intent := BuildIntent(v.m, v.pol)
	for _, inf := range intent.Infeasible {
		endpoint := inf.RackID
		if inf.NodeID != "" {
			endpoint = inf.NodeID
		}
		v.add(domain.SeverityFail, domain.CodeLengthExceedsMaxBin,
			fmt.Sprintf("%s link at %s requires %.1fm but exceeds maximum %s bin %dm",
				inf.Class, endpoint, inf.DistanceM, inf.CableType, inf.MaxBinM),
			map[string]any{
				"class":      inf.Class,
				"cable_type": inf.CableType,
				"distance_m": inf.DistanceM,
				"max_bin_m":  inf.MaxBinM,
				"rack_id":    inf.RackID,
				"node_id":    inf.NodeID,
			})
	}

	warnedRJ45 := false
	for _, link := range intent.Links {
		if link.CableType == domain.CableRJ45 && link.BinM > 100 && !warnedRJ45 {
			warnedRJ45 = true
			v.add(domain.SeverityWarn, domain.CodeRJ45BinGT100M,
				fmt.Sprintf("RJ45 links resolved to bin %dm over the 100m Cat6A reach (speed may downshift)", link.BinM),
				map[string]any{"bin_m": link.BinM})
		}
	}
	if len(intent.Infeasible) == 0 {
		v.ok()
	}
}

// edgeNICs counts a node's fabric-facing NICs, with the policy default
// standing in for empty declarations.
func (v *validator) edgeNICs(node domain.Node) int {
	if len(node.NICs) == 0 {
		return v.pol.Defaults.Nodes25GPerNode
	}
	return node.CountNICs(domain.NICTypeSFP28) + node.CountNICs(domain.NICTypeQSFP28)
}

func (v *validator) checkRedundancy() {
	red := v.pol.Redundancy

	if red.NodeDualHoming {
		for _, node := range v.m.Nodes {
			total := v.edgeNICs(node)
			switch {
			case total < 2:
				v.add(domain.SeverityFail, domain.CodeRedundancyDualHoming,
					fmt.Sprintf("node %s has %d edge NICs, dual homing requires at least 2", node.ID, total),
					map[string]any{"node_id": node.ID, "nic_count": total})
			case total%2 != 0:
				v.add(domain.SeverityWarn, domain.CodeRedundancyNICOdd,
					fmt.Sprintf("node %s has %d edge NICs, odd count under dual homing", node.ID, total),
					map[string]any{"node_id": node.ID, "nic_count": total})
			default:
				v.ok()
			}
		}

		// One ToR per rack means a single point of failure per rack.
		severity := domain.SeverityFail
		if red.AllowSingleTor {
			severity = domain.SeverityWarn
		}
		for _, rack := range v.m.Topology.Racks {
			v.add(severity, domain.CodeRedundancySingleTor,
				fmt.Sprintf("rack %s has a single ToR under dual homing", rack.RackID),
				map[string]any{"rack_id": rack.RackID, "allow_single_tor": red.AllowSingleTor})
		}
	}

	if red.TorUplinksMin > 0 {
		for _, rack := range v.m.Topology.Racks {
			uplinks := v.rackUplinks(rack)
			if uplinks < red.TorUplinksMin {
				shortfall := red.TorUplinksMin - uplinks
				v.add(domain.SeverityFail, domain.CodeRedundancyTorUplinks,
					fmt.Sprintf("rack %s has %d uplinks, minimum %d required (shortfall %d)",
						rack.RackID, uplinks, red.TorUplinksMin, shortfall),
					map[string]any{"rack_id": rack.RackID, "uplinks": uplinks, "minimum": red.TorUplinksMin, "shortfall": shortfall})
			} else {
				v.ok()
			}
		}
	}

	if red.LAGGroupSize > 1 {
		for _, rack := range v.m.Topology.Racks {
			uplinks := v.rackUplinks(rack)
			if uplinks%red.LAGGroupSize != 0 {
				v.add(domain.SeverityFail, domain.CodeRedundancyLAGSize,
					fmt.Sprintf("rack %s uplink count %d is not divisible by LAG group size %d",
						rack.RackID, uplinks, red.LAGGroupSize),
					map[string]any{"rack_id": rack.RackID, "uplinks": uplinks, "lag_group_size": red.LAGGroupSize})
			} else {
				v.ok()
			}
		}
	}

	if red.RequireLACP {
		for _, node := range v.m.Nodes {
			if v.edgeNICs(node) >= 2 && !node.LACP {
				v.add(domain.SeverityWarn, domain.CodeRedundancyLACPUndeclared,
					fmt.Sprintf("node %s has bonded-capable NICs but no lacp declaration", node.ID),
					map[string]any{"node_id": node.ID})
			} else {
				v.ok()
			}
		}
	}

	if red.MgmtDualHoming {
		for _, node := range v.m.Nodes {
			mgmt := node.CountNICs(domain.NICTypeRJ45)
			if len(node.NICs) == 0 {
				mgmt = v.pol.Defaults.MgmtRJ45PerNode
			}
			if mgmt < 2 {
				v.add(domain.SeverityFail, domain.CodeRedundancyMgmtDualHoming,
					fmt.Sprintf("node %s has %d mgmt NICs, mgmt dual homing requires at least 2", node.ID, mgmt),
					map[string]any{"node_id": node.ID, "mgmt_count": mgmt})
			} else {
				v.ok()
			}
		}
	}
}
