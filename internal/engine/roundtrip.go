package engine

import (
	"fmt"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// Roundtrip reconciles BOM-implied cable terminations against device
// port budgets. Every cable terminates twice; the class decides which
// pools absorb the terminations. Spares are stock, not installed cable,
// so usage is computed from normalized core counts. The policy supplies
// the implied NIC budget for nodes that declare none, matching what the
// calculation cabled for them.
func Roundtrip(bom *domain.BOM, m *domain.Manifests, pol *config.Policy) *domain.RoundtripReport {
	report := &domain.RoundtripReport{}
	sf := bom.Meta.SparesFraction

	var (
		torSFP28    int
		torQSFP28   int
		spineQSFP28 int
		nodeSFP28   int
		rj45        int
	)
	warnedClasses := make(map[domain.LinkClass]bool)

	for _, item := range bom.Items {
		report.Summary.TotalLineItems++
		report.Summary.TotalCables += item.Quantity

		core, exact := CoreFromQuantity(item.Quantity, sf)
		if !exact {
			report.Summary.Warn++
			report.Findings = append(report.Findings, domain.Finding{
				Severity: domain.SeverityWarn,
				Code:     domain.CodeRoundtripSparesRounding,
				Message: fmt.Sprintf("%s %s @ %dm: quantity %d is not ceil(core × %.2f) for any core count, using %d",
					item.Class, item.CableType, item.LengthBinM, item.Quantity, 1.0+sf, core),
				Context: map[string]any{
					"class":           item.Class,
					"cable_type":      item.CableType,
					"length_bin_m":    item.LengthBinM,
					"quantity":        item.Quantity,
					"spares_fraction": sf,
					"core_estimate":   core,
				},
			})
		}

		switch item.Class {
		case domain.ClassLeafNode:
			nodeSFP28 += core
			torSFP28 += core
		case domain.ClassLeafSpine:
			torQSFP28 += core
			spineQSFP28 += core
		case domain.ClassMgmt, domain.ClassWAN:
			rj45 += core
		default:
			if !warnedClasses[item.Class] {
				warnedClasses[item.Class] = true
				report.Summary.Warn++
				report.Findings = append(report.Findings, domain.Finding{
					Severity: domain.SeverityWarn,
					Code:     domain.CodeRoundtripUnmappedClass,
					Message:  fmt.Sprintf("class %q has no termination mapping, ports not accounted", item.Class),
					Context:  map[string]any{"class": item.Class},
				})
			}
		}
	}

	// Budgets: ToRs and nodes are pooled because bucketed line items
	// carry no per-device attribution; the spine is a single device.
	torSFP28Budget, torQSFP28Budget := 0, 0
	for _, tor := range m.Tors {
		torSFP28Budget += tor.Ports.SFP28Total
		torQSFP28Budget += tor.Ports.QSFP28Total
	}
	nodeSFP28Budget := 0
	for _, node := range m.Nodes {
		if len(node.NICs) == 0 {
			nodeSFP28Budget += pol.Defaults.Nodes25GPerNode
			continue
		}
		nodeSFP28Budget += node.CountNICs(domain.NICTypeSFP28)
	}

	report.Usage = append(report.Usage,
		domain.DeviceUsage{DeviceID: "tors", PortType: "sfp28", Used: torSFP28, Budget: torSFP28Budget},
		domain.DeviceUsage{DeviceID: "tors", PortType: "qsfp28", Used: torQSFP28, Budget: torQSFP28Budget},
	)
	if m.Spine != nil {
		report.Usage = append(report.Usage, domain.DeviceUsage{
			DeviceID: m.Spine.ID, PortType: "qsfp28", Used: spineQSFP28, Budget: m.Spine.Ports.QSFP28Total,
		})
	}
	if nodeSFP28Budget > 0 {
		report.Usage = append(report.Usage, domain.DeviceUsage{
			DeviceID: "nodes", PortType: "sfp28", Used: nodeSFP28, Budget: nodeSFP28Budget,
		})
	}

	for _, u := range report.Usage {
		if u.Used > u.Budget {
			report.Summary.Overallocated++
			report.Summary.Fail++
			report.Findings = append(report.Findings, domain.Finding{
				Severity: domain.SeverityFail,
				Code:     domain.CodeRoundtripPortOveralloc,
				Message: fmt.Sprintf("%s %s terminations %d exceed budget %d",
					u.DeviceID, u.PortType, u.Used, u.Budget),
				Context: map[string]any{
					"device_id": u.DeviceID,
					"port_type": u.PortType,
					"used":      u.Used,
					"budget":    u.Budget,
				},
			})
		}
	}

	if rj45 > 0 {
		report.Findings = append(report.Findings, domain.Finding{
			Severity: domain.SeverityInfo,
			Code:     domain.CodeMgmtRJ45Unvalidated,
			Message:  fmt.Sprintf("%d RJ45 terminations not reconciled (no mgmt switch inventory)", rj45),
			Context:  map[string]any{"rj45_terminations": rj45},
		})
	}

	return report
}
