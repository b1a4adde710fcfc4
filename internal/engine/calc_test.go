package engine

import (
	"strings"
	"testing"

	"rackwire/internal/config"
	"rackwire/internal/domain"
)

// twoRackManifests builds the reference scenario: two racks, one ToR each
// (48×SFP28, 8×QSFP28), 2 uplinks per rack to a 32-port spine, 4 nodes
// per rack with a single SFP28 NIC, spine located in rack-1, rack-2 two
// tiles away.
func uplinkCount(n int) *int { return &n }

func twoRackManifests() *domain.Manifests {
	nodes := []domain.Node{}
	for _, rack := range []string{"rack-1", "rack-2"} {
		for i := 0; i < 4; i++ {
			nodes = append(nodes, domain.Node{
				ID:     rack + "-node-" + string(rune('a'+i)),
				RackID: rack,
				NICs:   []domain.NIC{{Type: domain.NICTypeSFP28, Count: 1}},
			})
		}
	}
	return &domain.Manifests{
		Topology: &domain.Topology{
			Racks: []domain.RackEntry{
				{RackID: "rack-1", TorID: "tor-1", UplinksQSFP28: uplinkCount(2)},
				{RackID: "rack-2", TorID: "tor-2", UplinksQSFP28: uplinkCount(2)},
			},
		},
		Tors: map[string]domain.Tor{
			"tor-1": {ID: "tor-1", RackID: "rack-1", Ports: domain.PortBudget{SFP28Total: 48, QSFP28Total: 8}},
			"tor-2": {ID: "tor-2", RackID: "rack-2", Ports: domain.PortBudget{SFP28Total: 48, QSFP28Total: 8}},
		},
		Spine: &domain.Spine{ID: "spine-1", Ports: domain.PortBudget{QSFP28Total: 32}},
		Nodes: nodes,
		Site: &domain.Site{
			Racks: []domain.SiteRack{
				{ID: "rack-1", Grid: &domain.GridPos{X: 0, Y: 0}},
				{ID: "rack-2", Grid: &domain.GridPos{X: 2, Y: 0}},
			},
			Spine: &domain.SiteSpine{RackID: "rack-1"},
		},
	}
}

func twoRackPolicy() *config.Policy {
	pol := config.DefaultPolicy()
	dac := 7.0
	for _, ct := range []domain.CableType{domain.CableSFP28, domain.CableQSFP28} {
		pol.MediaRules[string(ct)] = config.MediaRule{DACMaxM: &dac, BinsM: []int{1, 2, 3, 5, 7, 10}}
	}
	pol.Defaults.SparesFraction = 0.1
	return pol
}

func TestWithSpares(t *testing.T) {
	tests := []struct {
		count int
		sf    float64
		want  int
	}{
		{16, 0.1, 18}, // ceil(17.6), not 17
		{8, 0.1, 9},
		{2, 0.1, 3},
		{10, 0.0, 10},
		{0, 0.1, 0},
		{1, 1.0, 2},
	}
	for _, tt := range tests {
		if got := WithSpares(tt.count, tt.sf); got != tt.want {
			t.Errorf("WithSpares(%d, %v) = %d, want %d", tt.count, tt.sf, got, tt.want)
		}
	}
}

func TestCoreFromQuantity(t *testing.T) {
	t.Run("exact inverse", func(t *testing.T) {
		core, exact := CoreFromQuantity(18, 0.1)
		if !exact || core != 16 {
			t.Errorf("CoreFromQuantity(18, 0.1) = %d exact=%v, want 16 true", core, exact)
		}
	})

	t.Run("no preimage flagged", func(t *testing.T) {
		// ceil(c×1.1) skips 17: 15→17? ceil(16.5)=17. So 17 has a
		// preimage; 21 does not (18→20, 19→21? ceil(20.9)=21). Use a
		// fraction where a gap provably exists: sf=1.0 doubles, so odd
		// quantities are unreachable.
		core, exact := CoreFromQuantity(5, 1.0)
		if exact {
			t.Errorf("expected no exact preimage for 5 at sf=1.0, got core=%d", core)
		}
		if core != 2 {
			t.Errorf("best-effort core = %d, want 2", core)
		}
	})

	t.Run("roundtrips every inflation", func(t *testing.T) {
		for c := 0; c <= 200; c++ {
			q := WithSpares(c, 0.1)
			core, exact := CoreFromQuantity(q, 0.1)
			if !exact || core != c {
				t.Fatalf("inverse of WithSpares(%d) = %d exact=%v", c, core, exact)
			}
		}
	})

	t.Run("zero spares passthrough", func(t *testing.T) {
		core, exact := CoreFromQuantity(7, 0)
		if !exact || core != 7 {
			t.Errorf("CoreFromQuantity(7, 0) = %d exact=%v, want 7 true", core, exact)
		}
	})
}

func TestCalculate(t *testing.T) {
	t.Run("reference scenario", func(t *testing.T) {
		bom, findings, err := Calculate(twoRackManifests(), twoRackPolicy(), nil)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		for _, f := range findings {
			if f.Severity == domain.SeverityFail {
				t.Errorf("unexpected FAIL finding: %s %s", f.Code, f.Message)
			}
		}

		// 8 nodes × 1 SFP28, same-rack distance 2.0×1.2=2.4 → bin 3.
		want := map[domain.BucketKey]int{
			{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3}: 9,
			// rack-1 is the spine rack: distance 0 → bin 1; rack-2 is
			// two tiles out: 2×1.2=2.4 → bin 3. ceil(2×1.1)=3 each.
			{Class: domain.ClassLeafSpine, CableType: domain.CableQSFP28, LengthBinM: 1}: 3,
			{Class: domain.ClassLeafSpine, CableType: domain.CableQSFP28, LengthBinM: 3}: 3,
		}
		got := bom.Buckets()
		if len(got) != len(want) {
			t.Fatalf("buckets = %v, want %v", got, want)
		}
		for key, qty := range want {
			if got[key] != qty {
				t.Errorf("bucket %+v = %d, want %d", key, got[key], qty)
			}
		}

		if bom.Meta.SparesFraction != 0.1 {
			t.Errorf("meta spares_fraction = %v, want 0.1", bom.Meta.SparesFraction)
		}
		if len(bom.Meta.Bins[domain.CableSFP28]) == 0 {
			t.Error("meta missing bin table")
		}
	})

	t.Run("engine defaults stay feasible without geometry", func(t *testing.T) {
		m := twoRackManifests()
		m.Site = nil

		bom, findings, err := Calculate(m, config.DefaultPolicy(), nil)
		if err != nil {
			t.Fatalf("Calculate with pure defaults: %v", err)
		}
		fallbacks := 0
		for _, f := range findings {
			if f.Code == domain.CodeGeometryFallback {
				fallbacks++
			}
		}
		if fallbacks != 2 {
			t.Errorf("expected 2 GEOMETRY_FALLBACK findings, got %d", fallbacks)
		}

		// Heuristic leaf-spine distance 10×1.2=12 lands in the 30m bin.
		got := bom.Buckets()
		want := map[domain.BucketKey]int{
			{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3}:    9,
			{Class: domain.ClassLeafSpine, CableType: domain.CableQSFP28, LengthBinM: 30}: 5,
		}
		if len(got) != len(want) {
			t.Fatalf("buckets = %v, want %v", got, want)
		}
		for key, qty := range want {
			if got[key] != qty {
				t.Errorf("bucket %+v = %d, want %d", key, got[key], qty)
			}
		}
	})

	t.Run("deterministic item order", func(t *testing.T) {
		first, _, err := Calculate(twoRackManifests(), twoRackPolicy(), nil)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 5; i++ {
			again, _, err := Calculate(twoRackManifests(), twoRackPolicy(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(again.Items) != len(first.Items) {
				t.Fatalf("item count changed between runs")
			}
			for j := range first.Items {
				if first.Items[j] != again.Items[j] {
					t.Fatalf("item %d differs between runs: %+v vs %+v", j, first.Items[j], again.Items[j])
				}
			}
		}
	})

	t.Run("spares override", func(t *testing.T) {
		zero := 0.0
		bom, _, err := Calculate(twoRackManifests(), twoRackPolicy(), &zero)
		if err != nil {
			t.Fatal(err)
		}
		got := bom.Buckets()
		key := domain.BucketKey{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3}
		if got[key] != 8 {
			t.Errorf("zero-spares leaf-node quantity = %d, want 8", got[key])
		}
	})

	t.Run("infeasible required class is fatal", func(t *testing.T) {
		m := twoRackManifests()
		m.Site.Racks[1].Grid = &domain.GridPos{X: 50, Y: 0}

		_, _, err := Calculate(m, twoRackPolicy(), nil)
		if err == nil {
			t.Fatal("expected fatal error for infeasible leaf-spine link")
		}
		if !strings.Contains(err.Error(), "rack-2") {
			t.Errorf("error should name the offending endpoint, got: %v", err)
		}
	})

	t.Run("infeasible optional class drops with warn", func(t *testing.T) {
		m := twoRackManifests()
		m.Topology.WAN = &domain.WAN{UplinksCat6A: 2}
		pol := twoRackPolicy()
		// WAN distance 30×1.2=36 exceeds the largest RJ45 bin.
		pol.MediaRules[string(domain.CableRJ45)] = config.MediaRule{BinsM: []int{1, 2, 3, 5, 7, 10}}

		bom, findings, err := Calculate(m, pol, nil)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		found := false
		for _, f := range findings {
			if f.Code == domain.CodeCalcInfeasibleDropped && f.Severity == domain.SeverityWarn {
				found = true
			}
		}
		if !found {
			t.Error("expected CALC_INFEASIBLE_DROPPED warning")
		}
		for key := range bom.Buckets() {
			if key.Class == domain.ClassWAN {
				t.Error("infeasible wan links must not appear in the BOM")
			}
		}
	})
}

func TestBuildIntent(t *testing.T) {
	t.Run("geometry fallback emits info", func(t *testing.T) {
		m := twoRackManifests()
		m.Site = nil
		pol := twoRackPolicy()
		// Keep the heuristic distance inside the bin table.
		pol.Heuristics.AdjacentRackLeafToSpineM = 5.0

		intent := BuildIntent(m, pol)
		fallbacks := 0
		for _, f := range intent.Findings {
			if f.Code == domain.CodeGeometryFallback && f.Severity == domain.SeverityInfo {
				fallbacks++
			}
		}
		if fallbacks != 2 {
			t.Errorf("expected 2 GEOMETRY_FALLBACK findings, got %d", fallbacks)
		}
	})

	t.Run("explicit zero uplinks stays zero", func(t *testing.T) {
		m := twoRackManifests()
		m.Topology.Racks[0].UplinksQSFP28 = uplinkCount(0)
		m.Topology.Racks[1].UplinksQSFP28 = nil

		intent := BuildIntent(m, twoRackPolicy())
		perRack := map[string]int{}
		for _, l := range intent.Links {
			if l.Class == domain.ClassLeafSpine {
				perRack[l.RackID]++
			}
		}
		if perRack["rack-1"] != 0 {
			t.Errorf("rack-1 declared zero uplinks but got %d leaf-spine links", perRack["rack-1"])
		}
		if perRack["rack-2"] != 2 {
			t.Errorf("rack-2 omitted uplinks, want policy default 2, got %d", perRack["rack-2"])
		}

		// Validation reads the same resolution: rack-1 has edge NICs and
		// no uplinks, rack-2 is covered by the default.
		report := Validate(m, twoRackPolicy())
		found := findingsByCode(report.Findings, domain.CodeOversubNoUplinks)
		if len(found) != 1 || found[0].Context["rack_id"] != "rack-1" {
			t.Fatalf("expected one OVERSUB_NO_UPLINKS for rack-1, got %v", found)
		}
	})

	t.Run("empty nic list uses policy defaults", func(t *testing.T) {
		m := twoRackManifests()
		m.Nodes = []domain.Node{{ID: "bare-node", RackID: "rack-1"}}
		pol := twoRackPolicy()
		pol.Defaults.Nodes25GPerNode = 2
		pol.Defaults.MgmtRJ45PerNode = 1

		intent := BuildIntent(m, pol)
		leafNode, mgmt := 0, 0
		for _, l := range intent.Links {
			switch l.Class {
			case domain.ClassLeafNode:
				leafNode++
			case domain.ClassMgmt:
				mgmt++
			}
		}
		if leafNode != 2 {
			t.Errorf("leaf-node links = %d, want 2 (policy default)", leafNode)
		}
		if mgmt != 1 {
			t.Errorf("mgmt links = %d, want 1 (policy default)", mgmt)
		}
	})

	t.Run("declared nics suppress defaults", func(t *testing.T) {
		intent := BuildIntent(twoRackManifests(), twoRackPolicy())
		for _, l := range intent.Links {
			if l.Class == domain.ClassMgmt {
				t.Fatal("nodes with explicit NICs and no RJ45 must not get mgmt links")
			}
		}
	})

	t.Run("wan links derive from topology", func(t *testing.T) {
		m := twoRackManifests()
		m.Topology.WAN = &domain.WAN{UplinksCat6A: 2}
		pol := twoRackPolicy()
		pol.Heuristics.WANToSpineM = 5.0

		intent := BuildIntent(m, pol)
		wan := 0
		for _, l := range intent.Links {
			if l.Class == domain.ClassWAN {
				wan++
				if l.CableType != domain.CableRJ45 {
					t.Errorf("wan cable type = %s, want rj45", l.CableType)
				}
			}
		}
		if wan != 2 {
			t.Errorf("wan links = %d, want 2", wan)
		}
	})
}

func TestEstimate(t *testing.T) {
	pol := config.DefaultPolicy()
	pol.SiteDefaults = &config.SiteDefaults{
		NumRacks:        2,
		NodesPerRack:    4,
		UplinksPerRack:  2,
		MgmtRJ45PerNode: 1,
		WANCat6A:        2,
	}
	pol.Defaults.SparesFraction = 0.1

	res := Estimate(pol, nil)
	byClass := make(map[domain.LinkClass]EstimateLine)
	for _, line := range res.Lines {
		byClass[line.Class] = line
	}

	if got := byClass[domain.ClassLeafNode]; got.Count != 8 || got.WithSpares != 9 {
		t.Errorf("leaf-node = %+v, want count 8 spares 9", got)
	}
	if got := byClass[domain.ClassLeafSpine]; got.Count != 4 || got.WithSpares != 5 {
		t.Errorf("leaf-spine = %+v, want count 4 spares 5", got)
	}
	if got := byClass[domain.ClassMgmt]; got.Count != 8 {
		t.Errorf("mgmt count = %d, want 8", got.Count)
	}
	if got := byClass[domain.ClassWAN]; got.Count != 2 {
		t.Errorf("wan count = %d, want 2", got.Count)
	}
}
