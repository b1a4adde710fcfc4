package domain

// NICType identifies the physical NIC flavor a node declares.
type NICType string

const (
	NICTypeSFP28  NICType = "SFP28"  // 25G edge
	NICTypeQSFP28 NICType = "QSFP28" // 100G (unsupported at nodes without breakout policy)
	NICTypeRJ45   NICType = "RJ45"   // management copper
)

// NIC is a declared NIC group on a node.
type NIC struct {
	Type  NICType `yaml:"type" json:"type"`
	Count int     `yaml:"count" json:"count"`
}

// Node is a compute node placed in a rack. An empty NIC list means
// policy-level defaults supply implied counts at resolution time; the
// record itself is never mutated.
type Node struct {
	ID     string `yaml:"id" json:"id"`
	RackID string `yaml:"rack_id" json:"rack_id"`
	NICs   []NIC  `yaml:"nics,omitempty" json:"nics,omitempty"`
	LACP   bool   `yaml:"lacp,omitempty" json:"lacp,omitempty"`
}

// CountNICs sums declared NIC counts of the given type.
func (n *Node) CountNICs(t NICType) int {
	total := 0
	for _, nic := range n.NICs {
		if nic.Type == t {
			total += nic.Count
		}
	}
	return total
}

// PortBudget is a switch's available port inventory.
type PortBudget struct {
	SFP28Total  int `yaml:"sfp28_total" json:"sfp28_total"`
	QSFP28Total int `yaml:"qsfp28_total" json:"qsfp28_total"`
}

// Tor is a top-of-rack leaf switch.
type Tor struct {
	ID     string     `yaml:"id" json:"id"`
	RackID string     `yaml:"rack_id" json:"rack_id"`
	Ports  PortBudget `yaml:"ports" json:"ports"`
}

// Spine is the aggregation switch interconnecting all ToRs. The model
// scopes exactly one spine per topology.
type Spine struct {
	ID    string     `yaml:"id" json:"id"`
	Ports PortBudget `yaml:"ports" json:"ports"`
}

// RackEntry pairs a rack with its ToR and declared spine uplink count.
// UplinksQSFP28 is a pointer so an omitted key and an explicit zero stay
// distinguishable: omission takes the policy default, zero means zero.
type RackEntry struct {
	RackID        string `yaml:"rack_id" json:"rack_id"`
	TorID         string `yaml:"tor_id" json:"tor_id"`
	UplinksQSFP28 *int   `yaml:"uplinks_qsfp28,omitempty" json:"uplinks_qsfp28,omitempty"`
}

// Uplinks resolves the spine uplink count, substituting def when the
// manifest omits the key.
func (r RackEntry) Uplinks(def int) int {
	if r.UplinksQSFP28 == nil {
		return def
	}
	return *r.UplinksQSFP28
}

// WAN declares RJ45 trunks from the spine to the WAN handoff.
type WAN struct {
	UplinksCat6A int `yaml:"uplinks_cat6a" json:"uplinks_cat6a"`
}

// Topology is the declared leaf/spine wiring plan.
type Topology struct {
	Racks []RackEntry `yaml:"racks" json:"racks"`
	WAN   *WAN        `yaml:"wan,omitempty" json:"wan,omitempty"`
}

// GridPos is a 2D integer grid coordinate on the site floor plan.
type GridPos struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// SiteRack places a rack on the floor grid.
type SiteRack struct {
	ID   string   `yaml:"id" json:"id"`
	Grid *GridPos `yaml:"grid,omitempty" json:"grid,omitempty"`
}

// SiteSpine locates the spine: either in a placed rack or nowhere
// (in which case distance estimates fall back to policy heuristics).
type SiteSpine struct {
	RackID string `yaml:"rack_id,omitempty" json:"rack_id,omitempty"`
}

// Site is the optional floor geometry. Absence degrades gracefully to
// heuristic fallback distances.
type Site struct {
	Racks []SiteRack `yaml:"racks" json:"racks"`
	Spine *SiteSpine `yaml:"spine,omitempty" json:"spine,omitempty"`
}

// RackGrid returns the grid position of a rack, if placed.
func (s *Site) RackGrid(rackID string) (GridPos, bool) {
	if s == nil {
		return GridPos{}, false
	}
	for _, r := range s.Racks {
		if r.ID == rackID && r.Grid != nil {
			return *r.Grid, true
		}
	}
	return GridPos{}, false
}

// SpineGrid returns the grid position of the spine's rack, if placed.
func (s *Site) SpineGrid() (GridPos, bool) {
	if s == nil || s.Spine == nil || s.Spine.RackID == "" {
		return GridPos{}, false
	}
	return s.RackGrid(s.Spine.RackID)
}

// Manifests bundles the fully-loaded declarative inputs. Engines take this
// snapshot by reference and never mutate it.
type Manifests struct {
	Topology *Topology      `json:"topology"`
	Tors     map[string]Tor `json:"tors"`
	Spine    *Spine         `json:"spine"`
	Nodes    []Node         `json:"nodes"`
	Site     *Site          `json:"site,omitempty"`
}

// NodesByRack groups nodes by rack identifier, preserving manifest order
// inside each group.
func (m *Manifests) NodesByRack() map[string][]Node {
	byRack := make(map[string][]Node)
	for _, n := range m.Nodes {
		byRack[n.RackID] = append(byRack[n.RackID], n)
	}
	return byRack
}
