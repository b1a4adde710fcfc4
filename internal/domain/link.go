package domain

// LinkClass buckets a physical link by its role in the fabric.
type LinkClass string

const (
	ClassLeafNode  LinkClass = "leaf-node"
	ClassLeafSpine LinkClass = "leaf-spine"
	ClassMgmt      LinkClass = "mgmt"
	ClassWAN       LinkClass = "wan"
)

// classOrder fixes the presentation order of classes in serialized output.
var classOrder = map[LinkClass]int{
	ClassLeafNode:  0,
	ClassLeafSpine: 1,
	ClassMgmt:      2,
	ClassWAN:       3,
}

// ClassRank returns a stable sort rank for a link class. Unknown classes
// sort last, after the modeled ones.
func ClassRank(c LinkClass) int {
	if r, ok := classOrder[c]; ok {
		return r
	}
	return len(classOrder)
}

// Required reports whether the class is structurally required: an
// infeasible link in a required class aborts calculation, while optional
// classes degrade to a WARN.
func (c LinkClass) Required() bool {
	return c == ClassLeafNode || c == ClassLeafSpine
}

// CableType identifies the media family of a cable. The strings are part
// of the artifact contract.
type CableType string

const (
	CableSFP28  CableType = "sfp28_25g"
	CableQSFP28 CableType = "qsfp28_100g"
	CableRJ45   CableType = "rj45_cat6a"
)

// Media is the resolved physical medium for a link.
type Media string

const (
	MediaDAC     Media = "dac"     // direct-attach copper (Cat6A counts as copper here)
	MediaOptical Media = "optical" // AOC / fiber
)

// Link is a derived physical link. Links are never persisted: they are
// recomputed deterministically from manifests on every run, which is what
// lets two independently-derived link sets be compared at all.
type Link struct {
	Class     LinkClass `json:"class"`
	CableType CableType `json:"cable_type"`
	Media     Media     `json:"media"`
	BinM      int       `json:"length_bin_m"`
	DistanceM float64   `json:"distance_m"`
	RackID    string    `json:"rack_id,omitempty"`
	NodeID    string    `json:"node_id,omitempty"`
}

// InfeasibleLink records a link whose distance exceeds every configured
// length bin for its cable type.
type InfeasibleLink struct {
	Class     LinkClass `json:"class"`
	CableType CableType `json:"cable_type"`
	DistanceM float64   `json:"distance_m"`
	MaxBinM   int       `json:"max_bin_m"`
	RackID    string    `json:"rack_id,omitempty"`
	NodeID    string    `json:"node_id,omitempty"`
}
