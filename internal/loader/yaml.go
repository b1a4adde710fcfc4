// Package loader reads the declarative manifests: topology, ToR/spine
// inventory, nodes, and optional site geometry. Each file is decoded into
// a YAML-shaped struct and converted to the domain model, so wire-format
// quirks stay out of the engines.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"rackwire/internal/domain"
)

// ManifestPaths names the input files for one run. Site may be empty or
// point at a missing file; geometry is optional.
type ManifestPaths struct {
	Topology string
	Tors     string
	Nodes    string
	Site     string
}

// DefaultManifestPaths returns the conventional layout under dir.
func DefaultManifestPaths(dir string) ManifestPaths {
	join := func(name string) string {
		if dir == "" {
			return name
		}
		return dir + "/" + name
	}
	return ManifestPaths{
		Topology: join("topology.yaml"),
		Tors:     join("tors.yaml"),
		Nodes:    join("nodes.yaml"),
		Site:     join("site.yaml"),
	}
}

// TopologyYAML is the topology.yaml file structure.
type TopologyYAML struct {
	Racks []TopologyRackYAML `yaml:"racks"`
	WAN   *TopologyWANYAML   `yaml:"wan,omitempty"`
}

// TopologyRackYAML pairs a rack with its ToR and uplink count. The
// uplink count is a pointer so an absent key is not read as zero.
type TopologyRackYAML struct {
	RackID        string `yaml:"rack_id"`
	TorID         string `yaml:"tor_id"`
	UplinksQSFP28 *int   `yaml:"uplinks_qsfp28"`
}

// TopologyWANYAML declares WAN handoff trunks.
type TopologyWANYAML struct {
	UplinksCat6A int `yaml:"uplinks_cat6a"`
}

// TorsYAML is the tors.yaml file structure: the ToR list plus the optional
// spine inventory.
type TorsYAML struct {
	Tors  []TorYAML  `yaml:"tors"`
	Spine *SpineYAML `yaml:"spine,omitempty"`
}

// TorYAML is one top-of-rack switch record.
type TorYAML struct {
	ID     string    `yaml:"id"`
	RackID string    `yaml:"rack_id"`
	Model  string    `yaml:"model,omitempty"`
	Ports  PortsYAML `yaml:"ports"`
}

// SpineYAML is the spine switch record.
type SpineYAML struct {
	ID    string    `yaml:"id"`
	Model string    `yaml:"model,omitempty"`
	Ports PortsYAML `yaml:"ports"`
}

// PortsYAML is a switch port inventory.
type PortsYAML struct {
	SFP28Total  int `yaml:"sfp28_total"`
	QSFP28Total int `yaml:"qsfp28_total"`
}

// NodeYAML is one node record. nodes.yaml is a bare list of these.
type NodeYAML struct {
	ID       string    `yaml:"id"`
	RackID   string    `yaml:"rack_id"`
	Hostname string    `yaml:"hostname,omitempty"`
	NICs     []NICYAML `yaml:"nics,omitempty"`
	LACP     bool      `yaml:"lacp,omitempty"`
}

// NICYAML is a declared NIC group.
type NICYAML struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// SiteYAML is the optional site.yaml file structure.
type SiteYAML struct {
	Racks []SiteRackYAML `yaml:"racks"`
	Spine *SiteSpineYAML `yaml:"spine,omitempty"`
}

// SiteRackYAML places one rack on the floor grid.
type SiteRackYAML struct {
	ID   string    `yaml:"id"`
	Grid *GridYAML `yaml:"grid,omitempty"`
}

// SiteSpineYAML locates the spine in a placed rack.
type SiteSpineYAML struct {
	RackID string `yaml:"rack_id,omitempty"`
}

// GridYAML accepts both grid spellings found in site manifests: a [x, y]
// sequence and an "x,y" string.
type GridYAML struct {
	X int
	Y int
}

func (g *GridYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("grid must be two integers: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("grid must be two integers, got %d", len(pair))
		}
		g.X, g.Y = pair[0], pair[1]
		return nil
	case yaml.ScalarNode:
		parts := strings.Split(value.Value, ",")
		if len(parts) != 2 {
			return fmt.Errorf("grid must be %q, got %q", "x,y", value.Value)
		}
		x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("grid x: %w", err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("grid y: %w", err)
		}
		g.X, g.Y = x, y
		return nil
	}
	return fmt.Errorf("grid must be [x, y] or %q", "x,y")
}

// LoadManifests loads all manifests for one run. A missing site file is
// not an error; every other file is required.
func LoadManifests(paths ManifestPaths) (*domain.Manifests, error) {
	topo, err := LoadTopology(paths.Topology)
	if err != nil {
		return nil, err
	}
	tors, spine, err := LoadTors(paths.Tors)
	if err != nil {
		return nil, err
	}
	nodes, err := LoadNodes(paths.Nodes)
	if err != nil {
		return nil, err
	}
	site, err := LoadSite(paths.Site)
	if err != nil {
		return nil, err
	}

	return &domain.Manifests{
		Topology: topo,
		Tors:     tors,
		Spine:    spine,
		Nodes:    nodes,
		Site:     site,
	}, nil
}

// LoadTopology loads the rack/uplink wiring plan.
func LoadTopology(path string) (*domain.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return ParseTopology(data)
}

// ParseTopology parses topology YAML bytes.
func ParseTopology(data []byte) (*domain.Topology, error) {
	var y TopologyYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if len(y.Racks) == 0 {
		return nil, fmt.Errorf("parse topology: no racks declared")
	}

	topo := &domain.Topology{}
	for i, r := range y.Racks {
		if r.RackID == "" {
			return nil, fmt.Errorf("parse topology: racks[%d] missing rack_id", i)
		}
		if r.TorID == "" {
			return nil, fmt.Errorf("parse topology: rack %q missing tor_id", r.RackID)
		}
		topo.Racks = append(topo.Racks, domain.RackEntry{
			RackID:        r.RackID,
			TorID:         r.TorID,
			UplinksQSFP28: r.UplinksQSFP28,
		})
	}
	if y.WAN != nil {
		topo.WAN = &domain.WAN{UplinksCat6A: y.WAN.UplinksCat6A}
	}
	return topo, nil
}

// LoadTors loads the ToR inventory and the optional spine record.
func LoadTors(path string) (map[string]domain.Tor, *domain.Spine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read tors: %w", err)
	}
	return ParseTors(data)
}

// ParseTors parses tors YAML bytes.
func ParseTors(data []byte) (map[string]domain.Tor, *domain.Spine, error) {
	var y TorsYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, nil, fmt.Errorf("parse tors: %w", err)
	}

	tors := make(map[string]domain.Tor, len(y.Tors))
	for i, t := range y.Tors {
		if t.ID == "" {
			return nil, nil, fmt.Errorf("parse tors: tors[%d] missing id", i)
		}
		if _, dup := tors[t.ID]; dup {
			return nil, nil, fmt.Errorf("parse tors: duplicate tor id %q", t.ID)
		}
		tors[t.ID] = domain.Tor{
			ID:     t.ID,
			RackID: t.RackID,
			Ports: domain.PortBudget{
				SFP28Total:  t.Ports.SFP28Total,
				QSFP28Total: t.Ports.QSFP28Total,
			},
		}
	}

	var spine *domain.Spine
	if y.Spine != nil {
		if y.Spine.ID == "" {
			return nil, nil, fmt.Errorf("parse tors: spine missing id")
		}
		spine = &domain.Spine{
			ID: y.Spine.ID,
			Ports: domain.PortBudget{
				SFP28Total:  y.Spine.Ports.SFP28Total,
				QSFP28Total: y.Spine.Ports.QSFP28Total,
			},
		}
	}
	return tors, spine, nil
}

// LoadNodes loads the node list.
func LoadNodes(path string) ([]domain.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	return ParseNodes(data)
}

// ParseNodes parses nodes YAML bytes. The file is a bare list.
func ParseNodes(data []byte) ([]domain.Node, error) {
	var y []NodeYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parse nodes: %w", err)
	}

	seen := make(map[string]bool, len(y))
	nodes := make([]domain.Node, 0, len(y))
	for i, n := range y {
		if n.ID == "" {
			return nil, fmt.Errorf("parse nodes: nodes[%d] missing id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("parse nodes: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if n.RackID == "" {
			return nil, fmt.Errorf("parse nodes: node %q missing rack_id", n.ID)
		}

		node := domain.Node{ID: n.ID, RackID: n.RackID, LACP: n.LACP}
		for j, nic := range n.NICs {
			count := nic.Count
			if count == 0 {
				count = 1
			}
			if count < 0 {
				return nil, fmt.Errorf("parse nodes: node %q nics[%d] negative count", n.ID, j)
			}
			node.NICs = append(node.NICs, domain.NIC{
				Type:  domain.NICType(nic.Type),
				Count: count,
			})
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// LoadSite loads the optional site geometry. An empty path or a missing
// file yields a nil site, which engines treat as heuristic-only mode.
func LoadSite(path string) (*domain.Site, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read site: %w", err)
	}
	return ParseSite(data)
}

// ParseSite parses site YAML bytes.
func ParseSite(data []byte) (*domain.Site, error) {
	var y SiteYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parse site: %w", err)
	}

	site := &domain.Site{}
	for i, r := range y.Racks {
		if r.ID == "" {
			return nil, fmt.Errorf("parse site: racks[%d] missing id", i)
		}
		sr := domain.SiteRack{ID: r.ID}
		if r.Grid != nil {
			sr.Grid = &domain.GridPos{X: r.Grid.X, Y: r.Grid.Y}
		}
		site.Racks = append(site.Racks, sr)
	}
	if y.Spine != nil {
		site.Spine = &domain.SiteSpine{RackID: y.Spine.RackID}
	}
	return site, nil
}
