package domain

// CrossSummary counts reconciliation findings per category.
type CrossSummary struct {
	Missing         int `yaml:"missing" json:"missing"`
	Phantom         int `yaml:"phantom" json:"phantom"`
	MismatchedMedia int `yaml:"mismatched_media" json:"mismatched_media"`
	MismatchedBin   int `yaml:"mismatched_bin" json:"mismatched_bin"`
	CountMismatch   int `yaml:"count_mismatch" json:"count_mismatch"`
}

// BucketCount is one bucket's quantity in mapping statistics. A slice keeps
// serialized output ordered; a map would not.
type BucketCount struct {
	Class      LinkClass `yaml:"class" json:"class"`
	CableType  CableType `yaml:"cable_type" json:"cable_type"`
	LengthBinM int       `yaml:"length_bin_m" json:"length_bin_m"`
	Quantity   int       `yaml:"quantity" json:"quantity"`
}

// MappingStats exposes the two bucketings that were reconciled.
type MappingStats struct {
	Intent []BucketCount `yaml:"intent" json:"intent"`
	BOM    []BucketCount `yaml:"bom" json:"bom"`
}

// CrossReport is the result of reconciling a materialized BOM against
// freshly-derived intent.
type CrossReport struct {
	Summary      CrossSummary `yaml:"summary" json:"summary"`
	Findings     []Finding    `yaml:"findings" json:"findings"`
	MappingStats MappingStats `yaml:"mapping_stats" json:"mapping_stats"`
}

// HasFail reports whether any finding is a FAIL.
func (r *CrossReport) HasFail() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityFail {
			return true
		}
	}
	return false
}

// ExitCode maps the reconciliation report to the shared exit-code contract.
func (r *CrossReport) ExitCode(strict bool) int {
	warns := 0
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityFail:
			return 1
		case SeverityWarn:
			warns++
		}
	}
	if strict && warns > 0 {
		return 2
	}
	return 0
}

// DeviceUsage aggregates BOM-implied terminations for one device.
type DeviceUsage struct {
	DeviceID string `yaml:"device_id" json:"device_id"`
	PortType string `yaml:"port_type" json:"port_type"`
	Used     int    `yaml:"used" json:"used"`
	Budget   int    `yaml:"budget" json:"budget"`
}

// RoundtripSummary counts roundtrip outcomes.
type RoundtripSummary struct {
	TotalLineItems int `yaml:"total_line_items" json:"total_line_items"`
	TotalCables    int `yaml:"total_cables" json:"total_cables"`
	Overallocated  int `yaml:"overallocated" json:"overallocated"`
	Warn           int `yaml:"warn" json:"warn"`
	Fail           int `yaml:"fail" json:"fail"`
}

// RoundtripReport reconciles BOM-implied port usage against device budgets.
type RoundtripReport struct {
	Summary  RoundtripSummary `yaml:"summary" json:"summary"`
	Usage    []DeviceUsage    `yaml:"usage" json:"usage"`
	Findings []Finding        `yaml:"findings" json:"findings"`
}

// ExitCode maps the roundtrip report to the shared exit-code contract.
func (r *RoundtripReport) ExitCode(strict bool) int {
	if r.Summary.Fail > 0 {
		return 1
	}
	if strict && r.Summary.Warn > 0 {
		return 2
	}
	return 0
}
