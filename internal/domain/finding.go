package domain

// Severity classifies a finding.
type Severity string

const (
	SeverityFail Severity = "FAIL" // rule violated, plan is not buildable as declared
	SeverityWarn Severity = "WARN" // buildable but outside comfortable margins
	SeverityInfo Severity = "INFO" // advisory, no action required
)

// Finding is a single validation or reconciliation result. Findings are
// immutable value objects: engines collect them into a Report and never
// raise them as errors, so a caller always receives the full picture.
type Finding struct {
	Severity Severity       `yaml:"severity" json:"severity"`
	Code     string         `yaml:"code" json:"code"`
	Message  string         `yaml:"message" json:"message"`
	Context  map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
}

// Summary carries per-severity finding counts.
type Summary struct {
	Pass int `yaml:"pass" json:"pass"`
	Warn int `yaml:"warn" json:"warn"`
	Fail int `yaml:"fail" json:"fail"`
	Info int `yaml:"info" json:"info"`
}

// Report is the result of a validation run.
type Report struct {
	Summary  Summary   `yaml:"summary" json:"summary"`
	Findings []Finding `yaml:"findings" json:"findings"`

	// PolicyTrusted is false when policy sanity checks produced a FAIL.
	// Downstream findings are still reported but must not be treated as
	// authoritative until the policy itself is fixed.
	PolicyTrusted bool `yaml:"policy_trusted" json:"policy_trusted"`
}

// NewReport assembles a report from findings, counting severities and
// crediting passChecks silent successes to the pass column.
func NewReport(findings []Finding, passChecks int) *Report {
	r := &Report{Findings: findings, PolicyTrusted: true}
	for _, f := range findings {
		switch f.Severity {
		case SeverityFail:
			r.Summary.Fail++
		case SeverityWarn:
			r.Summary.Warn++
		case SeverityInfo:
			r.Summary.Info++
		}
	}
	r.Summary.Pass = passChecks
	if r.Summary.Pass < 0 {
		r.Summary.Pass = 0
	}
	return r
}

// HasFail reports whether any finding is a FAIL.
func (r *Report) HasFail() bool { return r.Summary.Fail > 0 }

// ExitCode maps a report to the process exit-code contract:
// 0 = no FAIL, 1 = any FAIL, 2 = WARN-only when strict mode is requested.
func (r *Report) ExitCode(strict bool) int {
	if r.Summary.Fail > 0 {
		return 1
	}
	if strict && r.Summary.Warn > 0 {
		return 2
	}
	return 0
}
