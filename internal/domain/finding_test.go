package domain

import "testing"

func TestNewReport(t *testing.T) {
	t.Run("counts severities", func(t *testing.T) {
		findings := []Finding{
			{Severity: SeverityFail, Code: "A"},
			{Severity: SeverityWarn, Code: "B"},
			{Severity: SeverityWarn, Code: "C"},
			{Severity: SeverityInfo, Code: "D"},
		}
		r := NewReport(findings, 10)

		if r.Summary.Fail != 1 {
			t.Errorf("expected 1 fail, got %d", r.Summary.Fail)
		}
		if r.Summary.Warn != 2 {
			t.Errorf("expected 2 warn, got %d", r.Summary.Warn)
		}
		if r.Summary.Info != 1 {
			t.Errorf("expected 1 info, got %d", r.Summary.Info)
		}
		if r.Summary.Pass != 10 {
			t.Errorf("expected 10 pass, got %d", r.Summary.Pass)
		}
	})

	t.Run("clamps negative pass count", func(t *testing.T) {
		r := NewReport(nil, -3)
		if r.Summary.Pass != 0 {
			t.Errorf("expected 0 pass, got %d", r.Summary.Pass)
		}
	})
}

func TestReportExitCode(t *testing.T) {
	tests := []struct {
		name   string
		fail   int
		warn   int
		strict bool
		want   int
	}{
		{"clean", 0, 0, false, 0},
		{"clean strict", 0, 0, true, 0},
		{"warn lenient", 0, 2, false, 0},
		{"warn strict", 0, 2, true, 2},
		{"fail", 1, 0, false, 1},
		{"fail beats strict warn", 1, 2, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Summary: Summary{Fail: tt.fail, Warn: tt.warn}}
			if got := r.ExitCode(tt.strict); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.strict, got, tt.want)
			}
		})
	}
}

func TestCrossReportExitCode(t *testing.T) {
	t.Run("fail wins", func(t *testing.T) {
		r := &CrossReport{Findings: []Finding{
			{Severity: SeverityWarn},
			{Severity: SeverityFail},
		}}
		if got := r.ExitCode(true); got != 1 {
			t.Errorf("expected 1, got %d", got)
		}
	})

	t.Run("warn only under strict", func(t *testing.T) {
		r := &CrossReport{Findings: []Finding{{Severity: SeverityWarn}}}
		if got := r.ExitCode(false); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
		if got := r.ExitCode(true); got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})
}
