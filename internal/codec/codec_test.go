package codec

import (
	"bytes"
	"strings"
	"testing"

	"rackwire/internal/domain"
)

func sampleBOM() *domain.BOM {
	return &domain.BOM{
		Meta: domain.BOMMeta{
			GeneratedBy:    "rackwire calculate",
			SparesFraction: 0.1,
			Bins: map[domain.CableType][]int{
				domain.CableSFP28:  {1, 2, 3, 5, 7, 10},
				domain.CableQSFP28: {1, 2, 3, 5, 7, 10},
			},
		},
		Items: []domain.BOMItem{
			{Class: domain.ClassLeafSpine, CableType: domain.CableQSFP28, LengthBinM: 3, Quantity: 3},
			{Class: domain.ClassLeafNode, CableType: domain.CableSFP28, LengthBinM: 3, Quantity: 9},
			{Class: domain.ClassLeafSpine, CableType: domain.CableQSFP28, LengthBinM: 1, Quantity: 3},
		},
	}
}

func TestYAMLRoundtrip(t *testing.T) {
	c := NewYAMLCodec()
	var buf bytes.Buffer
	if err := c.Export(sampleBOM(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	parsed, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(parsed.Items))
	}
	if parsed.Meta.SparesFraction != 0.1 {
		t.Errorf("meta spares_fraction = %v, want 0.1", parsed.Meta.SparesFraction)
	}
	// Export sorts, so the first item must be the leaf-node bucket.
	if parsed.Items[0].Class != domain.ClassLeafNode {
		t.Errorf("first item class = %s, want leaf-node", parsed.Items[0].Class)
	}
}

func TestYAMLDeterministic(t *testing.T) {
	c := NewYAMLCodec()
	var first bytes.Buffer
	if err := c.Export(sampleBOM(), &first); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		var again bytes.Buffer
		if err := c.Export(sampleBOM(), &again); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Bytes(), again.Bytes()) {
			t.Fatal("yaml export is not byte-identical across runs")
		}
	}
}

func TestYAMLParseRejectsEmpty(t *testing.T) {
	if _, err := NewYAMLCodec().Parse(strings.NewReader("meta:\n  spares_fraction: 0.1\nitems: []\n")); err == nil {
		t.Fatal("expected error for bom with no items")
	}
}

func TestJSONRoundtrip(t *testing.T) {
	c := NewJSONCodec()
	var buf bytes.Buffer
	if err := c.Export(sampleBOM(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	parsed, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TotalQuantity() != 15 {
		t.Errorf("total quantity = %d, want 15", parsed.TotalQuantity())
	}
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVCodec().Export(sampleBOM(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := "class,cable_type,length_bin_m,quantity\n" +
		"leaf-node,sfp28_25g,3,9\n" +
		"leaf-spine,qsfp28_100g,1,3\n" +
		"leaf-spine,qsfp28_100g,3,3\n"
	if buf.String() != want {
		t.Errorf("csv output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestExporterFor(t *testing.T) {
	for format, want := range map[string]string{
		"":     "yaml",
		"yaml": "yaml",
		"json": "json",
		"csv":  "csv",
	} {
		exp, err := ExporterFor(format)
		if err != nil {
			t.Fatalf("ExporterFor(%q): %v", format, err)
		}
		if exp.Format() != want {
			t.Errorf("ExporterFor(%q) = %s, want %s", format, exp.Format(), want)
		}
	}
	if _, err := ExporterFor("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestImporterFor(t *testing.T) {
	imp, err := ImporterFor("out/bom.yaml")
	if err != nil || imp.Format() != "yaml" {
		t.Errorf("yaml path: %v %v", imp, err)
	}
	imp, err = ImporterFor("out/bom.json")
	if err != nil || imp.Format() != "json" {
		t.Errorf("json path: %v %v", imp, err)
	}
	if _, err := ImporterFor("out/bom.csv"); err == nil {
		t.Error("csv import must be rejected")
	}
}

func TestWriteReport(t *testing.T) {
	report := domain.NewReport([]domain.Finding{
		{Severity: domain.SeverityWarn, Code: "OVERSUB_RATIO", Message: "rack rack-1 ratio 4.50:1"},
	}, 12)

	var buf bytes.Buffer
	if err := WriteReport(&buf, "yaml", report); err != nil {
		t.Fatalf("WriteReport yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "OVERSUB_RATIO") {
		t.Error("yaml report missing finding code")
	}

	buf.Reset()
	if err := WriteReport(&buf, "json", report); err != nil {
		t.Fatalf("WriteReport json: %v", err)
	}
	if !strings.Contains(buf.String(), "\"code\": \"OVERSUB_RATIO\"") {
		t.Error("json report missing finding code")
	}

	if err := WriteReport(&buf, "toml", report); err == nil {
		t.Error("expected error for unknown report format")
	}
}
