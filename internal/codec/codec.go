// Package codec reads and writes materialized BOM artifacts and
// serializes reports. YAML is the canonical interchange form; JSON and
// CSV exist for downstream tooling.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rackwire/internal/domain"
)

// Importer interface for reading a persisted BOM artifact
type Importer interface {
	Parse(r io.Reader) (*domain.BOM, error)
	Format() string
}

// Exporter interface for writing a BOM artifact
type Exporter interface {
	Export(bom *domain.BOM, w io.Writer) error
	Format() string
}

// ExporterFor returns the exporter for a format identifier. The empty
// string selects YAML.
func ExporterFor(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	case "csv":
		return NewCSVCodec(), nil
	default:
		return nil, fmt.Errorf("unknown bom format %q", format)
	}
}

// ImporterFor picks an importer from the artifact's file extension.
// CSV is export-only: it carries no meta block, so quantities could not
// be normalized back to core counts on re-import.
func ImporterFor(path string) (Importer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONCodec(), nil
	case ".csv":
		return nil, fmt.Errorf("csv artifacts cannot be re-imported (no meta block); use yaml or json")
	default:
		return NewYAMLCodec(), nil
	}
}
