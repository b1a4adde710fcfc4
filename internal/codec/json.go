package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"rackwire/internal/domain"
)

// JSONCodec handles JSON BOM import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a BOM artifact from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.BOM, error) {
	var bom domain.BOM
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&bom); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(bom.Items) == 0 {
		return nil, fmt.Errorf("bom has no items")
	}
	return &bom, nil
}

// Export writes a BOM artifact to JSON
func (c *JSONCodec) Export(bom *domain.BOM, w io.Writer) error {
	bom.Sort()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(bom); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
