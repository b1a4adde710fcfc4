package codec

import (
	"fmt"
	"io"

	"rackwire/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML BOM import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a BOM artifact from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.BOM, error) {
	var bom domain.BOM
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&bom); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(bom.Items) == 0 {
		return nil, fmt.Errorf("bom has no items")
	}
	return &bom, nil
}

// Export writes a BOM artifact to YAML. Items are sorted first so the
// output is byte-identical across runs over unchanged inputs.
func (c *YAMLCodec) Export(bom *domain.BOM, w io.Writer) error {
	bom.Sort()

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(bom); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
