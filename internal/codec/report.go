package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteReport serializes a report structure in the requested format.
// Reports are consumed by humans and CI, not re-imported, so only the
// structured formats are offered.
func WriteReport(w io.Writer, format string, report any) error {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report YAML: %w", err)
		}
		return nil
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
