package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rackwire/internal/domain"
)

// csvHeader is the fixed column layout procurement tooling expects.
var csvHeader = []string{"class", "cable_type", "length_bin_m", "quantity"}

// CSVCodec exports a BOM as a flat line-item table. The meta block does
// not survive this form, so CSV is a terminal export, never an input.
type CSVCodec struct{}

// NewCSVCodec creates a new CSV codec
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

// Format returns the codec format identifier
func (c *CSVCodec) Format() string {
	return "csv"
}

// Export writes sorted BOM line items as CSV with a header row.
func (c *CSVCodec) Export(bom *domain.BOM, w io.Writer) error {
	bom.Sort()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, it := range bom.Items {
		record := []string{
			string(it.Class),
			string(it.CableType),
			strconv.Itoa(it.LengthBinM),
			strconv.Itoa(it.Quantity),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}
