package journal

import (
	"encoding/json"
	"fmt"
	"io"
)

// ExportJSON writes the full ledger as an indented snapshot. Serialize
// stamps the export time and schema version so a later import can
// sanity-check the file.
func (s *Store) ExportJSON(w io.Writer) error {
	snap := s.Serialize()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
