package tree

import (
	"bytes"
	"encoding/json"
)

// RenderJSON serializes the snapshot as the flat JSON projection. It is
// derived from the same ordered snapshot as the GEDCOM rendering, so the two
// formats can never disagree about content.
func RenderJSON(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
