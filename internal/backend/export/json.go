package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jo-hoe/gojournal/internal/backend/database"
)

// ToJSON serializes entries, in the given order, as a 2-space indented JSON array.
func ToJSON(entries []*database.Entry) ([]byte, error) {
	if entries == nil {
		entries = []*database.Entry{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return nil, fmt.Errorf("failed to encode entries as json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
