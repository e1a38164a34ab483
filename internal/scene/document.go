package scene

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion is the current canvas document format version.
const DocumentVersion = 1

// Document is the JSON export/import format for a full canvas: every
// shape with all local fields (not the lossy wire protocol) plus groups.
// Documents are validated against the CUE schema in internal/schema
// before import.
type Document struct {
	Version int     `json:"version"`
	Name    string  `json:"name,omitempty"`
	Shapes  []Shape `json:"shapes"`
	Groups  []Group `json:"groups,omitempty"`
}

// EncodeDocument serializes a document with stable indentation.
func EncodeDocument(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a document and checks structural basics the CUE
// schema cannot express against live state (duplicate ids).
func DecodeDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if d.Version != DocumentVersion {
		return Document{}, fmt.Errorf("unsupported document version %d (want %d)", d.Version, DocumentVersion)
	}
	seen := make(map[string]bool, len(d.Shapes))
	for i, s := range d.Shapes {
		if s.ID == "" {
			return Document{}, fmt.Errorf("shapes[%d]: missing id", i)
		}
		if seen[s.ID] {
			return Document{}, fmt.Errorf("shapes[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		if !s.Type.Valid() {
			return Document{}, fmt.Errorf("shapes[%d]: unknown type %q", i, s.Type)
		}
	}
	return d, nil
}
