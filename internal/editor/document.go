package editor

import (
	"encoding/json"
	"fmt"

	"pagesmith/internal/component"
)

// Document is the storage and wire form of an editor.
type Document struct {
	Components  map[string]component.Snapshot `json:"components"`
	SelectedIDs []string                      `json:"selectedComponentsIdx"`
	EditMode    bool                          `json:"editMode"`
}

// UnmarshalJSON also accepts the selection under "selectedIds".
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var aux struct {
		plain
		SelectedIDs []string `json:"selectedIds"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Document(aux.plain)
	if d.SelectedIDs == nil {
		d.SelectedIDs = aux.SelectedIDs
	}
	if d.Components == nil {
		d.Components = map[string]component.Snapshot{}
	}
	return nil
}

// ParseDocument decodes a stored document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Len is the number of components in the document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Components)
}
