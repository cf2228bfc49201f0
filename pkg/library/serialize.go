package library

import (
	"encoding/json"
	"fmt"

	"github.com/coolbeans/treatise/pkg/statute"
)

// SerializeStatute converts a statute tree to indented JSON.
func SerializeStatute(st *statute.Statute) ([]byte, error) {
	if st == nil {
		return nil, fmt.Errorf("statute is nil")
	}
	return json.MarshalIndent(st, "", "  ")
}

// DeserializeStatute decodes a statute tree from JSON.
func DeserializeStatute(data []byte) (*statute.Statute, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	var st statute.Statute
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statute: %w", err)
	}
	for _, section := range st.Sections() {
		if section.Commentary == nil {
			section.Commentary = make([]*statute.Commentary, 0)
		}
	}
	return &st, nil
}
