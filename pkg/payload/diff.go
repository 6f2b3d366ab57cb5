package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wI2L/jsondiff"
)

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
)

// FieldChange is the delta of a single top-level field
type FieldChange struct {
	Field    string     `json:"field"`
	Kind     ChangeKind `json:"kind"`
	Original any        `json:"original,omitempty"`
	Proposed any        `json:"proposed"`
}

// Diff compares the snapshot with the proposed values. Only proposed fields are
// considered; snapshot fields the request does not touch are ignored.
// The result is sorted by field name.
func Diff(raw json.RawMessage) ([]FieldChange, error) {
	proposed, original, err := SplitUpdate(raw)
	if err != nil {
		return nil, err
	}

	before := make(map[string]any, len(proposed))
	for key := range proposed {
		if value, ok := original[key]; ok {
			before[key] = value
		}
	}

	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	afterJSON, err := json.Marshal(proposed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proposed values: %w", err)
	}

	patch, err := jsondiff.CompareJSON(beforeJSON, afterJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compare payload: %w", err)
	}

	seen := make(map[string]struct{})
	changes := make([]FieldChange, 0, len(patch))
	for _, op := range patch {
		field := topLevelField(string(op.Path))
		if field == "" {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}

		change := FieldChange{Field: field, Proposed: proposed[field]}
		if old, ok := before[field]; ok {
			change.Kind = ChangeModified
			change.Original = old
		} else {
			change.Kind = ChangeAdded
		}
		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes, nil
}

// topLevelField extracts the first reference token of a JSON pointer
func topLevelField(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(pointer, '/'); i >= 0 {
		pointer = pointer[:i]
	}
	pointer = strings.ReplaceAll(pointer, "~1", "/")
	return strings.ReplaceAll(pointer, "~0", "~")
}
