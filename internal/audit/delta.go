package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// FieldChange is one field's old/new pair inside an audit entry.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// bookkeepingFields are write-plumbing keys, not document content. They
// change on every save, so leaving them in would turn every ghost save
// into a fake audit entry.
var bookkeepingFields = map[string]bool{
	"updatedBy":   true,
	"updatedFrom": true,
	"updatedAt":   true,
}

// ComputeDelta diffs two document snapshots field by field. An empty
// result means the save changed nothing a user would care about.
func ComputeDelta(before, after json.RawMessage) (map[string]FieldChange, error) {
	var beforeDoc, afterDoc map[string]interface{}
	if len(before) > 0 {
		if err := json.Unmarshal(before, &beforeDoc); err != nil {
			return nil, fmt.Errorf("failed to decode before snapshot: %w", err)
		}
	}
	if len(after) > 0 {
		if err := json.Unmarshal(after, &afterDoc); err != nil {
			return nil, fmt.Errorf("failed to decode after snapshot: %w", err)
		}
	}

	delta := make(map[string]FieldChange)
	for _, key := range unionKeys(beforeDoc, afterDoc) {
		if bookkeepingFields[key] {
			continue
		}
		oldVal, newVal := beforeDoc[key], afterDoc[key]
		if reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		delta[key] = FieldChange{Old: oldVal, New: newVal}
	}
	return delta, nil
}

func unionKeys(a, b map[string]interface{}) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
