package domain

import (
	"reflect"
	"slices"
)

// Diff returns the top-level keys that differ between oldData and newData.
// Added or modified keys carry the new value; deleted keys are present with a nil value.
// It returns nil when both snapshots are equal.
func Diff(oldData, newData Snapshot) map[string]any {
	delta := make(map[string]any)

	// Check for Added or Modified
	for k, newVal := range newData {
		oldVal, exists := oldData[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	// Check for Deletions
	for k := range oldData {
		if _, exists := newData[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// ChangedKeys returns the keys reported by Diff in sorted order.
func ChangedKeys(oldData, newData Snapshot) []string {
	delta := Diff(oldData, newData)
	keys := make([]string, 0, len(delta))
	for k := range delta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
