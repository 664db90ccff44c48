package util

import (
	"encoding/json"
	"sort"

	"golang.org/x/exp/maps"
)

// Compares two maps A and B, and returns two maps consisting of extras and missing from A
func CompareMaps[K comparable, V any](from map[K]V, to map[K]V) (extras map[K]V, missing map[K]V) {
	extras = make(map[K]V)
	missing = make(map[K]V)

	// If key of from does not exist in to, add to the missing map
	for key, value := range from {
		if _, exists := to[key]; !exists {
			missing[key] = value
		}
	}

	for key, value := range to {
		if _, exists := from[key]; !exists {
			extras[key] = value
		}
	}

	return extras, missing
}

// Returns the keys of m in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

// Returns a JSON string representation of a struct
func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", "\t")
	return string(s)
}
