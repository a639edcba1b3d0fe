// Package diffkernel implements the object-diff kernel (spec.md §4.C): the
// single generic partition step every per-kind differ in internal/differs
// builds on. It holds no PostgreSQL-specific knowledge.
package diffkernel

import "sort"

// AlteredPair is one id present on both sides with differing data fields.
type AlteredPair[T any] struct {
	ID  string
	Old T
	New T
}

// Partition splits main/branch maps keyed by stable id into created,
// dropped, and altered sets. altered contains only ids present in both maps
// whose dataEqual comparison reports inequality; identity fields (the
// portion of T that determines the key itself) never differ for a given
// id and so never need comparing. Iteration order is always the sorted key
// order, so two calls with identical inputs produce byte-identical output
// order regardless of map iteration order (spec.md §5).
func Partition[T any](main, branch map[string]T, dataEqual func(a, b T) bool) (created, dropped []T, altered []AlteredPair[T]) {
	for _, id := range sortedKeys(branch) {
		if _, ok := main[id]; !ok {
			created = append(created, branch[id])
		}
	}
	for _, id := range sortedKeys(main) {
		if _, ok := branch[id]; !ok {
			dropped = append(dropped, main[id])
		}
	}
	for _, id := range sortedKeys(main) {
		newVal, ok := branch[id]
		if !ok {
			continue
		}
		oldVal := main[id]
		if !dataEqual(oldVal, newVal) {
			altered = append(altered, AlteredPair[T]{ID: id, Old: oldVal, New: newVal})
		}
	}
	return created, dropped, altered
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedValues returns a map's values ordered by their sorted keys, for
// callers (e.g. differs iterating Schema.Tables) that need deterministic
// order but not a full partition.
func SortedValues[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}
