package change

import (
	"fmt"
	"strings"
)

// Validate checks the invariants spec.md §3 requires of every Change in
// order: creates∩drops=∅ per change, and every requires id either existed
// before planning (known) or was produced earlier in the list.
func Validate(changes []*Change, knownBefore map[string]bool) error {
	produced := make(map[string]bool, len(knownBefore))
	for id := range knownBefore {
		produced[id] = true
	}

	for i, c := range changes {
		creates := toSet(c.Creates())
		drops := toSet(c.Drops())
		for id := range creates {
			if drops[id] {
				return fmt.Errorf("change %d (%s %s): id %q in both creates and drops", i, c.Op, c.ObjectID, id)
			}
		}
		for _, id := range c.Requires() {
			if !produced[id] {
				return fmt.Errorf("change %d (%s %s): requires %q before it is known or produced", i, c.Op, c.ObjectID, id)
			}
		}
		for _, id := range c.Drops() {
			produced[id] = false
		}
		for _, id := range c.Creates() {
			produced[id] = true
		}
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Join renders changes as ";\n"-separated SQL statements followed by a
// final trailing ";" (spec.md §6 Generated DDL).
func Join(changes []*Change) string {
	if len(changes) == 0 {
		return ""
	}
	stmts := make([]string, 0, len(changes))
	for _, c := range changes {
		stmts = append(stmts, c.Serialize())
	}
	return strings.Join(stmts, ";\n") + ";"
}
