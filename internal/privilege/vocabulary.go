package privilege

import (
	"sort"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

// vocabulary is the fixed set of privilege names PostgreSQL defines for an
// object kind, keyed by the lowest server major version that introduced
// the full set. Versions are checked from newest to oldest; the first
// match at or below the target version wins. This is the version-gated
// privilege vocabulary spec.md §4.D calls a "fixed data asset".
var vocabulary = map[catalog.ObjectKind]map[int][]string{
	catalog.ObjectKindTable: {
		12: {"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"},
	},
	catalog.ObjectKindView: {
		12: {"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"},
	},
	catalog.ObjectKindMaterializedView: {
		12: {"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER"},
	},
	catalog.ObjectKindSequence: {
		12: {"USAGE", "SELECT", "UPDATE"},
	},
	catalog.ObjectKindFunction: {
		12: {"EXECUTE"},
	},
	catalog.ObjectKindProcedure: {
		12: {"EXECUTE"},
	},
	catalog.ObjectKindAggregate: {
		12: {"EXECUTE"},
	},
	catalog.ObjectKindType: {
		12: {"USAGE"},
	},
	catalog.ObjectKindDomain: {
		12: {"USAGE"},
	},
	catalog.ObjectKindLanguage: {
		12: {"USAGE"},
	},
	catalog.ObjectKindSchema: {
		12: {"USAGE", "CREATE"},
	},
	catalog.ObjectKindForeignDataWrapper: {
		12: {"USAGE"},
	},
	catalog.ObjectKindForeignServer: {
		12: {"USAGE"},
	},
}

// AllPrivileges returns the full privilege vocabulary for kind at the
// given target server major version (e.g. 16), newest-applicable entry.
func AllPrivileges(kind catalog.ObjectKind, version int) []string {
	byVersion, ok := vocabulary[kind]
	if !ok {
		return nil
	}
	best := -1
	for v := range byVersion {
		if v <= version && v > best {
			best = v
		}
	}
	if best == -1 {
		// fall back to the oldest entry defined, rather than produce nothing
		for v := range byVersion {
			if best == -1 || v < best {
				best = v
			}
		}
	}
	out := append([]string(nil), byVersion[best]...)
	sort.Strings(out)
	return out
}

// publicDefaults are the privileges PostgreSQL grants to PUBLIC implicitly
// for a kind, per the upstream "GRANT" reference (§5.7 privileges docs).
// These must be filtered from both sides before diffing (spec.md invariants).
func publicDefaults(kind catalog.ObjectKind) map[string]bool {
	switch kind {
	case catalog.ObjectKindType, catalog.ObjectKindDomain:
		return map[string]bool{"USAGE": true}
	case catalog.ObjectKindLanguage:
		return map[string]bool{"USAGE": true}
	case catalog.ObjectKindFunction, catalog.ObjectKindProcedure, catalog.ObjectKindAggregate:
		return map[string]bool{"EXECUTE": true}
	case catalog.ObjectKindSchema:
		return map[string]bool{} // public schema only, handled by caller per-schema, not globally
	default:
		return map[string]bool{}
	}
}

// FormatObjectPrivilegeList collapses privs to "ALL PRIVILEGES" when every
// privilege the target version supports for kind is present; otherwise it
// returns the comma-separated canonical order (spec.md §4.D).
func FormatObjectPrivilegeList(kind catalog.ObjectKind, privs []string, version int) string {
	all := AllPrivileges(kind, version)
	if len(all) > 0 && len(privs) == len(all) {
		set := make(map[string]bool, len(privs))
		for _, p := range privs {
			set[p] = true
		}
		complete := true
		for _, p := range all {
			if !set[p] {
				complete = false
				break
			}
		}
		if complete {
			return "ALL PRIVILEGES"
		}
	}
	sorted := append([]string(nil), privs...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
