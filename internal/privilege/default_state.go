package privilege

import (
	"sort"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

// schemaKey distinguishes a global (nil-schema) default privilege from a
// per-schema one without relying on a zero value clashing with a real
// schema named "".
type schemaKey struct {
	schema string
	global bool
}

type stateKey struct {
	role    string
	objType catalog.DefaultPrivilegeObjType
	schema  schemaKey
	grantee string
}

// entrySet is the "<priv>:<grantable>" string set spec.md §3 describes,
// kept as a flat map for O(1) apply/get (spec.md §9 replaces the nested
// map design with this).
type entrySet map[string]bool

func entryStr(priv string, grantable bool) string {
	if grantable {
		return priv + ":true"
	}
	return priv + ":false"
}

// State is the mutable ALTER DEFAULT PRIVILEGES projection (component E).
// It is owned exclusively by one planning pass; construct with NewState
// and mutate via ApplyGrant/ApplyRevoke as Change records are emitted.
type State struct {
	entries map[stateKey]entrySet
}

// NewState seeds a DefaultPrivilegeState from a catalog's recorded
// ALTER DEFAULT PRIVILEGES grants (spec.md §4.E).
func NewState(seed []catalog.DefaultPrivilegeGrant) *State {
	s := &State{entries: make(map[stateKey]entrySet)}
	for _, g := range seed {
		sk := schemaKey{schema: g.InSchema, global: g.InSchema == ""}
		k := stateKey{role: g.ForRole, objType: g.ObjType, schema: sk, grantee: g.Grantee}
		set, ok := s.entries[k]
		if !ok {
			set = entrySet{}
			s.entries[k] = set
		}
		set[entryStr(g.Privilege, g.Grantable)] = true
	}
	return s
}

// ApplyGrant unions privs into the state for (role, objtype, schema, grantee).
func (s *State) ApplyGrant(role string, objType catalog.DefaultPrivilegeObjType, inSchema, grantee string, privs []string, grantable bool) {
	sk := schemaKey{schema: inSchema, global: inSchema == ""}
	k := stateKey{role: role, objType: objType, schema: sk, grantee: grantee}
	set, ok := s.entries[k]
	if !ok {
		set = entrySet{}
		s.entries[k] = set
	}
	for _, p := range privs {
		set[entryStr(p, grantable)] = true
	}
}

// ApplyRevoke removes matching entries; revoking the grantable variant
// also removes the base (non-grantable) entry, matching PostgreSQL's
// REVOKE semantics for a plain privilege name.
func (s *State) ApplyRevoke(role string, objType catalog.DefaultPrivilegeObjType, inSchema, grantee string, privs []string) {
	sk := schemaKey{schema: inSchema, global: inSchema == ""}
	k := stateKey{role: role, objType: objType, schema: sk, grantee: grantee}
	set, ok := s.entries[k]
	if !ok {
		return
	}
	for _, p := range privs {
		delete(set, entryStr(p, true))
		delete(set, entryStr(p, false))
	}
}

// PrivEntry is one effective default-privilege entry returned by
// GetEffectiveDefaults: what a brand-new object of this kind/schema will
// carry the instant it is created.
type PrivEntry struct {
	Grantee   string
	Privilege string
	Grantable bool
}

// GetEffectiveDefaults returns the flat effective ACL a new object of
// object_kind created by currentUser in objectSchema will receive,
// consulting schema-specific entries first and falling back to the global
// (null-schema) entries only when no entry exists for that (role, objtype)
// pair in objectSchema (spec.md §4.E).
func (s *State) GetEffectiveDefaults(currentUser string, kind catalog.ObjectKind, objectSchema string) []PrivEntry {
	objType, ok := catalog.ObjTypeForKind(kind)
	if !ok {
		return nil
	}

	hasSchemaSpecific := false
	for k := range s.entries {
		if k.role == currentUser && k.objType == objType && !k.schema.global && k.schema.schema == objectSchema {
			hasSchemaSpecific = true
			break
		}
	}

	var out []PrivEntry
	for k, set := range s.entries {
		if k.role != currentUser || k.objType != objType {
			continue
		}
		if hasSchemaSpecific {
			if k.schema.global || k.schema.schema != objectSchema {
				continue
			}
		} else if !k.schema.global {
			continue
		}
		for entry := range set {
			priv, grantable := splitEntry(entry)
			out = append(out, PrivEntry{Grantee: k.grantee, Privilege: priv, Grantable: grantable})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Grantee != out[j].Grantee {
			return out[i].Grantee < out[j].Grantee
		}
		return out[i].Privilege < out[j].Privilege
	})
	return out
}

func splitEntry(s string) (priv string, grantable bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[:i], s[i+1:] == "true"
		}
	}
	return s, false
}
