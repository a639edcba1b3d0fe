// Package privilege implements privilege reconciliation (spec.md §4.D) and
// default-privilege projection (spec.md §4.E): the common algorithm every
// per-kind differ in internal/differs calls into when reconciling an
// object's ACL, rather than re-deriving grant/revoke semantics per kind.
package privilege

import (
	"sort"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

// entryKey groups ACL entries for the case analysis in spec.md §4.D step 2.
type entryKey struct {
	Grantee  string
	Priv     string
	ColumnsK string // columns joined, "" for object-level
}

func keyOf(e catalog.ACLEntry) entryKey {
	cols := ""
	for i, c := range e.Columns {
		if i > 0 {
			cols += ","
		}
		cols += c
	}
	return entryKey{Grantee: e.Grantee, Priv: e.Privilege, ColumnsK: cols}
}

// Diff is the per-grantee reconciliation result (spec.md §4.D contract).
type Diff struct {
	Grants            []catalog.ACLEntry
	Revokes           []catalog.ACLEntry
	RevokeGrantOption []catalog.ACLEntry
}

// DiffPrivileges reconciles main's and branch's ACL for one object and
// returns the per-grantee grant/revoke/revoke-grant-option sets.
// mainRoles is not consulted; it is accepted for symmetry with the spec's contract signature and future
// extension (e.g. role-membership-aware filtering) even though the current
// filtering rules need only the owner name itself.
func DiffPrivileges(mainACL, branchACL []catalog.ACLEntry, owner string, kind catalog.ObjectKind, mainRoles map[string]*catalog.Role) map[string]*Diff {
	mainFiltered := filterACL(mainACL, owner, kind)
	branchFiltered := filterACL(branchACL, owner, kind)

	mainByKey := make(map[entryKey]catalog.ACLEntry)
	for _, e := range mainFiltered {
		mainByKey[keyOf(e)] = e
	}
	branchByKey := make(map[entryKey]catalog.ACLEntry)
	for _, e := range branchFiltered {
		branchByKey[keyOf(e)] = e
	}

	allKeys := make(map[entryKey]bool)
	for k := range mainByKey {
		allKeys[k] = true
	}
	for k := range branchByKey {
		allKeys[k] = true
	}

	byGrantee := make(map[string]*Diff)
	get := func(grantee string) *Diff {
		if d, ok := byGrantee[grantee]; ok {
			return d
		}
		d := &Diff{}
		byGrantee[grantee] = d
		return d
	}

	for _, k := range sortedEntryKeys(allKeys) {
		oldE, inMain := mainByKey[k]
		newE, inBranch := branchByKey[k]

		switch {
		case inBranch && !inMain:
			get(k.Grantee).Grants = append(get(k.Grantee).Grants, newE)
		case inMain && !inBranch:
			get(k.Grantee).Revokes = append(get(k.Grantee).Revokes, oldE)
		case oldE.Grantable == newE.Grantable:
			// no change
		case oldE.Grantable && !newE.Grantable:
			get(k.Grantee).RevokeGrantOption = append(get(k.Grantee).RevokeGrantOption, newE)
		default: // !oldE.Grantable && newE.Grantable
			get(k.Grantee).Grants = append(get(k.Grantee).Grants, newE)
		}
	}

	return byGrantee
}

// filterACL implements spec.md §4.D step 1: drop owner entries, PUBLIC's
// language-defined defaults, and any grantable=false entry shadowed by a
// grantable=true entry with the same (grantee, privilege, columns).
func filterACL(acl []catalog.ACLEntry, owner string, kind catalog.ObjectKind) []catalog.ACLEntry {
	defaults := publicDefaults(kind)

	grantableSet := make(map[entryKey]bool)
	for _, e := range acl {
		if e.Grantable {
			grantableSet[keyOf(e)] = true
		}
	}

	var out []catalog.ACLEntry
	for _, e := range acl {
		if e.Grantee == owner {
			continue
		}
		if e.Grantee == "PUBLIC" && len(e.Columns) == 0 && defaults[e.Privilege] {
			continue
		}
		if !e.Grantable && grantableSet[keyOf(e)] {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sortedEntryKeys(m map[entryKey]bool) []entryKey {
	keys := make([]entryKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Grantee != keys[j].Grantee {
			return keys[i].Grantee < keys[j].Grantee
		}
		if keys[i].Priv != keys[j].Priv {
			return keys[i].Priv < keys[j].Priv
		}
		return keys[i].ColumnsK < keys[j].ColumnsK
	})
	return keys
}

// GroupByGrantable groups entries by grantable flag for object-level
// serialization (spec.md §4.D step 4).
func GroupByGrantable(entries []catalog.ACLEntry) map[bool][]catalog.ACLEntry {
	out := map[bool][]catalog.ACLEntry{}
	for _, e := range entries {
		out[e.Grantable] = append(out[e.Grantable], e)
	}
	return out
}

// ColumnGroup is one (columns, grantable) bucket of column-level grants.
type ColumnGroup struct {
	Columns   []string
	Grantable bool
	Privs     []string
}

// GroupByColumns groups column-scoped entries by (columns, grantable) for
// table/view/materialized-view column-level GRANT statements.
func GroupByColumns(entries []catalog.ACLEntry) []ColumnGroup {
	type gkey struct {
		cols      string
		grantable bool
	}
	groups := make(map[gkey]*ColumnGroup)
	var order []gkey
	for _, e := range entries {
		colsK := ""
		for i, c := range e.Columns {
			if i > 0 {
				colsK += ","
			}
			colsK += c
		}
		k := gkey{colsK, e.Grantable}
		g, ok := groups[k]
		if !ok {
			g = &ColumnGroup{Columns: e.Columns, Grantable: e.Grantable}
			groups[k] = g
			order = append(order, k)
		}
		g.Privs = append(g.Privs, e.Privilege)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].cols != order[j].cols {
			return order[i].cols < order[j].cols
		}
		return !order[i].grantable && order[j].grantable
	})
	out := make([]ColumnGroup, 0, len(order))
	for _, k := range order {
		g := groups[k]
		sort.Strings(g.Privs)
		out = append(out, *g)
	}
	return out
}
