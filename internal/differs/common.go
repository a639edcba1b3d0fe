// Package differs implements the per-object-kind differs (spec.md §4.F):
// one file per catalog object kind, each following the shared skeleton
// described in this file's helpers — partition via internal/diffkernel,
// emit CREATE/DROP/ALTER via internal/change, reconcile ACLs via
// internal/privilege — without a class hierarchy (spec.md §9).
package differs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
	"github.com/supabase/pg-toolbelt-sub009/internal/privilege"
)

// Context carries the cross-cutting state every differ needs: the
// session's current_user (for owner-change and default-privilege
// decisions), the target server version (for privilege-list collapsing),
// and the mutable DefaultPrivilegeState (component E) that differs both
// read and update as they emit ALTER DEFAULT PRIVILEGES changes.
type Context struct {
	CurrentUser    string
	ServerVersion  int
	DefaultPrivs   *privilege.State
	MainRoles      map[string]*catalog.Role

	// DroppedTables records the stable ids of tables dropped this pass,
	// consulted by the sequence differ's suppression rule (spec.md §4.F
	// "Sequence": skip DROP SEQUENCE when the owning table is also dropped).
	DroppedTables map[string]bool
}

// reconcileACL emits GRANT/REVOKE/REVOKE GRANT OPTION changes for one
// altered object, diffing branchACL against mainACL; newly created
// objects go through reconcileACLForCreate, which diffs against the
// effective defaults instead (spec.md §4.E rationale). objectRef is the already-quoted "KEYWORD
// schema.name" SQL reference (e.g. `objectACLRef(kind, tableName(t))`) —
// the stable id is a lookup key, never SQL text, so it cannot be
// substituted here.
func reconcileACL(ctx *Context, kind catalog.ObjectKind, objectKind, objectID, objectRef string, mainACL, branchACL []catalog.ACLEntry) []*change.Change {
	diffs := privilege.DiffPrivileges(mainACL, branchACL, "", kind, ctx.MainRoles)
	return emitACLChanges(ctx, kind, objectKind, objectID, objectRef, diffs)
}

// reconcileACLForCreate diffs branchACL against the effective default
// privileges a brand new object would inherit, per spec.md §4.F step 2.d.
func reconcileACLForCreate(ctx *Context, kind catalog.ObjectKind, schema, objectKind, objectID, objectRef string, branchACL []catalog.ACLEntry) []*change.Change {
	effective := ctx.DefaultPrivs.GetEffectiveDefaults(ctx.CurrentUser, kind, schema)
	var mainACL []catalog.ACLEntry
	for _, e := range effective {
		mainACL = append(mainACL, catalog.ACLEntry{Grantee: e.Grantee, Privilege: e.Privilege, Grantable: e.Grantable})
	}
	diffs := privilege.DiffPrivileges(mainACL, branchACL, "", kind, ctx.MainRoles)
	return emitACLChanges(ctx, kind, objectKind, objectID, objectRef, diffs)
}

// objectKeyword returns the keyword GRANT/REVOKE use to introduce an
// object reference for kind (the GRANT reference-syntax table in the
// PostgreSQL GRANT docs).
func objectKeyword(kind catalog.ObjectKind) string {
	switch kind {
	case catalog.ObjectKindTable:
		return "TABLE"
	case catalog.ObjectKindView:
		return "VIEW"
	case catalog.ObjectKindMaterializedView:
		return "MATERIALIZED VIEW"
	case catalog.ObjectKindSequence:
		return "SEQUENCE"
	case catalog.ObjectKindFunction, catalog.ObjectKindAggregate:
		return "FUNCTION"
	case catalog.ObjectKindProcedure:
		return "PROCEDURE"
	case catalog.ObjectKindDomain:
		return "DOMAIN"
	case catalog.ObjectKindType:
		return "TYPE"
	case catalog.ObjectKindLanguage:
		return "LANGUAGE"
	case catalog.ObjectKindSchema:
		return "SCHEMA"
	case catalog.ObjectKindForeignDataWrapper:
		return "FOREIGN DATA WRAPPER"
	case catalog.ObjectKindForeignServer:
		return "FOREIGN SERVER"
	default:
		return strings.ToUpper(string(kind))
	}
}

// objectACLRef builds the "KEYWORD quoted.schema.name" reference GRANT and
// REVOKE take, given the kind and an already-quoted/qualified name (e.g.
// tableName(t), or "public"."f"(integer) for routines).
func objectACLRef(kind catalog.ObjectKind, qualifiedName string) string {
	return objectKeyword(kind) + " " + qualifiedName
}

func emitACLChanges(ctx *Context, kind catalog.ObjectKind, objectKind, objectID, objectRef string, diffs map[string]*privilege.Diff) []*change.Change {
	var out []*change.Change
	grantees := make([]string, 0, len(diffs))
	for g := range diffs {
		grantees = append(grantees, g)
	}
	sort.Strings(grantees)

	for _, grantee := range grantees {
		d := diffs[grantee]
		roleID := ident.RoleID(grantee)
		aclID := ident.ACLID(objectID, grantee)

		objGrants, colGrants := splitColumnEntries(d.Grants)
		for _, group := range privilege.GroupByGrantable(objGrants) {
			grantable, entries := groupKV(group)
			if len(entries) == 0 {
				continue
			}
			sql := formatGrant(kind, objectRef, entries, grantee, grantable, ctx.ServerVersion)
			out = append(out, change.Grant(objectKind, objectID, aclID, roleID, sql))
		}
		for _, g := range privilege.GroupByColumns(colGrants) {
			sql := formatColumnGrant(objectRef, g, grantee)
			out = append(out, change.Grant(objectKind, objectID, aclID, roleID, sql))
		}

		objRevokes, colRevokes := splitColumnEntries(d.Revokes)
		for _, group := range privilege.GroupByGrantable(objRevokes) {
			_, entries := groupKV(group)
			if len(entries) == 0 {
				continue
			}
			sql := formatRevoke(kind, objectRef, entries, grantee, ctx.ServerVersion)
			out = append(out, change.Revoke(objectKind, objectID, aclID, roleID, sql))
		}
		for _, g := range privilege.GroupByColumns(colRevokes) {
			sql := formatColumnRevoke(objectRef, g, grantee)
			out = append(out, change.Revoke(objectKind, objectID, aclID, roleID, sql))
		}

		if len(d.RevokeGrantOption) > 0 {
			objRGO, colRGO := splitColumnEntries(d.RevokeGrantOption)
			if len(objRGO) > 0 {
				sql := formatRevokeGrantOption(kind, objectRef, objRGO, grantee, ctx.ServerVersion)
				out = append(out, change.RevokeGrantOption(objectKind, objectID, aclID, roleID, sql))
			}
			for _, g := range privilege.GroupByColumns(colRGO) {
				sql := formatColumnRevokeGrantOption(objectRef, g, grantee)
				out = append(out, change.RevokeGrantOption(objectKind, objectID, aclID, roleID, sql))
			}
		}
	}
	return out
}

// splitColumnEntries separates object-level ACL entries (no column list)
// from column-scoped ones, so the two are grouped and serialized by
// different rules (spec.md §4.D step 4: GroupByGrantable for the former,
// GroupByColumns for the latter).
func splitColumnEntries(entries []catalog.ACLEntry) (objectLevel, columnLevel []catalog.ACLEntry) {
	for _, e := range entries {
		if len(e.Columns) > 0 {
			columnLevel = append(columnLevel, e)
		} else {
			objectLevel = append(objectLevel, e)
		}
	}
	return objectLevel, columnLevel
}

func groupKV(entries []catalog.ACLEntry) (bool, []catalog.ACLEntry) {
	if len(entries) == 0 {
		return false, nil
	}
	return entries[0].Grantable, entries
}

func privNames(entries []catalog.ACLEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Privilege)
	}
	return out
}

func quotedColumns(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident.Quote(c)
	}
	return strings.Join(out, ", ")
}

// formatGrant renders "GRANT priv, priv ON KEYWORD schema.name TO grantee
// [WITH GRANT OPTION]" for an object-level (non-column-scoped) grant.
func formatGrant(kind catalog.ObjectKind, objectRef string, entries []catalog.ACLEntry, grantee string, grantable bool, version int) string {
	privList := privilege.FormatObjectPrivilegeList(kind, privNames(entries), version)
	sql := fmt.Sprintf("GRANT %s ON %s TO %s", privList, objectRef, granteeSQL(grantee))
	if grantable {
		sql += " WITH GRANT OPTION"
	}
	return sql
}

func formatRevoke(kind catalog.ObjectKind, objectRef string, entries []catalog.ACLEntry, grantee string, version int) string {
	privList := privilege.FormatObjectPrivilegeList(kind, privNames(entries), version)
	return fmt.Sprintf("REVOKE %s ON %s FROM %s", privList, objectRef, granteeSQL(grantee))
}

func formatRevokeGrantOption(kind catalog.ObjectKind, objectRef string, entries []catalog.ACLEntry, grantee string, version int) string {
	privList := privilege.FormatObjectPrivilegeList(kind, privNames(entries), version)
	return fmt.Sprintf("REVOKE GRANT OPTION FOR %s ON %s FROM %s", privList, objectRef, granteeSQL(grantee))
}

// formatColumnGrant renders "GRANT priv, priv (col, col) ON KEYWORD
// schema.name TO grantee [WITH GRANT OPTION]" for a column-scoped grant
// (spec.md §6 column-grant form).
func formatColumnGrant(objectRef string, g privilege.ColumnGroup, grantee string) string {
	sql := fmt.Sprintf("GRANT %s (%s) ON %s TO %s", strings.Join(g.Privs, ", "), quotedColumns(g.Columns), objectRef, granteeSQL(grantee))
	if g.Grantable {
		sql += " WITH GRANT OPTION"
	}
	return sql
}

func formatColumnRevoke(objectRef string, g privilege.ColumnGroup, grantee string) string {
	return fmt.Sprintf("REVOKE %s (%s) ON %s FROM %s", strings.Join(g.Privs, ", "), quotedColumns(g.Columns), objectRef, granteeSQL(grantee))
}

func formatColumnRevokeGrantOption(objectRef string, g privilege.ColumnGroup, grantee string) string {
	return fmt.Sprintf("REVOKE GRANT OPTION FOR %s (%s) ON %s FROM %s", strings.Join(g.Privs, ", "), quotedColumns(g.Columns), objectRef, granteeSQL(grantee))
}

// sortedKeysOf returns a map's keys in sorted order, for deterministic
// iteration over name-keyed sub-collections (constraints, indexes,
// triggers, policies) within a single object.
func sortedKeysOf[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func granteeSQL(grantee string) string {
	if grantee == "" || grantee == "PUBLIC" {
		return "PUBLIC"
	}
	return ident.Quote(grantee)
}

// diffComment emits CreateCommentOn (set/changed, COMMENT ON is idempotent)
// or DropCommentOn (cleared) per spec.md §4.F step 4.d.
func diffComment(objectKind, objectID, commentID string, oldComment, newComment string, sqlFor func(text string) string, sqlDrop func() string) *change.Change {
	if oldComment == newComment {
		return nil
	}
	if newComment == "" {
		return change.Comment(change.OpDrop, objectKind, objectID, commentID, sqlDrop(), nil)
	}
	return change.Comment(change.OpCreate, objectKind, objectID, commentID, sqlFor(newComment), nil)
}
