package differs

import (
	"sort"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/privilege"
)

// Plan runs every per-kind differ over one (main, branch) catalog pair and
// returns the unordered set of Change records the topological analyzer
// (internal/topo) will turn into a statement sequence. Plan itself performs
// no ordering (spec.md §4.F/§4.H division of labor), but emission order is
// not irrelevant: topo.FromChanges uses each change's position here as its
// ingest index, which breaks ties between statements of the same phase
// with no dependency between them.
func Plan(currentUser string, serverVersion int, main, branch *catalog.Catalog) []*change.Change {
	ctx := &Context{
		CurrentUser:   currentUser,
		ServerVersion: serverVersion,
		DefaultPrivs:  privilege.NewState(main.DefaultPrivileges),
		MainRoles:     main.Roles,
		DroppedTables: make(map[string]bool),
	}

	var out []*change.Change

	out = append(out, Roles(main.Roles, branch.Roles)...)
	out = append(out, Schemas(ctx, main.Schemas, branch.Schemas)...)
	out = append(out, Collations(main.Collations, branch.Collations)...)
	out = append(out, Languages(main.Languages, branch.Languages)...)
	out = append(out, Extensions(main.Extensions, branch.Extensions)...)
	out = append(out, ForeignDataWrappers(ctx, main.ForeignDataWrappers, branch.ForeignDataWrappers)...)
	out = append(out, ForeignServers(ctx, main.ForeignServers, branch.ForeignServers)...)
	out = append(out, Subscriptions(main.Subscriptions, branch.Subscriptions)...)
	out = append(out, Publications(main.Publications, branch.Publications)...)
	out = append(out, EventTriggers(main.EventTriggers, branch.EventTriggers)...)
	out = append(out, defaultPrivilegeChanges(ctx, main.DefaultPrivileges, branch.DefaultPrivileges)...)

	schemaSet := make(map[string]bool, len(main.Schemas)+len(branch.Schemas))
	for n := range main.Schemas {
		schemaSet[n] = true
	}
	for n := range branch.Schemas {
		schemaSet[n] = true
	}
	schemaNames := make([]string, 0, len(schemaSet))
	for n := range schemaSet {
		schemaNames = append(schemaNames, n)
	}
	sort.Strings(schemaNames)

	// Tables are diffed first among schema contents so ctx.DroppedTables is
	// populated before Sequences consults it (spec.md §4.F "Sequence").
	for _, name := range schemaNames {
		mainSchema, branchSchema := schemaOrEmpty(main, name), schemaOrEmpty(branch, name)
		out = append(out, Tables(ctx, mainSchema.Tables, branchSchema.Tables)...)
	}
	for _, name := range schemaNames {
		mainSchema, branchSchema := schemaOrEmpty(main, name), schemaOrEmpty(branch, name)
		out = append(out, Types(ctx, mainSchema.Types, branchSchema.Types)...)
		out = append(out, Sequences(ctx, name, mainSchema.Sequences, branchSchema.Sequences)...)
		out = append(out, Views(ctx, mainSchema.Views, branchSchema.Views)...)
		out = append(out, Views(ctx, mainSchema.MaterializedViews, branchSchema.MaterializedViews)...)
		out = append(out, Functions(ctx, mainSchema.Functions, branchSchema.Functions)...)
		out = append(out, Procedures(ctx, mainSchema.Procedures, branchSchema.Procedures)...)
		out = append(out, Aggregates(ctx, mainSchema.Aggregates, branchSchema.Aggregates)...)
	}

	return out
}

func schemaOrEmpty(c *catalog.Catalog, name string) *catalog.Schema {
	if s, ok := c.Schemas[name]; ok {
		return s
	}
	return &catalog.Schema{Name: name}
}

// defaultPrivilegeChanges diffs the ALTER DEFAULT PRIVILEGES entries
// themselves (as distinct from the privileges they project onto newly
// created objects, reconciled inline by reconcileACLForCreate).
func defaultPrivilegeChanges(ctx *Context, main, branch []catalog.DefaultPrivilegeGrant) []*change.Change {
	mainSet := make(map[string]catalog.DefaultPrivilegeGrant, len(main))
	for _, g := range main {
		mainSet[defaultPrivilegeKey(g)] = g
	}
	branchSet := make(map[string]catalog.DefaultPrivilegeGrant, len(branch))
	for _, g := range branch {
		branchSet[defaultPrivilegeKey(g)] = g
	}

	var out []*change.Change
	branchKeys := make([]string, 0, len(branchSet))
	for k := range branchSet {
		branchKeys = append(branchKeys, k)
	}
	sort.Strings(branchKeys)
	for _, k := range branchKeys {
		g := branchSet[k]
		if _, ok := mainSet[k]; ok {
			continue
		}
		out = append(out, change.DefaultPrivilege(defaultPrivilegeID(g), defaultPrivilegeGrantSQL(g), nil))
		ctx.DefaultPrivs.ApplyGrant(g.ForRole, g.ObjType, g.InSchema, g.Grantee, []string{g.Privilege}, g.Grantable)
	}
	mainKeys := make([]string, 0, len(mainSet))
	for k := range mainSet {
		mainKeys = append(mainKeys, k)
	}
	sort.Strings(mainKeys)
	for _, k := range mainKeys {
		g := mainSet[k]
		if _, ok := branchSet[k]; ok {
			continue
		}
		out = append(out, change.DefaultPrivilege(defaultPrivilegeID(g), defaultPrivilegeRevokeSQL(g), nil))
		ctx.DefaultPrivs.ApplyRevoke(g.ForRole, g.ObjType, g.InSchema, g.Grantee, []string{g.Privilege})
	}
	return out
}

func defaultPrivilegeKey(g catalog.DefaultPrivilegeGrant) string {
	return g.ForRole + "|" + string(g.ObjType) + "|" + g.InSchema + "|" + g.Grantee + "|" + g.Privilege
}

func defaultPrivilegeID(g catalog.DefaultPrivilegeGrant) string {
	return "default_privilege:" + defaultPrivilegeKey(g)
}

func defaultPrivilegeGrantSQL(g catalog.DefaultPrivilegeGrant) string {
	sql := "ALTER DEFAULT PRIVILEGES FOR ROLE " + g.ForRole
	if g.InSchema != "" {
		sql += " IN SCHEMA " + g.InSchema
	}
	sql += " GRANT " + g.Privilege + " ON " + defaultObjTypeKeyword(g.ObjType) + " TO " + granteeSQL(g.Grantee)
	return sql
}

func defaultPrivilegeRevokeSQL(g catalog.DefaultPrivilegeGrant) string {
	sql := "ALTER DEFAULT PRIVILEGES FOR ROLE " + g.ForRole
	if g.InSchema != "" {
		sql += " IN SCHEMA " + g.InSchema
	}
	sql += " REVOKE " + g.Privilege + " ON " + defaultObjTypeKeyword(g.ObjType) + " FROM " + granteeSQL(g.Grantee)
	return sql
}

func defaultObjTypeKeyword(t catalog.DefaultPrivilegeObjType) string {
	switch t {
	case catalog.DefaclRelation:
		return "TABLES"
	case catalog.DefaclSequence:
		return "SEQUENCES"
	case catalog.DefaclFunction:
		return "FUNCTIONS"
	case catalog.DefaclType:
		return "TYPES"
	case catalog.DefaclSchema:
		return "SCHEMAS"
	default:
		return "TABLES"
	}
}
