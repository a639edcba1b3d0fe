package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Schemas diffs the schema namespaces themselves: creation, drop, owner
// change, comment change, and ACL reconciliation. Schema contents (tables,
// views, ...) are diffed by the schema-contents differs called separately
// from the orchestrator, keyed by the same schema name.
func Schemas(ctx *Context, main, branch map[string]*catalog.Schema) []*change.Change {
	mainByID := reindex(main, (*catalog.Schema).StableID)
	branchByID := reindex(branch, (*catalog.Schema).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.Schema) bool {
		return a.Owner == b.Owner && a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
	})

	var out []*change.Change
	for _, s := range created {
		out = append(out, createSchema(ctx, s)...)
	}
	for _, s := range dropped {
		out = append(out, dropSchema(s))
	}
	for _, pair := range altered {
		out = append(out, alterSchema(ctx, pair.Old, pair.New)...)
	}
	return out
}

func createSchema(ctx *Context, s *catalog.Schema) []*change.Change {
	id := s.StableID()
	sql := fmt.Sprintf("CREATE SCHEMA %s", ident.Quote(s.Name))
	if s.Owner != "" {
		sql += " AUTHORIZATION " + ident.Quote(s.Owner)
	}
	out := []*change.Change{change.Create(string(catalog.ObjectKindSchema), id, sql, nil, nil)}
	if s.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindSchema), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON SCHEMA %s IS %s", ident.Quote(s.Name), ident.QuoteLiteral(s.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindSchema, s.Name, string(catalog.ObjectKindSchema), id,
		objectACLRef(catalog.ObjectKindSchema, ident.Quote(s.Name)), s.ACL)...)
	return out
}

func dropSchema(s *catalog.Schema) *change.Change {
	id := s.StableID()
	return change.Drop(string(catalog.ObjectKindSchema), id, fmt.Sprintf("DROP SCHEMA %s", ident.Quote(s.Name)))
}

func alterSchema(ctx *Context, old, new *catalog.Schema) []*change.Change {
	id := new.StableID()
	var out []*change.Change
	if old.Owner != new.Owner {
		out = append(out, change.Alter(string(catalog.ObjectKindSchema), id,
			fmt.Sprintf("ALTER SCHEMA %s OWNER TO %s", ident.Quote(new.Name), ident.Quote(new.Owner)), nil))
	}
	if c := diffComment(string(catalog.ObjectKindSchema), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON SCHEMA %s IS %s", ident.Quote(new.Name), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON SCHEMA %s IS NULL", ident.Quote(new.Name)) }); c != nil {
		out = append(out, c)
	}
	out = append(out, reconcileACL(ctx, catalog.ObjectKindSchema, string(catalog.ObjectKindSchema), id,
		objectACLRef(catalog.ObjectKindSchema, ident.Quote(new.Name)), old.ACL, new.ACL)...)
	return out
}

func aclEqual(a, b []catalog.ACLEntry) bool {
	if len(a) != len(b) {
		return false
	}
	am := map[string]bool{}
	for _, e := range a {
		am[aclKey(e)] = true
	}
	for _, e := range b {
		if !am[aclKey(e)] {
			return false
		}
	}
	return true
}

func aclKey(e catalog.ACLEntry) string {
	cols := ""
	for _, c := range e.Columns {
		cols += "," + c
	}
	g := "f"
	if e.Grantable {
		g = "t"
	}
	return e.Grantee + "|" + e.Privilege + "|" + g + "|" + cols
}
