package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Views diffs CREATE VIEW and CREATE MATERIALIZED VIEW objects together:
// View.Materialized picks the DDL keyword and the alter strategy. A plain
// view's definition change is a CREATE OR REPLACE VIEW (spec.md §4.F
// "View" — Replace, not drop+create); a materialized view's definition
// change has no REPLACE form and falls back to drop+create.
func Views(ctx *Context, main, branch map[string]*catalog.View) []*change.Change {
	mainByID := reindex(main, (*catalog.View).StableID)
	branchByID := reindex(branch, (*catalog.View).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, viewDataEqual)

	var out []*change.Change
	for _, v := range created {
		out = append(out, createView(ctx, v)...)
	}
	for _, v := range dropped {
		out = append(out, dropView(v))
	}
	for _, pair := range altered {
		out = append(out, alterView(ctx, pair.Old, pair.New)...)
	}
	return out
}

func viewDataEqual(a, b *catalog.View) bool {
	return a.Definition == b.Definition && a.Comment == b.Comment && optionsEqual(a.Options, b.Options) &&
		aclEqual(a.ACL, b.ACL)
}

func optionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func viewKeyword(v *catalog.View) string {
	if v.Materialized {
		return "MATERIALIZED VIEW"
	}
	return "VIEW"
}

func viewObjectKind(v *catalog.View) catalog.ObjectKind {
	if v.Materialized {
		return catalog.ObjectKindMaterializedView
	}
	return catalog.ObjectKindView
}

func viewName(v *catalog.View) string { return ident.FullyQualifyName(v.Schema, v.Name) }

func createView(ctx *Context, v *catalog.View) []*change.Change {
	id := v.StableID()
	kind := viewObjectKind(v)
	sql := fmt.Sprintf("CREATE %s %s AS %s", viewKeyword(v), viewName(v), v.Definition)

	out := []*change.Change{change.Create(string(kind), id, sql, nil, nil)}
	for _, k := range sortedMapKeys(v.Options) {
		out = append(out, change.Alter(string(kind), id,
			fmt.Sprintf("ALTER %s %s SET (%s = %s)", viewKeyword(v), viewName(v), k, v.Options[k]), nil))
	}
	if v.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(kind), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON %s %s IS %s", viewKeyword(v), viewName(v), ident.QuoteLiteral(v.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, kind, v.Schema, string(kind), id, objectACLRef(kind, viewName(v)), v.ACL)...)
	return out
}

func dropView(v *catalog.View) *change.Change {
	return change.Drop(string(viewObjectKind(v)), v.StableID(), fmt.Sprintf("DROP %s %s", viewKeyword(v), viewName(v)))
}

func alterView(ctx *Context, old, new *catalog.View) []*change.Change {
	id := new.StableID()
	kind := viewObjectKind(new)
	var out []*change.Change

	if old.Definition != new.Definition {
		if new.Materialized {
			out = append(out, change.Drop(string(kind), id, fmt.Sprintf("DROP MATERIALIZED VIEW %s", viewName(old))))
			out = append(out, createView(ctx, new)...)
			return out
		}
		out = append(out, change.Replace(string(kind), id, fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", viewName(new), new.Definition), nil))
	}

	for _, k := range sortedMapKeys(new.Options) {
		if old.Options[k] == new.Options[k] {
			continue
		}
		out = append(out, change.Alter(string(kind), id,
			fmt.Sprintf("ALTER %s %s SET (%s = %s)", viewKeyword(new), viewName(new), k, new.Options[k]), nil))
	}
	for _, k := range sortedMapKeys(old.Options) {
		if _, ok := new.Options[k]; !ok {
			out = append(out, change.Alter(string(kind), id,
				fmt.Sprintf("ALTER %s %s RESET (%s)", viewKeyword(new), viewName(new), k), nil))
		}
	}

	if c := diffComment(string(kind), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON %s %s IS %s", viewKeyword(new), viewName(new), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON %s %s IS NULL", viewKeyword(new), viewName(new)) }); c != nil {
		out = append(out, c)
	}
	out = append(out, reconcileACL(ctx, kind, string(kind), id, objectACLRef(kind, viewName(new)), old.ACL, new.ACL)...)
	return out
}
