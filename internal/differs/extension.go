package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Extensions diffs installed extensions. Version changes use ALTER
// EXTENSION ... UPDATE TO; schema relocation uses ALTER EXTENSION ... SET
// SCHEMA. Neither requires drop+create.
func Extensions(main, branch map[string]*catalog.Extension) []*change.Change {
	mainByID := reindex(main, (*catalog.Extension).StableID)
	branchByID := reindex(branch, (*catalog.Extension).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, extensionDataEqual)

	var out []*change.Change
	for _, e := range created {
		out = append(out, createExtension(e)...)
	}
	for _, e := range dropped {
		out = append(out, dropExtension(e))
	}
	for _, pair := range altered {
		out = append(out, alterExtension(pair.Old, pair.New)...)
	}
	return out
}

func extensionDataEqual(a, b *catalog.Extension) bool {
	return a.Schema == b.Schema && a.Version == b.Version && a.Comment == b.Comment
}

func createExtension(e *catalog.Extension) []*change.Change {
	id := e.StableID()
	sql := fmt.Sprintf("CREATE EXTENSION %s", ident.Quote(e.Name))
	if e.Schema != "" {
		sql += " SCHEMA " + ident.Quote(e.Schema)
	}
	if e.Version != "" {
		sql += fmt.Sprintf(" VERSION %s", ident.QuoteLiteral(e.Version))
	}
	if e.Cascade {
		sql += " CASCADE"
	}
	var requires []string
	if e.Schema != "" {
		requires = append(requires, ident.StableID(ident.KindSchema, "", e.Schema, ""))
	}
	out := []*change.Change{change.Create("extension", id, sql, nil, requires)}
	if e.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, "extension", id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON EXTENSION %s IS %s", ident.Quote(e.Name), ident.QuoteLiteral(e.Comment)), []string{id}))
	}
	return out
}

func dropExtension(e *catalog.Extension) *change.Change {
	return change.Drop("extension", e.StableID(), fmt.Sprintf("DROP EXTENSION %s", ident.Quote(e.Name)))
}

func alterExtension(old, new *catalog.Extension) []*change.Change {
	id := new.StableID()
	var out []*change.Change
	if old.Version != new.Version {
		out = append(out, change.Alter("extension", id,
			fmt.Sprintf("ALTER EXTENSION %s UPDATE TO %s", ident.Quote(new.Name), ident.QuoteLiteral(new.Version)), nil))
	}
	if old.Schema != new.Schema {
		out = append(out, change.Alter("extension", id,
			fmt.Sprintf("ALTER EXTENSION %s SET SCHEMA %s", ident.Quote(new.Name), ident.Quote(new.Schema)),
			[]string{ident.StableID(ident.KindSchema, "", new.Schema, "")}))
	}
	if c := diffComment("extension", id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON EXTENSION %s IS %s", ident.Quote(new.Name), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON EXTENSION %s IS NULL", ident.Quote(new.Name)) }); c != nil {
		out = append(out, c)
	}
	return out
}
