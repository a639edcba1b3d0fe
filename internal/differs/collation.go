package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Collations diffs CREATE COLLATION objects. Every defining attribute
// (provider, locale, deterministic flag, ...) is non-alterable: PostgreSQL
// has no ALTER COLLATION clause for them, so any change is drop+create.
func Collations(main, branch map[string]*catalog.Collation) []*change.Change {
	mainByID := reindex(main, (*catalog.Collation).StableID)
	branchByID := reindex(branch, (*catalog.Collation).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, collationDataEqual)

	var out []*change.Change
	for _, c := range created {
		out = append(out, createCollation(c)...)
	}
	for _, c := range dropped {
		out = append(out, dropCollation(c))
	}
	for _, pair := range altered {
		o, n := pair.Old, pair.New
		if o.Provider == n.Provider && o.Deterministic == n.Deterministic && o.Encoding == n.Encoding &&
			o.Collate == n.Collate && o.Ctype == n.Ctype && o.Locale == n.Locale && o.ICURules == n.ICURules {
			out = append(out, alterCollationMetadata(o, n)...)
			continue
		}
		out = append(out, dropCollation(o))
		out = append(out, createCollation(n)...)
	}
	return out
}

func collationDataEqual(a, b *catalog.Collation) bool {
	return a.Provider == b.Provider && a.Deterministic == b.Deterministic && a.Encoding == b.Encoding &&
		a.Collate == b.Collate && a.Ctype == b.Ctype && a.Locale == b.Locale && a.ICURules == b.ICURules &&
		a.Owner == b.Owner && a.Comment == b.Comment
}

func collationName(c *catalog.Collation) string { return ident.FullyQualifyName(c.Schema, c.Name) }

func createCollation(c *catalog.Collation) []*change.Change {
	id := c.StableID()
	sql := fmt.Sprintf("CREATE COLLATION %s (PROVIDER = %s", collationName(c), c.Provider)
	if c.Locale != "" {
		sql += fmt.Sprintf(", LOCALE = %s", ident.QuoteLiteral(c.Locale))
	}
	if c.Collate != "" {
		sql += fmt.Sprintf(", LC_COLLATE = %s", ident.QuoteLiteral(c.Collate))
	}
	if c.Ctype != "" {
		sql += fmt.Sprintf(", LC_CTYPE = %s", ident.QuoteLiteral(c.Ctype))
	}
	if !c.Deterministic {
		sql += ", DETERMINISTIC = false"
	}
	if c.ICURules != "" {
		sql += fmt.Sprintf(", RULES = %s", ident.QuoteLiteral(c.ICURules))
	}
	sql += ")"

	out := []*change.Change{change.Create("collation", id, sql, nil, nil)}
	if c.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, "collation", id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON COLLATION %s IS %s", collationName(c), ident.QuoteLiteral(c.Comment)), []string{id}))
	}
	return out
}

func dropCollation(c *catalog.Collation) *change.Change {
	return change.Drop("collation", c.StableID(), fmt.Sprintf("DROP COLLATION %s", collationName(c)))
}

func alterCollationMetadata(old, new *catalog.Collation) []*change.Change {
	id := new.StableID()
	var out []*change.Change
	if old.Owner != new.Owner {
		out = append(out, change.Alter("collation", id, fmt.Sprintf("ALTER COLLATION %s OWNER TO %s", collationName(new), ident.Quote(new.Owner)), nil))
	}
	if c := diffComment("collation", id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON COLLATION %s IS %s", collationName(new), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON COLLATION %s IS NULL", collationName(new)) }); c != nil {
		out = append(out, c)
	}
	return out
}
