package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Languages diffs CREATE LANGUAGE objects. Like collations, every defining
// attribute is non-alterable, so any handler/validator/trust change is
// drop+create; only owner and comment are mutable in place.
func Languages(main, branch map[string]*catalog.Language) []*change.Change {
	mainByID := reindex(main, (*catalog.Language).StableID)
	branchByID := reindex(branch, (*catalog.Language).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, languageDataEqual)

	var out []*change.Change
	for _, l := range created {
		out = append(out, createLanguage(l)...)
	}
	for _, l := range dropped {
		out = append(out, dropLanguage(l))
	}
	for _, pair := range altered {
		if pair.Old.Trusted != pair.New.Trusted || pair.Old.Handler != pair.New.Handler ||
			pair.Old.InlineFn != pair.New.InlineFn || pair.Old.Validator != pair.New.Validator {
			out = append(out, dropLanguage(pair.Old))
			out = append(out, createLanguage(pair.New)...)
			continue
		}
		out = append(out, alterLanguageMetadata(pair.Old, pair.New)...)
	}
	return out
}

func languageDataEqual(a, b *catalog.Language) bool {
	return a.Trusted == b.Trusted && a.Procedural == b.Procedural && a.Handler == b.Handler &&
		a.InlineFn == b.InlineFn && a.Validator == b.Validator && a.Owner == b.Owner && a.Comment == b.Comment
}

func createLanguage(l *catalog.Language) []*change.Change {
	id := l.StableID()
	sql := "CREATE "
	if l.Trusted {
		sql += "TRUSTED "
	}
	sql += fmt.Sprintf("LANGUAGE %s HANDLER %s", ident.Quote(l.Name), l.Handler)
	if l.InlineFn != "" {
		sql += " INLINE " + l.InlineFn
	}
	if l.Validator != "" {
		sql += " VALIDATOR " + l.Validator
	}
	out := []*change.Change{change.Create(string(catalog.ObjectKindLanguage), id, sql, nil, nil)}
	if l.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindLanguage), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON LANGUAGE %s IS %s", ident.Quote(l.Name), ident.QuoteLiteral(l.Comment)), []string{id}))
	}
	return out
}

func dropLanguage(l *catalog.Language) *change.Change {
	return change.Drop(string(catalog.ObjectKindLanguage), l.StableID(), fmt.Sprintf("DROP LANGUAGE %s", ident.Quote(l.Name)))
}

func alterLanguageMetadata(old, new *catalog.Language) []*change.Change {
	id := new.StableID()
	var out []*change.Change
	if old.Owner != new.Owner {
		out = append(out, change.Alter(string(catalog.ObjectKindLanguage), id,
			fmt.Sprintf("ALTER LANGUAGE %s OWNER TO %s", ident.Quote(new.Name), ident.Quote(new.Owner)), nil))
	}
	if c := diffComment(string(catalog.ObjectKindLanguage), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON LANGUAGE %s IS %s", ident.Quote(new.Name), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON LANGUAGE %s IS NULL", ident.Quote(new.Name)) }); c != nil {
		out = append(out, c)
	}
	return out
}
