package differs

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Types diffs CREATE TYPE (enum/composite/range) and CREATE DOMAIN objects.
// For ENUM, value insertion, comment and ACL changes are applied in place;
// any other enum change, and every change to a COMPOSITE/RANGE type, is
// non-alterable in PostgreSQL and is rewritten as drop+create. DOMAIN base
// type and collation are likewise non-alterable, but its NOT NULL/DEFAULT/
// CHECK facets are.
func Types(ctx *Context, main, branch map[string]*catalog.Type) []*change.Change {
	mainByID := reindex(main, (*catalog.Type).StableID)
	branchByID := reindex(branch, (*catalog.Type).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, typeDataEqual)

	var out []*change.Change
	for _, t := range created {
		out = append(out, createType(ctx, t)...)
	}
	for _, t := range dropped {
		out = append(out, dropType(t))
	}
	for _, pair := range altered {
		out = append(out, alterType(ctx, pair.Old, pair.New)...)
	}
	return out
}

func typeDataEqual(a, b *catalog.Type) bool {
	if a.Kind != b.Kind || a.Comment != b.Comment || !aclEqual(a.ACL, b.ACL) {
		return false
	}
	switch a.Kind {
	case catalog.TypeKindEnum:
		return enumValuesEqual(a.EnumValues, b.EnumValues)
	case catalog.TypeKindComposite:
		return compositeColumnsEqual(a.Columns, b.Columns)
	case catalog.TypeKindDomain:
		return a.BaseType == b.BaseType && a.NotNull == b.NotNull && a.Default == b.Default &&
			a.Collation == b.Collation && domainConstraintsEqual(a.Constraints, b.Constraints)
	case catalog.TypeKindRange:
		return a.SubType == b.SubType && a.SubTypeOpClass == b.SubTypeOpClass && a.Canonical == b.Canonical &&
			a.SubtypeDiff == b.SubtypeDiff && a.Multirange == b.Multirange
	default:
		return true
	}
}

func enumValuesEqual(a, b []catalog.EnumValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			return false
		}
	}
	return true
}

func compositeColumnsEqual(a, b []*catalog.TypeColumn) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].DataType != b[i].DataType {
			return false
		}
	}
	return true
}

func domainConstraintsEqual(a, b []*catalog.DomainConstraint) bool {
	if len(a) != len(b) {
		return false
	}
	bm := make(map[string]*catalog.DomainConstraint, len(b))
	for _, c := range b {
		bm[c.Name] = c
	}
	for _, c := range a {
		other, ok := bm[c.Name]
		if !ok || other.Definition != c.Definition || other.IsValid != c.IsValid {
			return false
		}
	}
	return true
}

func typeName(t *catalog.Type) string { return ident.FullyQualifyName(t.Schema, t.Name) }

func createType(ctx *Context, t *catalog.Type) []*change.Change {
	id := t.StableID()
	var sql string
	switch t.Kind {
	case catalog.TypeKindEnum:
		labels := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			labels[i] = ident.QuoteLiteral(v.Label)
		}
		sql = fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", typeName(t), strings.Join(labels, ", "))
	case catalog.TypeKindComposite:
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = ident.Quote(c.Name) + " " + c.DataType
		}
		sql = fmt.Sprintf("CREATE TYPE %s AS (%s)", typeName(t), strings.Join(cols, ", "))
	case catalog.TypeKindDomain:
		sql = fmt.Sprintf("CREATE DOMAIN %s AS %s", typeName(t), t.BaseType)
		if t.Collation != "" {
			sql += " COLLATE " + ident.Quote(t.Collation)
		}
		if t.Default != "" {
			sql += " DEFAULT " + t.Default
		}
		if t.NotNull {
			sql += " NOT NULL"
		}
		for _, c := range t.Constraints {
			sql += fmt.Sprintf(" CONSTRAINT %s CHECK (%s)", ident.Quote(c.Name), c.Definition)
		}
	case catalog.TypeKindRange:
		sql = fmt.Sprintf("CREATE TYPE %s AS RANGE (SUBTYPE = %s", typeName(t), t.SubType)
		if t.SubTypeOpClass != "" {
			sql += ", SUBTYPE_OPCLASS = " + t.SubTypeOpClass
		}
		if t.Canonical != "" {
			sql += ", CANONICAL = " + t.Canonical
		}
		if t.SubtypeDiff != "" {
			sql += ", SUBTYPE_DIFF = " + t.SubtypeDiff
		}
		if t.Multirange != "" {
			sql += ", MULTIRANGE_TYPE_NAME = " + t.Multirange
		}
		sql += ")"
	}

	kind := typeObjectKind(t)
	out := []*change.Change{change.Create(string(kind), id, sql, nil, nil)}
	if t.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(kind), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON %s %s IS %s", typeDDLKeyword(t), typeName(t), ident.QuoteLiteral(t.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, kind, t.Schema, string(kind), id, objectACLRef(kind, typeName(t)), t.ACL)...)
	return out
}

func typeObjectKind(t *catalog.Type) catalog.ObjectKind {
	if t.Kind == catalog.TypeKindDomain {
		return catalog.ObjectKindDomain
	}
	return catalog.ObjectKindType
}

func typeDDLKeyword(t *catalog.Type) string {
	if t.Kind == catalog.TypeKindDomain {
		return "DOMAIN"
	}
	return "TYPE"
}

func dropType(t *catalog.Type) *change.Change {
	kind := typeObjectKind(t)
	return change.Drop(string(kind), t.StableID(), fmt.Sprintf("DROP %s %s", typeDDLKeyword(t), typeName(t)))
}

// alterType implements the single alterable path (enum value insertion) and
// falls back to drop+create for every other structural change, per the
// per-kind differ's non-alterable check (spec.md §4.F common skeleton step 3).
func alterType(ctx *Context, old, new *catalog.Type) []*change.Change {
	id := new.StableID()
	kind := typeObjectKind(new)

	if new.Kind == catalog.TypeKindEnum && old.Kind == catalog.TypeKindEnum {
		if alterable, changes := enumAlterChanges(id, old, new); alterable {
			out := changes
			if c := diffComment(string(kind), id, ident.CommentID(id), old.Comment, new.Comment,
				func(text string) string {
					return fmt.Sprintf("COMMENT ON TYPE %s IS %s", typeName(new), ident.QuoteLiteral(text))
				},
				func() string { return fmt.Sprintf("COMMENT ON TYPE %s IS NULL", typeName(new)) }); c != nil {
				out = append(out, c)
			}
			out = append(out, reconcileACL(ctx, kind, string(kind), id, objectACLRef(kind, typeName(new)), old.ACL, new.ACL)...)
			return out
		}
	}

	if new.Kind == catalog.TypeKindDomain && old.Kind == catalog.TypeKindDomain && old.BaseType == new.BaseType && old.Collation == new.Collation {
		out := domainAlterChanges(old, new)
		if c := diffComment(string(kind), id, ident.CommentID(id), old.Comment, new.Comment,
			func(text string) string {
				return fmt.Sprintf("COMMENT ON DOMAIN %s IS %s", typeName(new), ident.QuoteLiteral(text))
			},
			func() string { return fmt.Sprintf("COMMENT ON DOMAIN %s IS NULL", typeName(new)) }); c != nil {
			out = append(out, c)
		}
		out = append(out, reconcileACL(ctx, kind, string(kind), id, objectACLRef(kind, typeName(new)), old.ACL, new.ACL)...)
		return out
	}

	// non-alterable structural change: drop and recreate under the same id.
	var out []*change.Change
	out = append(out, change.Drop(string(kind), id, fmt.Sprintf("DROP %s %s", typeDDLKeyword(old), typeName(old))))
	out = append(out, createType(ctx, new)...)
	return out
}

// enumAlterChanges computes the ADD VALUE statements needed to turn old's
// ordered label list into new's, or reports alterable=false when any
// existing label was removed or reordered (neither is expressible via
// ALTER TYPE ... ADD VALUE, so the caller falls back to drop+create).
func enumAlterChanges(id string, old, new *catalog.Type) (alterable bool, changes []*change.Change) {
	oldLabels := make([]string, len(old.EnumValues))
	for i, v := range old.EnumValues {
		oldLabels[i] = v.Label
	}
	newLabels := make([]string, len(new.EnumValues))
	for i, v := range new.EnumValues {
		newLabels[i] = v.Label
	}

	// every old label must still appear, in the same relative order.
	oi := 0
	for _, nl := range newLabels {
		if oi < len(oldLabels) && oldLabels[oi] == nl {
			oi++
		}
	}
	if oi != len(oldLabels) {
		return false, nil
	}

	kind := catalog.ObjectKindType
	oi = 0
	var prev string
	for _, nl := range newLabels {
		if oi < len(oldLabels) && oldLabels[oi] == nl {
			prev = nl
			oi++
			continue
		}
		var sql string
		if oi < len(oldLabels) {
			sql = fmt.Sprintf("ALTER TYPE %s ADD VALUE %s BEFORE %s", typeName(new), ident.QuoteLiteral(nl), ident.QuoteLiteral(oldLabels[oi]))
		} else {
			sql = fmt.Sprintf("ALTER TYPE %s ADD VALUE %s AFTER %s", typeName(new), ident.QuoteLiteral(nl), ident.QuoteLiteral(prev))
		}
		changes = append(changes, change.Alter(string(kind), id, sql, nil))
		prev = nl
	}
	return true, changes
}

func domainAlterChanges(old, new *catalog.Type) []*change.Change {
	kind := catalog.ObjectKindDomain
	id := new.StableID()
	var out []*change.Change

	if old.Default != new.Default {
		if new.Default == "" {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s DROP DEFAULT", typeName(new)), nil))
		} else {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s SET DEFAULT %s", typeName(new), new.Default), nil))
		}
	}
	if old.NotNull != new.NotNull {
		if new.NotNull {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s SET NOT NULL", typeName(new)), nil))
		} else {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s DROP NOT NULL", typeName(new)), nil))
		}
	}

	oldByName := make(map[string]*catalog.DomainConstraint, len(old.Constraints))
	for _, c := range old.Constraints {
		oldByName[c.Name] = c
	}
	newByName := make(map[string]*catalog.DomainConstraint, len(new.Constraints))
	for _, c := range new.Constraints {
		newByName[c.Name] = c
	}

	for _, c := range new.Constraints {
		prev, existed := oldByName[c.Name]
		if existed && prev.Definition == c.Definition && prev.IsValid == c.IsValid {
			continue
		}
		if existed {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s DROP CONSTRAINT %s", typeName(new), ident.Quote(c.Name)), nil))
		}
		validClause := ""
		if !c.IsValid {
			validClause = " NOT VALID"
		}
		out = append(out, change.Alter(string(kind), id,
			fmt.Sprintf("ALTER DOMAIN %s ADD CONSTRAINT %s CHECK (%s)%s", typeName(new), ident.Quote(c.Name), c.Definition, validClause), nil))
	}
	for _, c := range old.Constraints {
		if _, stillExists := newByName[c.Name]; !stillExists {
			out = append(out, change.Alter(string(kind), id, fmt.Sprintf("ALTER DOMAIN %s DROP CONSTRAINT %s", typeName(new), ident.Quote(c.Name)), nil))
		}
	}
	return out
}
