package differs

import (
	"fmt"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Sequences diffs standalone sequences. A sequence owned by a table
// (OwnedByTable set) that is itself being dropped this pass is skipped
// entirely: the table's own DROP TABLE cascades to it, and emitting a
// redundant DROP SEQUENCE would target an id the topological analyzer
// would otherwise have to special-case.
func Sequences(ctx *Context, schemaName string, main, branch map[string]*catalog.Sequence) []*change.Change {
	mainByID := reindex(main, (*catalog.Sequence).StableID)
	branchByID := reindex(branch, (*catalog.Sequence).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, sequenceDataEqual)

	var out []*change.Change
	for _, s := range created {
		out = append(out, createSequence(ctx, s)...)
	}
	for _, s := range dropped {
		if s.OwnedByTable != "" && ctx.DroppedTables[ident.StableID(ident.KindTable, s.Schema, s.OwnedByTable, "")] {
			continue
		}
		out = append(out, dropSequence(s))
	}
	for _, pair := range altered {
		out = append(out, alterSequence(pair.Old, pair.New)...)
		out = append(out, reconcileACL(ctx, catalog.ObjectKindSequence, string(catalog.ObjectKindSequence), pair.ID,
			objectACLRef(catalog.ObjectKindSequence, sequenceName(pair.New)), pair.Old.ACL, pair.New.ACL)...)
	}
	return out
}

func sequenceDataEqual(a, b *catalog.Sequence) bool {
	return a.DataType == b.DataType && a.StartValue == b.StartValue && int64PtrEqual(a.MinValue, b.MinValue) &&
		int64PtrEqual(a.MaxValue, b.MaxValue) && a.Increment == b.Increment && a.Cache == b.Cache &&
		a.CycleOption == b.CycleOption && a.Comment == b.Comment && a.OwnedByTable == b.OwnedByTable &&
		a.OwnedByColumn == b.OwnedByColumn && aclEqual(a.ACL, b.ACL)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sequenceName(s *catalog.Sequence) string { return ident.FullyQualifyName(s.Schema, s.Name) }

func createSequence(ctx *Context, s *catalog.Sequence) []*change.Change {
	id := s.StableID()
	sql := fmt.Sprintf("CREATE SEQUENCE %s AS %s INCREMENT BY %d", sequenceName(s), s.DataType, s.Increment)
	sql += sequenceBounds(s)
	sql += fmt.Sprintf(" START WITH %d CACHE %d", s.StartValue, s.Cache)
	if s.CycleOption {
		sql += " CYCLE"
	} else {
		sql += " NO CYCLE"
	}
	var out []*change.Change
	out = append(out, change.Create(string(catalog.ObjectKindSequence), id, sql, nil, nil))
	if s.OwnedByTable != "" {
		tableID := ident.StableID(ident.KindTable, s.Schema, s.OwnedByTable, "")
		out = append(out, change.Alter(string(catalog.ObjectKindSequence), id,
			fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s.%s", sequenceName(s), ident.FullyQualifyName(s.Schema, s.OwnedByTable), ident.Quote(s.OwnedByColumn)),
			[]string{tableID}))
	}
	if s.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindSequence), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON SEQUENCE %s IS %s", sequenceName(s), ident.QuoteLiteral(s.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindSequence, s.Schema, string(catalog.ObjectKindSequence), id,
		objectACLRef(catalog.ObjectKindSequence, sequenceName(s)), s.ACL)...)
	return out
}

func sequenceBounds(s *catalog.Sequence) string {
	out := ""
	if s.MinValue != nil {
		out += fmt.Sprintf(" MINVALUE %d", *s.MinValue)
	} else {
		out += " NO MINVALUE"
	}
	if s.MaxValue != nil {
		out += fmt.Sprintf(" MAXVALUE %d", *s.MaxValue)
	} else {
		out += " NO MAXVALUE"
	}
	return out
}

func dropSequence(s *catalog.Sequence) *change.Change {
	return change.Drop(string(catalog.ObjectKindSequence), s.StableID(), fmt.Sprintf("DROP SEQUENCE %s", sequenceName(s)))
}

func alterSequence(old, new *catalog.Sequence) []*change.Change {
	id := new.StableID()
	var clauses []string
	if old.DataType != new.DataType {
		clauses = append(clauses, "AS "+new.DataType)
	}
	if old.Increment != new.Increment {
		clauses = append(clauses, fmt.Sprintf("INCREMENT BY %d", new.Increment))
	}
	if !int64PtrEqual(old.MinValue, new.MinValue) || !int64PtrEqual(old.MaxValue, new.MaxValue) {
		clauses = append(clauses, trimLeadingSpace(sequenceBounds(new)))
	}
	if old.StartValue != new.StartValue {
		clauses = append(clauses, fmt.Sprintf("START WITH %d", new.StartValue))
	}
	if old.Cache != new.Cache {
		clauses = append(clauses, fmt.Sprintf("CACHE %d", new.Cache))
	}
	if old.CycleOption != new.CycleOption {
		if new.CycleOption {
			clauses = append(clauses, "CYCLE")
		} else {
			clauses = append(clauses, "NO CYCLE")
		}
	}

	var out []*change.Change
	if len(clauses) > 0 {
		sql := "ALTER SEQUENCE " + sequenceName(new)
		for _, c := range clauses {
			sql += " " + c
		}
		out = append(out, change.Alter(string(catalog.ObjectKindSequence), id, sql, nil))
	}
	if old.OwnedByTable != new.OwnedByTable || old.OwnedByColumn != new.OwnedByColumn {
		if new.OwnedByTable == "" {
			out = append(out, change.Alter(string(catalog.ObjectKindSequence), id,
				fmt.Sprintf("ALTER SEQUENCE %s OWNED BY NONE", sequenceName(new)), nil))
		} else {
			tableID := ident.StableID(ident.KindTable, new.Schema, new.OwnedByTable, "")
			out = append(out, change.Alter(string(catalog.ObjectKindSequence), id,
				fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s.%s", sequenceName(new), ident.FullyQualifyName(new.Schema, new.OwnedByTable), ident.Quote(new.OwnedByColumn)),
				[]string{tableID}))
		}
	}
	if c := diffComment(string(catalog.ObjectKindSequence), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON SEQUENCE %s IS %s", sequenceName(new), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON SEQUENCE %s IS NULL", sequenceName(new)) }); c != nil {
		out = append(out, c)
	}
	return out
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}
