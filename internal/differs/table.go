package differs

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Tables diffs base tables, their columns, constraints, indexes, triggers,
// and row-level security policies. A table whose partition strategy,
// partition-of relationship, or unlogged flag changes is non-alterable
// (those require drop+create); most other facets have a targeted ALTER
// TABLE or sibling-statement form. Changes to the partition key, the
// partition bound, a column's collation or a column's ACL mark the table
// as altered but emit no statement.
func Tables(ctx *Context, main, branch map[string]*catalog.Table) []*change.Change {
	mainByID := reindex(main, (*catalog.Table).StableID)
	branchByID := reindex(branch, (*catalog.Table).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, tableDataEqual)

	var out []*change.Change
	for _, t := range created {
		out = append(out, createTable(ctx, t)...)
	}
	for _, t := range dropped {
		ctx.DroppedTables[t.StableID()] = true
	}
	for _, t := range dropped {
		out = append(out, dropTable(t))
	}
	for _, pair := range altered {
		if pair.Old.IsPartitioned != pair.New.IsPartitioned || pair.Old.PartitionOf != pair.New.PartitionOf ||
			pair.Old.PartitionStrategy != pair.New.PartitionStrategy || pair.Old.Unlogged != pair.New.Unlogged {
			out = append(out, dropTable(pair.Old))
			out = append(out, createTable(ctx, pair.New)...)
			continue
		}
		out = append(out, alterTable(ctx, pair.Old, pair.New)...)
	}
	return out
}

func tableDataEqual(a, b *catalog.Table) bool {
	if a.Comment != b.Comment || a.RLSEnabled != b.RLSEnabled || a.RLSForced != b.RLSForced ||
		a.IsPartitioned != b.IsPartitioned || a.PartitionStrategy != b.PartitionStrategy ||
		a.PartitionKey != b.PartitionKey || a.PartitionOf != b.PartitionOf || a.PartitionBound != b.PartitionBound ||
		a.ReplicaIdentity != b.ReplicaIdentity || a.Unlogged != b.Unlogged || !aclEqual(a.ACL, b.ACL) {
		return false
	}
	if !columnsEqual(a.Columns, b.Columns) {
		return false
	}
	if !mapEqual(a.Constraints, b.Constraints, constraintDataEqual) {
		return false
	}
	if !mapEqual(a.Indexes, b.Indexes, indexDataEqual) {
		return false
	}
	if !mapEqual(a.Triggers, b.Triggers, triggerDataEqual) {
		return false
	}
	if !mapEqual(a.Policies, b.Policies, policyDataEqual) {
		return false
	}
	return true
}

func mapEqual[T any](a, b map[string]T, eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !eq(v, ov) {
			return false
		}
	}
	return true
}

func columnsEqual(a, b []*catalog.Column) bool {
	if len(a) != len(b) {
		return false
	}
	bm := make(map[string]*catalog.Column, len(b))
	for _, c := range b {
		bm[c.Name] = c
	}
	for _, c := range a {
		o, ok := bm[c.Name]
		if !ok || !columnDataEqual(c, o) {
			return false
		}
	}
	return true
}

func columnDataEqual(a, b *catalog.Column) bool {
	return a.DataType == b.DataType && a.IsNullable == b.IsNullable && strPtrEqual(a.DefaultValue, b.DefaultValue) &&
		a.Comment == b.Comment && a.Collation == b.Collation && aclEqual(a.ACL, b.ACL)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func constraintDataEqual(a, b *catalog.Constraint) bool {
	return a.Type == b.Type && stringSliceSetEqual(a.Columns, b.Columns) && a.ReferencedSchema == b.ReferencedSchema &&
		a.ReferencedTable == b.ReferencedTable && stringSliceSetEqual(a.ReferencedColumns, b.ReferencedColumns) &&
		a.CheckClause == b.CheckClause && a.DeleteRule == b.DeleteRule && a.UpdateRule == b.UpdateRule &&
		a.MatchType == b.MatchType && a.Deferrable == b.Deferrable && a.InitiallyDeferred == b.InitiallyDeferred &&
		a.IsValid == b.IsValid && a.Comment == b.Comment
}

func indexDataEqual(a, b *catalog.Index) bool {
	if a.Type != b.Type || a.Method != b.Method || a.IsPartial != b.IsPartial || a.IsExpression != b.IsExpression ||
		a.Where != b.Where || a.Comment != b.Comment || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		ac, bc := a.Columns[i], b.Columns[i]
		if ac.Name != bc.Name || ac.Expression != bc.Expression || ac.Direction != bc.Direction ||
			ac.Operator != bc.Operator || ac.NullsFirst != bc.NullsFirst {
			return false
		}
	}
	return true
}

func tableName(t *catalog.Table) string { return ident.FullyQualifyName(t.Schema, t.Name) }

func columnClause(c *catalog.Column) string {
	s := fmt.Sprintf("%s %s", ident.Quote(c.Name), c.DataType)
	if c.Collation != "" {
		s += " COLLATE " + ident.Quote(c.Collation)
	}
	if !c.IsNullable {
		s += " NOT NULL"
	}
	if c.IsGenerated && c.GeneratedExpr != nil {
		s += fmt.Sprintf(" GENERATED ALWAYS AS (%s) STORED", *c.GeneratedExpr)
	} else if c.DefaultValue != nil {
		s += " DEFAULT " + *c.DefaultValue
	}
	if c.Identity != nil {
		s += fmt.Sprintf(" GENERATED %s AS IDENTITY", strings.ReplaceAll(c.Identity.Generation, " ", " "))
	}
	return s
}

func constraintClause(c *catalog.Constraint) string {
	switch c.Type {
	case catalog.ConstraintPrimaryKey:
		return fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoteAll(c.Columns), ", "))
	case catalog.ConstraintUnique:
		return fmt.Sprintf("UNIQUE (%s)", strings.Join(quoteAll(c.Columns), ", "))
	case catalog.ConstraintCheck:
		validClause := ""
		if !c.IsValid {
			validClause = " NOT VALID"
		}
		return fmt.Sprintf("CHECK (%s)%s", c.CheckClause, validClause)
	case catalog.ConstraintForeignKey:
		sql := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)", strings.Join(quoteAll(c.Columns), ", "),
			ident.FullyQualifyName(c.ReferencedSchema, c.ReferencedTable), strings.Join(quoteAll(c.ReferencedColumns), ", "))
		if c.MatchType != "" {
			sql += " MATCH " + c.MatchType
		}
		if c.UpdateRule != "" {
			sql += " ON UPDATE " + c.UpdateRule
		}
		if c.DeleteRule != "" {
			sql += " ON DELETE " + c.DeleteRule
		}
		if !c.IsValid {
			sql += " NOT VALID"
		}
		return sql
	case catalog.ConstraintExclusion:
		return fmt.Sprintf("EXCLUDE USING gist (%s)", strings.Join(c.ExclusionElements, ", "))
	default:
		return ""
	}
}

func indexSQL(i *catalog.Index) string {
	unique := ""
	if i.Type == catalog.IndexUnique || i.Type == catalog.IndexPrimary {
		unique = "UNIQUE "
	}
	cols := make([]string, len(i.Columns))
	for idx, c := range i.Columns {
		part := c.Expression
		if part == "" {
			part = ident.Quote(c.Name)
		}
		if c.Direction != "" {
			part += " " + c.Direction
		}
		cols[idx] = part
	}
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s", unique, ident.Quote(i.Name), ident.FullyQualifyName(i.Schema, i.Table))
	if i.Method != "" {
		sql += " USING " + i.Method
	}
	sql += fmt.Sprintf(" (%s)", strings.Join(cols, ", "))
	if i.IsPartial && i.Where != "" {
		sql += " WHERE " + i.Where
	}
	return sql
}

func createTable(ctx *Context, t *catalog.Table) []*change.Change {
	id := t.StableID()
	colClauses := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colClauses[i] = columnClause(c)
	}
	sql := "CREATE "
	if t.Unlogged {
		sql += "UNLOGGED "
	}
	sql += fmt.Sprintf("TABLE %s (%s)", tableName(t), strings.Join(colClauses, ", "))
	if t.IsPartitioned {
		sql += fmt.Sprintf(" PARTITION BY %s (%s)", t.PartitionStrategy, t.PartitionKey)
	}
	var requires []string
	if t.PartitionOf != "" {
		requires = append(requires, t.PartitionOf)
		sql = fmt.Sprintf("CREATE TABLE %s PARTITION OF %s", tableName(t), t.PartitionOf)
		if t.PartitionBound != "" {
			sql += " " + t.PartitionBound
		}
	}

	var out []*change.Change
	out = append(out, change.Create(string(catalog.ObjectKindTable), id, sql, nil, requires))

	for _, cname := range sortedColumnNames(t.Columns) {
		c := columnByName(t.Columns, cname)
		if c.Comment != "" {
			out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindTable), id, ident.CommentID(id+"#column:"+c.Name),
				fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", tableName(t), ident.Quote(c.Name), ident.QuoteLiteral(c.Comment)), []string{id}))
		}
	}
	for _, cname := range sortedKeysOf(t.Constraints) {
		out = append(out, createConstraint(id, t, t.Constraints[cname]))
	}
	for _, iname := range sortedKeysOf(t.Indexes) {
		idx := t.Indexes[iname]
		out = append(out, change.Create(string(ident.KindIndex), idx.StableID(), indexSQL(idx), nil, []string{id}))
	}
	if t.RLSEnabled {
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id, fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", tableName(t)), nil))
	}
	if t.RLSForced {
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id, fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", tableName(t)), nil))
	}
	for _, pname := range sortedKeysOf(t.Policies) {
		out = append(out, createPolicy([]string{id}, t.Policies[pname]))
	}
	for _, tname := range sortedKeysOf(t.Triggers) {
		out = append(out, createTrigger([]string{id}, t.Triggers[tname])...)
	}
	if t.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindTable), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON TABLE %s IS %s", tableName(t), ident.QuoteLiteral(t.Comment)), []string{id}))
	}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindTable, t.Schema, string(catalog.ObjectKindTable), id,
		objectACLRef(catalog.ObjectKindTable, tableName(t)), t.ACL)...)
	return out
}

func sortedColumnNames(cols []*catalog.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	sortedInPlace(names)
	return names
}

func sortedInPlace(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func columnByName(cols []*catalog.Column, name string) *catalog.Column {
	for _, c := range cols {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func createConstraint(tableID string, t *catalog.Table, c *catalog.Constraint) *change.Change {
	var requires []string
	if c.Type == catalog.ConstraintForeignKey {
		requires = append(requires, ident.KeyID(ident.StableID(ident.KindTable, c.ReferencedSchema, c.ReferencedTable, ""), c.ReferencedColumns))
	}
	creates := []string{c.StableID()}
	if c.Type == catalog.ConstraintPrimaryKey || c.Type == catalog.ConstraintUnique {
		creates = append(creates, ident.KeyID(tableID, c.Columns))
	}
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", tableName(t), ident.Quote(c.Name), constraintClause(c))
	requires = append(requires, tableID)
	return change.Create(string(catalog.ObjectKindTable), c.StableID(), sql, creates[1:], requires)
}

func dropTable(t *catalog.Table) *change.Change {
	return change.Drop(string(catalog.ObjectKindTable), t.StableID(), fmt.Sprintf("DROP TABLE %s", tableName(t)))
}

func alterTable(ctx *Context, old, new *catalog.Table) []*change.Change {
	id := new.StableID()
	var out []*change.Change

	oldCols := make(map[string]*catalog.Column, len(old.Columns))
	for _, c := range old.Columns {
		oldCols[c.Name] = c
	}
	newCols := make(map[string]*catalog.Column, len(new.Columns))
	for _, c := range new.Columns {
		newCols[c.Name] = c
	}
	for _, c := range new.Columns {
		if _, existed := oldCols[c.Name]; !existed {
			out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
				fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", tableName(new), columnClause(c)), nil))
			if c.Comment != "" {
				out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindTable), id, ident.CommentID(id+"#column:"+c.Name),
					fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", tableName(new), ident.Quote(c.Name), ident.QuoteLiteral(c.Comment)), []string{id}))
			}
		}
	}
	for _, c := range old.Columns {
		if _, stillExists := newCols[c.Name]; !stillExists {
			out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
				fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", tableName(new), ident.Quote(c.Name)), nil))
		}
	}
	for _, c := range new.Columns {
		o, existed := oldCols[c.Name]
		if !existed || columnDataEqual(o, c) {
			continue
		}
		out = append(out, alterColumn(new, o, c)...)
	}

	oldByName, newByName := old.Constraints, new.Constraints
	for _, name := range sortedKeysOf(newByName) {
		c := newByName[name]
		o, existed := oldByName[name]
		if existed && constraintDataEqual(o, c) {
			continue
		}
		if existed {
			out = append(out, change.Drop(string(catalog.ObjectKindTable), o.StableID(),
				fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", tableName(new), ident.Quote(o.Name))))
		}
		out = append(out, createConstraint(id, new, c))
	}
	for _, name := range sortedKeysOf(oldByName) {
		if _, stillExists := newByName[name]; !stillExists {
			o := oldByName[name]
			out = append(out, change.Drop(string(catalog.ObjectKindTable), o.StableID(),
				fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", tableName(new), ident.Quote(o.Name))))
		}
	}

	for _, name := range sortedKeysOf(new.Indexes) {
		idx := new.Indexes[name]
		o, existed := old.Indexes[name]
		if existed && indexDataEqual(o, idx) {
			continue
		}
		if existed {
			out = append(out, change.Drop(string(ident.KindIndex), o.StableID(), fmt.Sprintf("DROP INDEX %s", ident.FullyQualifyName(o.Schema, o.Name))))
		}
		out = append(out, change.Create(string(ident.KindIndex), idx.StableID(), indexSQL(idx), nil, []string{id}))
	}
	for _, name := range sortedKeysOf(old.Indexes) {
		if _, stillExists := new.Indexes[name]; !stillExists {
			o := old.Indexes[name]
			out = append(out, change.Drop(string(ident.KindIndex), o.StableID(), fmt.Sprintf("DROP INDEX %s", ident.FullyQualifyName(o.Schema, o.Name))))
		}
	}

	if old.RLSEnabled != new.RLSEnabled {
		state := "DISABLE"
		if new.RLSEnabled {
			state = "ENABLE"
		}
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id, fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY", tableName(new), state), nil))
	}
	if old.RLSForced != new.RLSForced {
		state := "NO FORCE"
		if new.RLSForced {
			state = "FORCE"
		}
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id, fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY", tableName(new), state), nil))
	}
	if old.ReplicaIdentity != new.ReplicaIdentity {
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id, fmt.Sprintf("ALTER TABLE %s REPLICA IDENTITY %s", tableName(new), new.ReplicaIdentity), nil))
	}

	out = append(out, Triggers([]string{id}, old.Triggers, new.Triggers)...)
	out = append(out, Policies([]string{id}, old.Policies, new.Policies)...)

	if c := diffComment(string(catalog.ObjectKindTable), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string { return fmt.Sprintf("COMMENT ON TABLE %s IS %s", tableName(new), ident.QuoteLiteral(text)) },
		func() string { return fmt.Sprintf("COMMENT ON TABLE %s IS NULL", tableName(new)) }); c != nil {
		out = append(out, c)
	}
	out = append(out, reconcileACL(ctx, catalog.ObjectKindTable, string(catalog.ObjectKindTable), id,
		objectACLRef(catalog.ObjectKindTable, tableName(new)), old.ACL, new.ACL)...)
	return out
}

func alterColumn(t *catalog.Table, old, new *catalog.Column) []*change.Change {
	id := t.StableID()
	var out []*change.Change
	if old.DataType != new.DataType {
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", tableName(t), ident.Quote(new.Name), new.DataType), nil))
	}
	if old.IsNullable != new.IsNullable {
		clause := "SET NOT NULL"
		if new.IsNullable {
			clause = "DROP NOT NULL"
		}
		out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s", tableName(t), ident.Quote(new.Name), clause), nil))
	}
	if !strPtrEqual(old.DefaultValue, new.DefaultValue) {
		if new.DefaultValue == nil {
			out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", tableName(t), ident.Quote(new.Name)), nil))
		} else {
			out = append(out, change.Alter(string(catalog.ObjectKindTable), id,
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", tableName(t), ident.Quote(new.Name), *new.DefaultValue), nil))
		}
	}
	if c := diffComment(string(catalog.ObjectKindTable), id, ident.CommentID(id+"#column:"+new.Name), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", tableName(t), ident.Quote(new.Name), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS NULL", tableName(t), ident.Quote(new.Name)) }); c != nil {
		out = append(out, c)
	}
	return out
}
