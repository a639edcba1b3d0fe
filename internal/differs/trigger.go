package differs

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Triggers diffs a table's triggers. Every field of CREATE TRIGGER is
// non-alterable except the enabled/disabled flag (not modeled here, see
// Non-goals), so any other change is drop+create under the same id.
func Triggers(tableRequires []string, main, branch map[string]*catalog.Trigger) []*change.Change {
	mainByID := reindex(main, (*catalog.Trigger).StableID)
	branchByID := reindex(branch, (*catalog.Trigger).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, triggerDataEqual)

	var out []*change.Change
	for _, t := range created {
		out = append(out, createTrigger(tableRequires, t)...)
	}
	for _, t := range dropped {
		out = append(out, dropTrigger(t))
	}
	for _, pair := range altered {
		out = append(out, dropTrigger(pair.Old))
		out = append(out, createTrigger(tableRequires, pair.New)...)
	}
	return out
}

func triggerDataEqual(a, b *catalog.Trigger) bool {
	return a.Timing == b.Timing && eventsEqual(a.Events, b.Events) && a.Level == b.Level && a.Function == b.Function &&
		stringSliceSetEqual(a.Columns, b.Columns) && a.Condition == b.Condition && a.Comment == b.Comment &&
		a.IsConstraint == b.IsConstraint && a.Deferrable == b.Deferrable && a.InitiallyDeferred == b.InitiallyDeferred &&
		a.OldTable == b.OldTable && a.NewTable == b.NewTable
}

func eventsEqual(a, b []catalog.TriggerEvent) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := make([]string, len(a)), make([]string, len(b))
	for i, e := range a {
		as[i] = string(e)
	}
	for i, e := range b {
		bs[i] = string(e)
	}
	return stringSliceSetEqual(as, bs)
}

func triggerName(t *catalog.Trigger) string {
	return ident.Quote(t.Name) + " ON " + ident.FullyQualifyName(t.Schema, t.Table)
}

func createTrigger(tableRequires []string, t *catalog.Trigger) []*change.Change {
	id := t.StableID()
	timing := strings.ReplaceAll(string(t.Timing), "_", " ")
	events := make([]string, len(t.Events))
	for i, e := range t.Events {
		events[i] = string(e)
	}
	eventClause := strings.Join(events, " OR ")
	for _, e := range t.Events {
		if e == catalog.EventUpdate && len(t.Columns) > 0 {
			eventClause = strings.Replace(eventClause, "UPDATE", "UPDATE OF "+strings.Join(quoteAll(t.Columns), ", "), 1)
		}
	}

	sql := "CREATE "
	if t.IsConstraint {
		sql += "CONSTRAINT "
	}
	sql += fmt.Sprintf("TRIGGER %s %s %s ON %s", ident.Quote(t.Name), timing, eventClause, ident.FullyQualifyName(t.Schema, t.Table))
	if t.OldTable != "" || t.NewTable != "" {
		sql += " REFERENCING"
		if t.OldTable != "" {
			sql += " OLD TABLE AS " + ident.Quote(t.OldTable)
		}
		if t.NewTable != "" {
			sql += " NEW TABLE AS " + ident.Quote(t.NewTable)
		}
	}
	sql += " FOR EACH " + string(t.Level)
	if t.Condition != "" {
		sql += " WHEN (" + t.Condition + ")"
	}
	sql += " EXECUTE FUNCTION " + t.Function

	return []*change.Change{change.Create(string(ident.KindTrigger), id, sql, nil, tableRequires)}
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = ident.Quote(s)
	}
	return out
}

func dropTrigger(t *catalog.Trigger) *change.Change {
	return change.Drop(string(ident.KindTrigger), t.StableID(), fmt.Sprintf("DROP TRIGGER %s", triggerName(t)))
}

// Policies diffs a table's row-level security policies. Command and
// permissive/restrictive are non-alterable (drop+create); using/with-check
// and role list are alterable in place.
func Policies(tableRequires []string, main, branch map[string]*catalog.RLSPolicy) []*change.Change {
	mainByID := reindex(main, (*catalog.RLSPolicy).StableID)
	branchByID := reindex(branch, (*catalog.RLSPolicy).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, policyDataEqual)

	var out []*change.Change
	for _, p := range created {
		out = append(out, createPolicy(tableRequires, p))
	}
	for _, p := range dropped {
		out = append(out, dropPolicy(p))
	}
	for _, pair := range altered {
		out = append(out, alterPolicy(tableRequires, pair.Old, pair.New)...)
	}
	return out
}

func policyDataEqual(a, b *catalog.RLSPolicy) bool {
	return a.Command == b.Command && a.Permissive == b.Permissive && stringSliceSetEqual(a.Roles, b.Roles) &&
		a.Using == b.Using && a.WithCheck == b.WithCheck && a.Comment == b.Comment
}

func policyName(p *catalog.RLSPolicy) string {
	return ident.Quote(p.Name) + " ON " + ident.FullyQualifyName(p.Schema, p.Table)
}

func createPolicy(tableRequires []string, p *catalog.RLSPolicy) *change.Change {
	id := p.StableID()
	sql := fmt.Sprintf("CREATE POLICY %s ON %s", ident.Quote(p.Name), ident.FullyQualifyName(p.Schema, p.Table))
	if !p.Permissive {
		sql = fmt.Sprintf("CREATE POLICY %s ON %s AS RESTRICTIVE", ident.Quote(p.Name), ident.FullyQualifyName(p.Schema, p.Table))
	}
	sql += " FOR " + string(p.Command)
	roles := p.Roles
	if len(roles) == 0 {
		roles = []string{"PUBLIC"}
	}
	sql += " TO " + strings.Join(quoteRoles(roles), ", ")
	if p.Using != "" {
		sql += " USING (" + p.Using + ")"
	}
	if p.WithCheck != "" {
		sql += " WITH CHECK (" + p.WithCheck + ")"
	}
	return change.Create(string(ident.KindPolicy), id, sql, nil, tableRequires)
}

func quoteRoles(roles []string) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = granteeSQL(r)
	}
	return out
}

func dropPolicy(p *catalog.RLSPolicy) *change.Change {
	return change.Drop(string(ident.KindPolicy), p.StableID(), fmt.Sprintf("DROP POLICY %s", policyName(p)))
}

// alterPolicy rewrites the policy as drop+create when the non-alterable
// command/permissive axes change; otherwise it emits targeted ALTER
// POLICY clauses for roles/using/with-check.
func alterPolicy(tableRequires []string, old, new *catalog.RLSPolicy) []*change.Change {
	id := new.StableID()
	if old.Command != new.Command || old.Permissive != new.Permissive {
		return []*change.Change{dropPolicy(old), createPolicy(tableRequires, new)}
	}

	var out []*change.Change
	if !stringSliceSetEqual(old.Roles, new.Roles) {
		roles := new.Roles
		if len(roles) == 0 {
			roles = []string{"PUBLIC"}
		}
		out = append(out, change.Alter(string(ident.KindPolicy), id,
			fmt.Sprintf("ALTER POLICY %s ON %s TO %s", ident.Quote(new.Name), ident.FullyQualifyName(new.Schema, new.Table), strings.Join(quoteRoles(roles), ", ")), nil))
	}
	if old.Using != new.Using || old.WithCheck != new.WithCheck {
		sql := fmt.Sprintf("ALTER POLICY %s ON %s", ident.Quote(new.Name), ident.FullyQualifyName(new.Schema, new.Table))
		if new.Using != "" {
			sql += " USING (" + new.Using + ")"
		}
		if new.WithCheck != "" {
			sql += " WITH CHECK (" + new.WithCheck + ")"
		}
		out = append(out, change.Alter(string(ident.KindPolicy), id, sql, nil))
	}
	if c := diffComment(string(ident.KindPolicy), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON POLICY %s IS %s", policyName(new), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON POLICY %s IS NULL", policyName(new)) }); c != nil {
		out = append(out, c)
	}
	return out
}
