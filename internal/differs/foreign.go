package differs

import (
	"fmt"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

func optionsClause(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for _, k := range sortedMapKeys(opts) {
		parts = append(parts, fmt.Sprintf("%s %s", k, ident.QuoteLiteral(opts[k])))
	}
	return " OPTIONS (" + strings.Join(parts, ", ") + ")"
}

// ForeignDataWrappers diffs CREATE FOREIGN DATA WRAPPER objects.
func ForeignDataWrappers(ctx *Context, main, branch map[string]*catalog.ForeignDataWrapper) []*change.Change {
	mainByID := reindex(main, (*catalog.ForeignDataWrapper).StableID)
	branchByID := reindex(branch, (*catalog.ForeignDataWrapper).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.ForeignDataWrapper) bool {
		return a.Handler == b.Handler && a.Validator == b.Validator && optionsEqual(a.Options, b.Options) &&
			a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
	})

	var out []*change.Change
	for _, f := range created {
		id := f.StableID()
		sql := fmt.Sprintf("CREATE FOREIGN DATA WRAPPER %s", ident.Quote(f.Name))
		if f.Handler != "" {
			sql += " HANDLER " + f.Handler
		}
		if f.Validator != "" {
			sql += " VALIDATOR " + f.Validator
		}
		sql += optionsClause(f.Options)
		out = append(out, change.Create(string(catalog.ObjectKindForeignDataWrapper), id, sql, nil, nil))
		out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindForeignDataWrapper, "", string(catalog.ObjectKindForeignDataWrapper), id,
			objectACLRef(catalog.ObjectKindForeignDataWrapper, ident.Quote(f.Name)), f.ACL)...)
	}
	for _, f := range dropped {
		out = append(out, change.Drop(string(catalog.ObjectKindForeignDataWrapper), f.StableID(),
			fmt.Sprintf("DROP FOREIGN DATA WRAPPER %s", ident.Quote(f.Name))))
	}
	for _, pair := range altered {
		out = append(out, change.Drop(string(catalog.ObjectKindForeignDataWrapper), pair.ID,
			fmt.Sprintf("DROP FOREIGN DATA WRAPPER %s", ident.Quote(pair.Old.Name))))
		sql := fmt.Sprintf("CREATE FOREIGN DATA WRAPPER %s", ident.Quote(pair.New.Name))
		if pair.New.Handler != "" {
			sql += " HANDLER " + pair.New.Handler
		}
		sql += optionsClause(pair.New.Options)
		out = append(out, change.Create(string(catalog.ObjectKindForeignDataWrapper), pair.ID, sql, nil, nil))
		out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindForeignDataWrapper, "", string(catalog.ObjectKindForeignDataWrapper), pair.ID,
			objectACLRef(catalog.ObjectKindForeignDataWrapper, ident.Quote(pair.New.Name)), pair.New.ACL)...)
	}
	return out
}

// ForeignServers diffs CREATE SERVER objects.
func ForeignServers(ctx *Context, main, branch map[string]*catalog.ForeignServer) []*change.Change {
	mainByID := reindex(main, (*catalog.ForeignServer).StableID)
	branchByID := reindex(branch, (*catalog.ForeignServer).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.ForeignServer) bool {
		return a.Type == b.Type && a.Version == b.Version && optionsEqual(a.Options, b.Options) &&
			a.Comment == b.Comment && aclEqual(a.ACL, b.ACL)
	})

	var out []*change.Change
	for _, s := range created {
		out = append(out, createForeignServer(ctx, s)...)
	}
	for _, s := range dropped {
		out = append(out, change.Drop(string(catalog.ObjectKindForeignServer), s.StableID(), fmt.Sprintf("DROP SERVER %s", ident.Quote(s.Name))))
	}
	for _, pair := range altered {
		var sets []string
		if pair.Old.Type != pair.New.Type {
			sets = append(sets, "TYPE "+ident.QuoteLiteral(pair.New.Type))
		}
		if pair.Old.Version != pair.New.Version {
			sets = append(sets, "VERSION "+ident.QuoteLiteral(pair.New.Version))
		}
		if len(sets) > 0 {
			out = append(out, change.Alter(string(catalog.ObjectKindForeignServer), pair.ID,
				fmt.Sprintf("ALTER SERVER %s %s", ident.Quote(pair.New.Name), strings.Join(sets, " ")), nil))
		}
		if !optionsEqual(pair.Old.Options, pair.New.Options) {
			out = append(out, change.Alter(string(catalog.ObjectKindForeignServer), pair.ID,
				fmt.Sprintf("ALTER SERVER %s%s", ident.Quote(pair.New.Name), optionsClause(pair.New.Options)), nil))
		}
		out = append(out, reconcileACL(ctx, catalog.ObjectKindForeignServer, string(catalog.ObjectKindForeignServer), pair.ID,
			objectACLRef(catalog.ObjectKindForeignServer, ident.Quote(pair.New.Name)), pair.Old.ACL, pair.New.ACL)...)
	}
	return out
}

func createForeignServer(ctx *Context, s *catalog.ForeignServer) []*change.Change {
	id := s.StableID()
	sql := fmt.Sprintf("CREATE SERVER %s", ident.Quote(s.Name))
	if s.Type != "" {
		sql += " TYPE " + ident.QuoteLiteral(s.Type)
	}
	if s.Version != "" {
		sql += " VERSION " + ident.QuoteLiteral(s.Version)
	}
	sql += fmt.Sprintf(" FOREIGN DATA WRAPPER %s", ident.Quote(s.FDWName))
	sql += optionsClause(s.Options)
	requires := []string{ident.StableID(ident.KindForeignDataWrapper, "", s.FDWName, "")}
	out := []*change.Change{change.Create(string(catalog.ObjectKindForeignServer), id, sql, nil, requires)}
	out = append(out, reconcileACLForCreate(ctx, catalog.ObjectKindForeignServer, "", string(catalog.ObjectKindForeignServer), id,
		objectACLRef(catalog.ObjectKindForeignServer, ident.Quote(s.Name)), s.ACL)...)
	return out
}

// Subscriptions diffs CREATE SUBSCRIPTION objects (logical replication
// consumer side). Connection string and slot name changes require
// drop+create; publication list and enabled flag are alterable.
func Subscriptions(main, branch map[string]*catalog.Subscription) []*change.Change {
	mainByID := reindex(main, (*catalog.Subscription).StableID)
	branchByID := reindex(branch, (*catalog.Subscription).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.Subscription) bool {
		return a.ConnInfo == b.ConnInfo && a.SlotName == b.SlotName && stringSliceSetEqual(a.Publications, b.Publications) &&
			a.Enabled == b.Enabled && a.Comment == b.Comment
	})

	var out []*change.Change
	for _, s := range created {
		out = append(out, createSubscription(s))
	}
	for _, s := range dropped {
		out = append(out, change.Drop("subscription", s.StableID(), fmt.Sprintf("DROP SUBSCRIPTION %s", ident.Quote(s.Name))))
	}
	for _, pair := range altered {
		if pair.Old.ConnInfo != pair.New.ConnInfo || pair.Old.SlotName != pair.New.SlotName {
			out = append(out, change.Drop("subscription", pair.ID, fmt.Sprintf("DROP SUBSCRIPTION %s", ident.Quote(pair.Old.Name))))
			out = append(out, createSubscription(pair.New))
			continue
		}
		if !stringSliceSetEqual(pair.Old.Publications, pair.New.Publications) {
			out = append(out, change.Alter("subscription", pair.ID,
				fmt.Sprintf("ALTER SUBSCRIPTION %s SET PUBLICATION %s", ident.Quote(pair.New.Name), strings.Join(pair.New.Publications, ", ")), nil))
		}
		if pair.Old.Enabled != pair.New.Enabled {
			state := "DISABLE"
			if pair.New.Enabled {
				state = "ENABLE"
			}
			out = append(out, change.Alter("subscription", pair.ID, fmt.Sprintf("ALTER SUBSCRIPTION %s %s", ident.Quote(pair.New.Name), state), nil))
		}
	}
	return out
}

func createSubscription(s *catalog.Subscription) *change.Change {
	id := s.StableID()
	sql := fmt.Sprintf("CREATE SUBSCRIPTION %s CONNECTION %s PUBLICATION %s",
		ident.Quote(s.Name), ident.QuoteLiteral(s.ConnInfo), strings.Join(s.Publications, ", "))
	return change.Create("subscription", id, sql, nil, nil)
}

// Publications diffs CREATE PUBLICATION objects (logical replication
// producer side). The table set and publish-action flags are alterable in
// place via ALTER PUBLICATION.
func Publications(main, branch map[string]*catalog.Publication) []*change.Change {
	mainByID := reindex(main, (*catalog.Publication).StableID)
	branchByID := reindex(branch, (*catalog.Publication).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.Publication) bool {
		return a.AllTables == b.AllTables && stringSliceSetEqual(a.Tables, b.Tables) &&
			a.PublishInsert == b.PublishInsert && a.PublishUpdate == b.PublishUpdate &&
			a.PublishDelete == b.PublishDelete && a.PublishTruncate == b.PublishTruncate && a.Comment == b.Comment
	})

	var out []*change.Change
	for _, p := range created {
		out = append(out, createPublication(p))
	}
	for _, p := range dropped {
		out = append(out, change.Drop("publication", p.StableID(), fmt.Sprintf("DROP PUBLICATION %s", ident.Quote(p.Name))))
	}
	for _, pair := range altered {
		id := pair.ID
		new := pair.New
		if pair.Old.AllTables != new.AllTables || !stringSliceSetEqual(pair.Old.Tables, new.Tables) {
			if new.AllTables {
				out = append(out, change.Alter("publication", id, fmt.Sprintf("ALTER PUBLICATION %s SET ALL TABLES", ident.Quote(new.Name)), nil))
			} else {
				out = append(out, change.Alter("publication", id,
					fmt.Sprintf("ALTER PUBLICATION %s SET TABLE %s", ident.Quote(new.Name), strings.Join(new.Tables, ", ")), nil))
			}
		}
		if publishActionsChanged(pair.Old, new) {
			out = append(out, change.Alter("publication", id,
				fmt.Sprintf("ALTER PUBLICATION %s SET (%s)", ident.Quote(new.Name), publishWithClause(new)), nil))
		}
	}
	return out
}

func publishActionsChanged(a, b *catalog.Publication) bool {
	return a.PublishInsert != b.PublishInsert || a.PublishUpdate != b.PublishUpdate ||
		a.PublishDelete != b.PublishDelete || a.PublishTruncate != b.PublishTruncate
}

func publishWithClause(p *catalog.Publication) string {
	var actions []string
	if p.PublishInsert {
		actions = append(actions, "insert")
	}
	if p.PublishUpdate {
		actions = append(actions, "update")
	}
	if p.PublishDelete {
		actions = append(actions, "delete")
	}
	if p.PublishTruncate {
		actions = append(actions, "truncate")
	}
	return "publish = " + ident.QuoteLiteral(strings.Join(actions, ","))
}

func createPublication(p *catalog.Publication) *change.Change {
	id := p.StableID()
	sql := "CREATE PUBLICATION " + ident.Quote(p.Name)
	if p.AllTables {
		sql += " FOR ALL TABLES"
	} else if len(p.Tables) > 0 {
		sql += " FOR TABLE " + strings.Join(p.Tables, ", ")
	}
	sql += " WITH (" + publishWithClause(p) + ")"
	return change.Create("publication", id, sql, nil, nil)
}

// EventTriggers diffs CREATE EVENT TRIGGER objects. Only the enabled state
// is alterable; event and tag list changes are drop+create.
func EventTriggers(main, branch map[string]*catalog.EventTrigger) []*change.Change {
	mainByID := reindex(main, (*catalog.EventTrigger).StableID)
	branchByID := reindex(branch, (*catalog.EventTrigger).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, func(a, b *catalog.EventTrigger) bool {
		return a.Event == b.Event && stringSliceSetEqual(a.Tags, b.Tags) && a.Function == b.Function &&
			a.Enabled == b.Enabled && a.Comment == b.Comment
	})

	var out []*change.Change
	for _, e := range created {
		out = append(out, createEventTrigger(e))
	}
	for _, e := range dropped {
		out = append(out, change.Drop("event_trigger", e.StableID(), fmt.Sprintf("DROP EVENT TRIGGER %s", ident.Quote(e.Name))))
	}
	for _, pair := range altered {
		if pair.Old.Event != pair.New.Event || !stringSliceSetEqual(pair.Old.Tags, pair.New.Tags) || pair.Old.Function != pair.New.Function {
			out = append(out, change.Drop("event_trigger", pair.ID, fmt.Sprintf("DROP EVENT TRIGGER %s", ident.Quote(pair.Old.Name))))
			out = append(out, createEventTrigger(pair.New))
			continue
		}
		if pair.Old.Enabled != pair.New.Enabled {
			out = append(out, change.Alter("event_trigger", pair.ID,
				fmt.Sprintf("ALTER EVENT TRIGGER %s %s", ident.Quote(pair.New.Name), eventTriggerEnableClause(pair.New.Enabled)), nil))
		}
	}
	return out
}

func eventTriggerEnableClause(state string) string {
	switch state {
	case "D":
		return "DISABLE"
	case "R":
		return "ENABLE REPLICA"
	case "A":
		return "ENABLE ALWAYS"
	default:
		return "ENABLE"
	}
}

func createEventTrigger(e *catalog.EventTrigger) *change.Change {
	id := e.StableID()
	sql := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s", ident.Quote(e.Name), e.Event)
	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = ident.QuoteLiteral(t)
		}
		sql += " WHEN TAG IN (" + strings.Join(tags, ", ") + ")"
	}
	sql += " EXECUTE FUNCTION " + e.Function
	return change.Create("event_trigger", id, sql, nil, nil)
}
