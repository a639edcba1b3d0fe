package differs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/diffkernel"
	"github.com/supabase/pg-toolbelt-sub009/internal/ident"
)

// Roles diffs cluster-wide roles. Roles have no ACL of their own (they are
// themselves grantees) so this differ skips the ACL-reconciliation step of
// the common skeleton entirely.
func Roles(main, branch map[string]*catalog.Role) []*change.Change {
	mainByID := reindex(main, (*catalog.Role).StableID)
	branchByID := reindex(branch, (*catalog.Role).StableID)

	created, dropped, altered := diffkernel.Partition(mainByID, branchByID, roleDataEqual)

	var out []*change.Change
	for _, r := range created {
		out = append(out, createRole(r)...)
	}
	for _, r := range dropped {
		out = append(out, dropRole(r))
	}
	for _, pair := range altered {
		out = append(out, alterRole(pair.Old, pair.New)...)
	}
	return out
}

func reindex[T any](m map[string]T, id func(T) string) map[string]T {
	out := make(map[string]T, len(m))
	for _, v := range m {
		out[id(v)] = v
	}
	return out
}

func roleDataEqual(a, b *catalog.Role) bool {
	if a.Superuser != b.Superuser || a.CreateDB != b.CreateDB || a.CreateRole != b.CreateRole ||
		a.Inherit != b.Inherit || a.Login != b.Login || a.Replication != b.Replication ||
		a.BypassRLS != b.BypassRLS || a.ConnectionLimit != b.ConnectionLimit || a.Comment != b.Comment {
		return false
	}
	if !stringSliceSetEqual(a.MemberOf, b.MemberOf) {
		return false
	}
	if len(a.Config) != len(b.Config) {
		return false
	}
	for k, v := range a.Config {
		if b.Config[k] != v {
			return false
		}
	}
	return true
}

func stringSliceSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func roleAttrClauses(r *catalog.Role) []string {
	var parts []string
	parts = append(parts, boolAttr(r.Superuser, "SUPERUSER", "NOSUPERUSER"))
	parts = append(parts, boolAttr(r.CreateDB, "CREATEDB", "NOCREATEDB"))
	parts = append(parts, boolAttr(r.CreateRole, "CREATEROLE", "NOCREATEROLE"))
	parts = append(parts, boolAttr(r.Inherit, "INHERIT", "NOINHERIT"))
	parts = append(parts, boolAttr(r.Login, "LOGIN", "NOLOGIN"))
	parts = append(parts, boolAttr(r.Replication, "REPLICATION", "NOREPLICATION"))
	parts = append(parts, boolAttr(r.BypassRLS, "BYPASSRLS", "NOBYPASSRLS"))
	parts = append(parts, "CONNECTION LIMIT "+strconv.Itoa(r.ConnectionLimit))
	return parts
}

func boolAttr(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func createRole(r *catalog.Role) []*change.Change {
	id := r.StableID()
	sql := fmt.Sprintf("CREATE ROLE %s WITH %s", ident.Quote(r.Name), strings.Join(roleAttrClauses(r), " "))
	var out []*change.Change
	out = append(out, change.Create(string(catalog.ObjectKindRole), id, sql, nil, nil))
	for _, grp := range sortedStrings(r.MemberOf) {
		out = append(out, change.Grant(string(catalog.ObjectKindRole), id, ident.ACLID(id, grp), ident.RoleID(grp),
			fmt.Sprintf("GRANT %s TO %s", ident.Quote(grp), ident.Quote(r.Name))))
	}
	for _, k := range sortedMapKeys(r.Config) {
		out = append(out, change.Alter(string(catalog.ObjectKindRole), id,
			fmt.Sprintf("ALTER ROLE %s SET %s = %s", ident.Quote(r.Name), k, ident.QuoteLiteral(r.Config[k])), nil))
	}
	if r.Comment != "" {
		out = append(out, change.Comment(change.OpCreate, string(catalog.ObjectKindRole), id, ident.CommentID(id),
			fmt.Sprintf("COMMENT ON ROLE %s IS %s", ident.Quote(r.Name), ident.QuoteLiteral(r.Comment)), []string{id}))
	}
	return out
}

func dropRole(r *catalog.Role) *change.Change {
	id := r.StableID()
	return change.Drop(string(catalog.ObjectKindRole), id, fmt.Sprintf("DROP ROLE %s", ident.Quote(r.Name)))
}

func alterRole(old, new *catalog.Role) []*change.Change {
	id := new.StableID()
	var out []*change.Change

	attrsChanged := old.Superuser != new.Superuser || old.CreateDB != new.CreateDB || old.CreateRole != new.CreateRole ||
		old.Inherit != new.Inherit || old.Login != new.Login || old.Replication != new.Replication ||
		old.BypassRLS != new.BypassRLS || old.ConnectionLimit != new.ConnectionLimit
	if attrsChanged {
		out = append(out, change.Alter(string(catalog.ObjectKindRole), id,
			fmt.Sprintf("ALTER ROLE %s WITH %s", ident.Quote(new.Name), strings.Join(roleAttrClauses(new), " ")), nil))
	}

	oldMembers := toSet(old.MemberOf)
	newMembers := toSet(new.MemberOf)
	for _, grp := range sortedStrings(new.MemberOf) {
		if !oldMembers[grp] {
			out = append(out, change.Grant(string(catalog.ObjectKindRole), id, ident.ACLID(id, grp), ident.RoleID(grp),
				fmt.Sprintf("GRANT %s TO %s", ident.Quote(grp), ident.Quote(new.Name))))
		}
	}
	for _, grp := range sortedStrings(old.MemberOf) {
		if !newMembers[grp] {
			out = append(out, change.Revoke(string(catalog.ObjectKindRole), id, ident.ACLID(id, grp), ident.RoleID(grp),
				fmt.Sprintf("REVOKE %s FROM %s", ident.Quote(grp), ident.Quote(new.Name))))
		}
	}

	for _, k := range sortedMapKeys(new.Config) {
		if old.Config[k] == new.Config[k] {
			continue
		}
		out = append(out, change.Alter(string(catalog.ObjectKindRole), id,
			fmt.Sprintf("ALTER ROLE %s SET %s = %s", ident.Quote(new.Name), k, ident.QuoteLiteral(new.Config[k])), nil))
	}
	if len(old.Config) > 0 && len(new.Config) == 0 {
		out = append(out, change.Alter(string(catalog.ObjectKindRole), id,
			fmt.Sprintf("ALTER ROLE %s RESET ALL", ident.Quote(new.Name)), nil))
	} else {
		for _, k := range sortedMapKeys(old.Config) {
			if _, ok := new.Config[k]; !ok {
				out = append(out, change.Alter(string(catalog.ObjectKindRole), id,
					fmt.Sprintf("ALTER ROLE %s RESET %s", ident.Quote(new.Name), k), nil))
			}
		}
	}

	if c := diffComment(string(catalog.ObjectKindRole), id, ident.CommentID(id), old.Comment, new.Comment,
		func(text string) string {
			return fmt.Sprintf("COMMENT ON ROLE %s IS %s", ident.Quote(new.Name), ident.QuoteLiteral(text))
		},
		func() string { return fmt.Sprintf("COMMENT ON ROLE %s IS NULL", ident.Quote(new.Name)) }); c != nil {
		out = append(out, c)
	}
	return out
}

func sortedStrings(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
