// Package change implements the change-record hierarchy (spec.md §4.G):
// one record per CREATE/ALTER/DROP/COMMENT/GRANT/REVOKE/REPLACE operation,
// each carrying the {creates, requires, drops} id sets the topological
// analyzer (internal/topo) consumes to order the final plan.
//
// Go has no native sum type, so the "one variant per concrete change" of
// spec.md §9 is expressed as a single concrete Change struct tagged by Op,
// mirroring the tagged diffContext the teacher repo already uses in
// internal/diff/diff.go (DiffType + DiffOperation + Source). Constructors
// below play the role each former subclass would have played.
package change

import "sort"

// Op is the change record's operation tag.
type Op int

const (
	OpCreate Op = iota
	OpAlter
	OpDrop
	OpComment
	OpGrant
	OpRevoke
	OpRevokeGrantOption
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "CREATE"
	case OpAlter:
		return "ALTER"
	case OpDrop:
		return "DROP"
	case OpComment:
		return "COMMENT"
	case OpGrant:
		return "GRANT"
	case OpRevoke:
		return "REVOKE"
	case OpRevokeGrantOption:
		return "REVOKE_GRANT_OPTION"
	case OpReplace:
		return "REPLACE"
	default:
		return "UNKNOWN"
	}
}

// Scope further distinguishes GRANT/REVOKE/COMMENT records from plain
// object mutations (spec.md §3 "Change record").
type Scope string

const (
	ScopeObject           Scope = "object"
	ScopeComment          Scope = "comment"
	ScopePrivilege        Scope = "privilege"
	ScopeMembership       Scope = "membership"
	ScopeDefaultPrivilege Scope = "default_privilege"
)

// Change is one statement-sized unit of the plan.
type Change struct {
	Op         Op
	Scope      Scope
	ObjectKind string // e.g. "table", "sequence", "role" — for diagnostics/paths, not control flow
	ObjectID   string // the object's stable id, for diagnostics and logging

	CreatesIDs []string
	RequiresIDs []string
	DropsIDs   []string

	sql string
}

// Creates returns the ids this change introduces.
func (c *Change) Creates() []string { return c.CreatesIDs }

// Requires returns the ids this change depends on.
func (c *Change) Requires() []string { return c.RequiresIDs }

// Drops returns the ids this change removes.
func (c *Change) Drops() []string { return c.DropsIDs }

// Serialize renders the change as one SQL statement with no trailing
// semicolon (spec.md §6). Serialize is pure: same Change, same string.
func (c *Change) Serialize() string { return c.sql }

// New builds a Change. Callers (internal/differs) use the Op-named
// constructors below rather than calling New directly, to keep each
// call site self-documenting about which "variant" it emits.
func New(op Op, scope Scope, objectKind, objectID, sql string, creates, requires, drops []string) *Change {
	return &Change{
		Op:          op,
		Scope:       scope,
		ObjectKind:  objectKind,
		ObjectID:    objectID,
		sql:         sql,
		CreatesIDs:  dedupSorted(creates),
		RequiresIDs: dedupSorted(requires),
		DropsIDs:    dedupSorted(drops),
	}
}

// Create builds a CREATE<Kind> change. creates always includes objectID.
func Create(objectKind, objectID, sql string, extraCreates, requires []string) *Change {
	return New(OpCreate, ScopeObject, objectKind, objectID, sql, append([]string{objectID}, extraCreates...), requires, nil)
}

// Alter builds an ALTER<Kind>... change. requires always includes objectID.
func Alter(objectKind, objectID, sql string, requires []string) *Change {
	return New(OpAlter, ScopeObject, objectKind, objectID, sql, nil, append([]string{objectID}, requires...), nil)
}

// Drop builds a DROP<Kind> change. drops and requires both include objectID.
func Drop(objectKind, objectID, sql string) *Change {
	return New(OpDrop, ScopeObject, objectKind, objectID, sql, nil, []string{objectID}, []string{objectID})
}

// Replace builds a CREATE OR REPLACE change (views, functions): it behaves
// like an alter for dependency purposes (it does not drop the object id).
func Replace(objectKind, objectID, sql string, requires []string) *Change {
	return New(OpReplace, ScopeObject, objectKind, objectID, sql, nil, append([]string{objectID}, requires...), nil)
}

// Comment builds a COMMENT ON ... change (create variant: comment being
// set/changed) or a drop variant (comment being cleared), selected by op.
func Comment(op Op, objectKind, objectID, commentID, sql string, requires []string) *Change {
	creates, drops := []string(nil), []string(nil)
	if op == OpDrop {
		drops = []string{commentID}
	} else {
		creates = []string{commentID}
	}
	return New(op, ScopeComment, objectKind, objectID, sql, creates, append([]string{objectID}, requires...), drops)
}

// Grant builds a GRANT ... change. creates the acl id; requires the object
// and the grantee role.
func Grant(objectKind, objectID, aclID, roleID, sql string) *Change {
	return New(OpGrant, ScopePrivilege, objectKind, objectID, sql, []string{aclID}, []string{objectID, roleID}, nil)
}

// Revoke builds a REVOKE ... change. drops the acl id; requires the object
// and the grantee role.
func Revoke(objectKind, objectID, aclID, roleID, sql string) *Change {
	return New(OpRevoke, ScopePrivilege, objectKind, objectID, sql, nil, []string{objectID, roleID}, []string{aclID})
}

// RevokeGrantOption builds a REVOKE GRANT OPTION FOR ... change. It
// additionally requires the acl id it is narrowing (spec.md §4.G).
func RevokeGrantOption(objectKind, objectID, aclID, roleID, sql string) *Change {
	return New(OpRevokeGrantOption, ScopePrivilege, objectKind, objectID, sql, nil, []string{objectID, roleID, aclID}, nil)
}

// DefaultPrivilege builds an ALTER DEFAULT PRIVILEGES ... change.
func DefaultPrivilege(objectID, sql string, requires []string) *Change {
	return New(OpAlter, ScopeDefaultPrivilege, "default_privilege", objectID, sql, nil, requires, nil)
}

func dedupSorted(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
