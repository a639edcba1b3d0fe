package differs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/privilege"
)

func newCtx() *Context {
	return &Context{
		CurrentUser:   "postgres",
		ServerVersion: 16,
		DefaultPrivs:  privilege.NewState(nil),
		MainRoles:     map[string]*catalog.Role{},
		DroppedTables: map[string]bool{},
	}
}

func TestTypesEnumAddValueIsAlterable(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "status", Kind: catalog.TypeKindEnum,
		EnumValues: []catalog.EnumValue{{Label: "active"}, {Label: "done"}}}
	new := &catalog.Type{Schema: "public", Name: "status", Kind: catalog.TypeKindEnum,
		EnumValues: []catalog.EnumValue{{Label: "active"}, {Label: "pending"}, {Label: "done"}}}

	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old},
		map[string]*catalog.Type{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "ADD VALUE 'pending' BEFORE 'done'")
}

func TestTypesEnumAddValueAtEndUsesAfter(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "status", Kind: catalog.TypeKindEnum,
		EnumValues: []catalog.EnumValue{{Label: "active"}, {Label: "done"}}}
	new := &catalog.Type{Schema: "public", Name: "status", Kind: catalog.TypeKindEnum,
		EnumValues: []catalog.EnumValue{{Label: "active"}, {Label: "done"}, {Label: "archived"}}}

	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old},
		map[string]*catalog.Type{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "ADD VALUE 'archived' AFTER 'done'")
}

func TestTypesDomainBaseTypeChangeIsDropCreate(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text"}
	new := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "citext"}

	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old},
		map[string]*catalog.Type{new.StableID(): new})

	require.Len(t, changes, 2)
	require.Contains(t, changes[0].Serialize(), "DROP DOMAIN")
	require.Contains(t, changes[1].Serialize(), "CREATE DOMAIN")
}

func TestTypesDomainConstraintAddedIsAlterable(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text"}
	new := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text",
		Constraints: []*catalog.DomainConstraint{{Name: "email_check", Definition: "VALUE ~ '@'", IsValid: true}}}

	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old},
		map[string]*catalog.Type{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "ADD CONSTRAINT email_check CHECK (VALUE ~ '@')")
}

func TestDropType(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text"}
	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old},
		map[string]*catalog.Type{})
	require.Len(t, changes, 1)
	require.Equal(t, old.StableID(), changes[0].ObjectID)
	require.Equal(t, old.StableID(), changes[0].Drops()[0])
}
