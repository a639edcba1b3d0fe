package privilege

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

func TestDefaultPrivilegeStateSchemaFallsBackToGlobal(t *testing.T) {
	s := NewState([]catalog.DefaultPrivilegeGrant{
		{ForRole: "alice", ObjType: catalog.DefaclRelation, InSchema: "", Grantee: "bob", Privilege: "SELECT"},
	})

	effective := s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "app")
	require.Len(t, effective, 1)
	require.Equal(t, "bob", effective[0].Grantee)
	require.Equal(t, "SELECT", effective[0].Privilege)
}

func TestDefaultPrivilegeStateSchemaSpecificShadowsGlobal(t *testing.T) {
	s := NewState([]catalog.DefaultPrivilegeGrant{
		{ForRole: "alice", ObjType: catalog.DefaclRelation, InSchema: "", Grantee: "bob", Privilege: "SELECT"},
		{ForRole: "alice", ObjType: catalog.DefaclRelation, InSchema: "app", Grantee: "carol", Privilege: "INSERT"},
	})

	effective := s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "app")
	require.Len(t, effective, 1)
	require.Equal(t, "carol", effective[0].Grantee)

	// a schema with no schema-specific entries still sees the global default
	other := s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "other")
	require.Len(t, other, 1)
	require.Equal(t, "bob", other[0].Grantee)
}

func TestDefaultPrivilegeStateApplyGrantThenRevoke(t *testing.T) {
	s := NewState(nil)
	s.ApplyGrant("alice", catalog.DefaclRelation, "app", "bob", []string{"SELECT", "INSERT"}, false)

	effective := s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "app")
	require.Len(t, effective, 2)

	s.ApplyRevoke("alice", catalog.DefaclRelation, "app", "bob", []string{"SELECT"})
	effective = s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "app")
	require.Len(t, effective, 1)
	require.Equal(t, "INSERT", effective[0].Privilege)
}

func TestDefaultPrivilegeStateRevokeGrantOptionAlsoRemovesBase(t *testing.T) {
	s := NewState(nil)
	s.ApplyGrant("alice", catalog.DefaclRelation, "", "bob", []string{"SELECT"}, true)
	s.ApplyRevoke("alice", catalog.DefaclRelation, "", "bob", []string{"SELECT"})

	effective := s.GetEffectiveDefaults("alice", catalog.ObjectKindTable, "app")
	require.Empty(t, effective)
}
