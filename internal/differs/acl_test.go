package differs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

// These exercise the GRANT/REVOKE serialization path end to end through a
// real per-kind differ, so a regression that leaves the stable id ("kind:
// schema.name") in the emitted SQL instead of "KEYWORD schema.name" shows
// up as a failing string comparison rather than silently passing.

func TestTableGrantEmitsKeywordAndQualifiedName(t *testing.T) {
	old := &catalog.Table{Schema: "public", Name: "orders"}
	new := &catalog.Table{Schema: "public", Name: "orders",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "SELECT", Grantable: true}}}

	changes := Tables(newCtx(),
		map[string]*catalog.Table{old.StableID(): old}, map[string]*catalog.Table{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `GRANT SELECT ON TABLE public.orders TO alice WITH GRANT OPTION`, changes[0].Serialize())
}

func TestTableRevokeEmitsKeywordAndQualifiedName(t *testing.T) {
	old := &catalog.Table{Schema: "public", Name: "orders",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "SELECT"}}}
	new := &catalog.Table{Schema: "public", Name: "orders"}

	changes := Tables(newCtx(),
		map[string]*catalog.Table{old.StableID(): old}, map[string]*catalog.Table{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `REVOKE SELECT ON TABLE public.orders FROM alice`, changes[0].Serialize())
}

func TestTableRevokeGrantOptionEmitsKeywordAndQualifiedName(t *testing.T) {
	old := &catalog.Table{Schema: "public", Name: "orders",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "SELECT", Grantable: true}}}
	new := &catalog.Table{Schema: "public", Name: "orders",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "SELECT", Grantable: false}}}

	changes := Tables(newCtx(),
		map[string]*catalog.Table{old.StableID(): old}, map[string]*catalog.Table{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `REVOKE GRANT OPTION FOR SELECT ON TABLE public.orders FROM alice`, changes[0].Serialize())
}

func TestTableColumnGrantEmitsColumnList(t *testing.T) {
	old := &catalog.Table{Schema: "public", Name: "orders"}
	new := &catalog.Table{Schema: "public", Name: "orders",
		ACL: []catalog.ACLEntry{
			{Grantee: "alice", Privilege: "SELECT", Columns: []string{"id", "total"}},
			{Grantee: "alice", Privilege: "UPDATE", Columns: []string{"id", "total"}},
		}}

	changes := Tables(newCtx(),
		map[string]*catalog.Table{old.StableID(): old}, map[string]*catalog.Table{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `GRANT SELECT, UPDATE (id, total) ON TABLE public.orders TO alice`, changes[0].Serialize())
}

func TestSequenceGrantEmitsKeywordAndQualifiedName(t *testing.T) {
	old := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint"}
	new := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "USAGE", Grantable: true}}}

	changes := Sequences(newCtx(), "public",
		map[string]*catalog.Sequence{old.StableID(): old}, map[string]*catalog.Sequence{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `GRANT USAGE ON SEQUENCE public.orders_id_seq TO alice WITH GRANT OPTION`, changes[0].Serialize())
}

func TestDomainGrantEmitsKeywordAndQualifiedName(t *testing.T) {
	old := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text"}
	new := &catalog.Type{Schema: "public", Name: "email", Kind: catalog.TypeKindDomain, BaseType: "text",
		ACL: []catalog.ACLEntry{{Grantee: "alice", Privilege: "USAGE"}}}

	changes := Types(newCtx(),
		map[string]*catalog.Type{old.StableID(): old}, map[string]*catalog.Type{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, `GRANT USAGE ON DOMAIN public.email TO alice`, changes[0].Serialize())
}
