package privilege

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

func TestDiffPrivilegesGrantAndRevoke(t *testing.T) {
	main := []catalog.ACLEntry{
		{Grantee: "alice", Privilege: "SELECT", Grantable: false},
	}
	branch := []catalog.ACLEntry{
		{Grantee: "alice", Privilege: "INSERT", Grantable: false},
	}

	diffs := DiffPrivileges(main, branch, "owner", catalog.ObjectKindTable, nil)
	d := diffs["alice"]
	require.NotNil(t, d)
	require.Len(t, d.Grants, 1)
	require.Equal(t, "INSERT", d.Grants[0].Privilege)
	require.Len(t, d.Revokes, 1)
	require.Equal(t, "SELECT", d.Revokes[0].Privilege)
}

func TestDiffPrivilegesGrantOptionChange(t *testing.T) {
	main := []catalog.ACLEntry{{Grantee: "bob", Privilege: "SELECT", Grantable: true}}
	branch := []catalog.ACLEntry{{Grantee: "bob", Privilege: "SELECT", Grantable: false}}

	diffs := DiffPrivileges(main, branch, "owner", catalog.ObjectKindTable, nil)
	d := diffs["bob"]
	require.NotNil(t, d)
	require.Empty(t, d.Grants)
	require.Empty(t, d.Revokes)
	require.Len(t, d.RevokeGrantOption, 1)
}

func TestDiffPrivilegesGrantOptionAddedIsAdditive(t *testing.T) {
	main := []catalog.ACLEntry{{Grantee: "bob", Privilege: "SELECT", Grantable: false}}
	branch := []catalog.ACLEntry{{Grantee: "bob", Privilege: "SELECT", Grantable: true}}

	diffs := DiffPrivileges(main, branch, "owner", catalog.ObjectKindTable, nil)
	d := diffs["bob"]
	require.NotNil(t, d)
	require.Len(t, d.Grants, 1)
	require.True(t, d.Grants[0].Grantable)
}

func TestDiffPrivilegesOwnerNeverEmitted(t *testing.T) {
	main := []catalog.ACLEntry{}
	branch := []catalog.ACLEntry{{Grantee: "owner", Privilege: "SELECT", Grantable: false}}
	diffs := DiffPrivileges(main, branch, "owner", catalog.ObjectKindTable, nil)
	require.Empty(t, diffs)
}

func TestDiffPrivilegesShadowedNonGrantableElided(t *testing.T) {
	acl := []catalog.ACLEntry{
		{Grantee: "alice", Privilege: "SELECT", Grantable: true},
		{Grantee: "alice", Privilege: "SELECT", Grantable: false},
	}
	filtered := filterACL(acl, "owner", catalog.ObjectKindTable)
	require.Len(t, filtered, 1)
	require.True(t, filtered[0].Grantable)
}

func TestDiffPrivilegesIdentical(t *testing.T) {
	acl := []catalog.ACLEntry{{Grantee: "alice", Privilege: "SELECT", Grantable: false}}
	diffs := DiffPrivileges(acl, acl, "owner", catalog.ObjectKindTable, nil)
	require.Empty(t, diffs)
}

func TestFormatObjectPrivilegeListAllPrivileges(t *testing.T) {
	all := AllPrivileges(catalog.ObjectKindSequence, 16)
	require.Equal(t, "ALL PRIVILEGES", FormatObjectPrivilegeList(catalog.ObjectKindSequence, all, 16))
}

func TestFormatObjectPrivilegeListPartial(t *testing.T) {
	require.Equal(t, "SELECT, USAGE", FormatObjectPrivilegeList(catalog.ObjectKindSequence, []string{"USAGE", "SELECT"}, 16))
}

func TestGroupByColumns(t *testing.T) {
	entries := []catalog.ACLEntry{
		{Grantee: "alice", Privilege: "SELECT", Grantable: false, Columns: []string{"a", "b"}},
		{Grantee: "alice", Privilege: "UPDATE", Grantable: false, Columns: []string{"a", "b"}},
		{Grantee: "alice", Privilege: "SELECT", Grantable: true, Columns: []string{"c"}},
	}
	groups := GroupByColumns(entries)
	require.Len(t, groups, 2)
	require.Equal(t, []string{"SELECT", "UPDATE"}, groups[0].Privs)
}
