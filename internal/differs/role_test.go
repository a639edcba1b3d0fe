package differs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

func TestRolesCreateEmitsAttributesAndMembership(t *testing.T) {
	branch := map[string]*catalog.Role{
		"app": {Name: "app", Login: true, Inherit: true, ConnectionLimit: -1, MemberOf: []string{"reader"}},
	}

	changes := Roles(map[string]*catalog.Role{}, branch)
	require.Len(t, changes, 2)
	require.Contains(t, changes[0].Serialize(), "CREATE ROLE app WITH")
	require.Contains(t, changes[0].Serialize(), "LOGIN")
	require.Equal(t, "GRANT reader TO app", changes[1].Serialize())
}

func TestRolesDropEmitsDropRole(t *testing.T) {
	main := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1},
	}

	changes := Roles(main, map[string]*catalog.Role{})
	require.Len(t, changes, 1)
	require.Equal(t, "DROP ROLE app", changes[0].Serialize())
}

func TestRolesAttributeChangeEmitsAlterRole(t *testing.T) {
	main := map[string]*catalog.Role{
		"app": {Name: "app", Login: false, ConnectionLimit: -1},
	}
	branch := map[string]*catalog.Role{
		"app": {Name: "app", Login: true, ConnectionLimit: -1},
	}

	changes := Roles(main, branch)
	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "ALTER ROLE app WITH")
	require.Contains(t, changes[0].Serialize(), "LOGIN")
}

func TestRolesConfigFullyClearedEmitsResetAll(t *testing.T) {
	main := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1, Config: map[string]string{"statement_timeout": "5000", "search_path": "app"}},
	}
	branch := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1},
	}

	changes := Roles(main, branch)
	require.Len(t, changes, 1)
	require.Equal(t, "ALTER ROLE app RESET ALL", changes[0].Serialize())
}

func TestRolesConfigPartialRemovalEmitsPerKeyReset(t *testing.T) {
	main := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1, Config: map[string]string{"statement_timeout": "5000", "search_path": "app"}},
	}
	branch := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1, Config: map[string]string{"search_path": "app"}},
	}

	changes := Roles(main, branch)
	require.Len(t, changes, 1)
	require.Equal(t, "ALTER ROLE app RESET statement_timeout", changes[0].Serialize())
}

func TestRolesNoChangeEmitsNothing(t *testing.T) {
	main := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1, MemberOf: []string{"reader"}},
	}
	branch := map[string]*catalog.Role{
		"app": {Name: "app", ConnectionLimit: -1, MemberOf: []string{"reader"}},
	}

	require.Empty(t, Roles(main, branch))
}
