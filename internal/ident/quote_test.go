package ident

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeedsQuoting(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   bool
	}{
		{"simple lowercase", "users", false},
		{"reserved word", "user", true},
		{"limit keyword", "limit", true},
		{"with underscore", "user_name", false},
		{"starts with underscore", "_private", false},
		{"starts with number", "1table", true},
		{"contains dash", "user-table", true},
		{"camelCase", "firstName", true},
		{"UPPERCASE", "USERS", true},
	}

	for reservedWord := range reservedWords {
		tests = append(tests, struct {
			name       string
			identifier string
			expected   bool
		}{"reserved:" + reservedWord, reservedWord, true})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, NeedsQuoting(tt.identifier))
		})
	}
}

func TestQuoteIdempotent(t *testing.T) {
	require.Equal(t, `"User Name"`, Quote(`"User Name"`))
	require.Equal(t, `users`, Quote("users"))
	require.Equal(t, `"user"`, Quote("user"))
	require.Equal(t, `"a""b"`, Quote(`a"b`))
}

func TestQuoteLiteral(t *testing.T) {
	require.Equal(t, `'it''s'`, QuoteLiteral("it's"))
	require.Equal(t, `'back\\slash'`, QuoteLiteral(`back\slash`))
}

func TestStableID(t *testing.T) {
	require.Equal(t, "table:public.users", StableID(KindTable, "public", "users", ""))
	require.Equal(t, "function:public.f(integer,text)", StableID(KindFunction, "public", "f", "integer,text"))
	require.Equal(t, "role:alice", StableID(KindRole, "", "alice", ""))
}

func TestAuxIDs(t *testing.T) {
	require.Equal(t, "acl:table:public.t::grantee:alice", ACLID("table:public.t", "alice"))
	require.Equal(t, "key:public.t(a,b)", KeyID("public.t", []string{"a", "b"}))
}
