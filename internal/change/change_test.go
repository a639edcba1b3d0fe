package change

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateIncludesObjectID(t *testing.T) {
	c := Create("sequence", "sequence:public.s", "CREATE SEQUENCE public.s", nil, nil)
	require.Contains(t, c.Creates(), "sequence:public.s")
	require.Empty(t, c.Drops())
}

func TestDropRequiresAndDropsSameID(t *testing.T) {
	c := Drop("domain", "domain:public.d", "DROP DOMAIN public.d")
	require.Equal(t, []string{"domain:public.d"}, c.Drops())
	require.Equal(t, []string{"domain:public.d"}, c.Requires())
}

func TestGrantCreatesACLID(t *testing.T) {
	c := Grant("table", "table:public.t", "acl:table:public.t::grantee:alice", "role:alice", "GRANT SELECT ON public.t TO alice")
	require.Equal(t, []string{"acl:table:public.t::grantee:alice"}, c.Creates())
	require.ElementsMatch(t, []string{"table:public.t", "role:alice"}, c.Requires())
}

func TestJoinStatements(t *testing.T) {
	c1 := Create("sequence", "sequence:public.s", "CREATE SEQUENCE public.s", nil, nil)
	c2 := Drop("domain", "domain:public.d", "DROP DOMAIN public.d")
	require.Equal(t, "CREATE SEQUENCE public.s;\nDROP DOMAIN public.d;", Join([]*Change{c1, c2}))
}

func TestValidateCatchesCreateDropOverlap(t *testing.T) {
	bad := &Change{CreatesIDs: []string{"x"}, DropsIDs: []string{"x"}}
	err := Validate([]*Change{bad}, nil)
	require.Error(t, err)
}

func TestValidateAcceptsSequentialProduction(t *testing.T) {
	c1 := Create("sequence", "sequence:public.s", "...", nil, nil)
	c2 := Alter("sequence", "sequence:public.s", "...", nil)
	err := Validate([]*Change{c1, c2}, nil)
	require.NoError(t, err)
}
