package differs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

func TestSchemasCreateEmitsCreateSchema(t *testing.T) {
	branch := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "app"},
	}

	changes := Schemas(newCtx(), map[string]*catalog.Schema{}, branch)
	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "CREATE SCHEMA reporting")
	require.Contains(t, changes[0].Serialize(), "AUTHORIZATION app")
}

func TestSchemasDropEmitsDropSchema(t *testing.T) {
	main := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "app"},
	}

	changes := Schemas(newCtx(), main, map[string]*catalog.Schema{})
	require.Len(t, changes, 1)
	require.Equal(t, "DROP SCHEMA reporting", changes[0].Serialize())
}

func TestSchemasOwnerChangeEmitsAlterOwner(t *testing.T) {
	main := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "app"},
	}
	branch := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "admin"},
	}

	changes := Schemas(newCtx(), main, branch)
	require.Len(t, changes, 1)
	require.Equal(t, "ALTER SCHEMA reporting OWNER TO admin", changes[0].Serialize())
}

func TestSchemasNoChangeEmitsNothing(t *testing.T) {
	main := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "app", Comment: "analytics"},
	}
	branch := map[string]*catalog.Schema{
		"reporting": {Name: "reporting", Owner: "app", Comment: "analytics"},
	}

	require.Empty(t, Schemas(newCtx(), main, branch))
}
