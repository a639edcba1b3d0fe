package diffkernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type thing struct {
	ID   string
	Data int
}

func TestPartition(t *testing.T) {
	main := map[string]thing{
		"a": {"a", 1},
		"b": {"b", 2},
		"c": {"c", 3},
	}
	branch := map[string]thing{
		"b": {"b", 20},
		"c": {"c", 3},
		"d": {"d", 4},
	}

	created, dropped, altered := Partition(main, branch, func(a, b thing) bool { return a.Data == b.Data })

	require.Len(t, created, 1)
	require.Equal(t, "d", created[0].ID)

	require.Len(t, dropped, 1)
	require.Equal(t, "a", dropped[0].ID)

	require.Len(t, altered, 1)
	require.Equal(t, "b", altered[0].ID)
	require.Equal(t, 2, altered[0].Old.Data)
	require.Equal(t, 20, altered[0].New.Data)
}

func TestPartitionIdentical(t *testing.T) {
	main := map[string]thing{"a": {"a", 1}}
	branch := map[string]thing{"a": {"a", 1}}
	created, dropped, altered := Partition(main, branch, func(a, b thing) bool { return a.Data == b.Data })
	require.Empty(t, created)
	require.Empty(t, dropped)
	require.Empty(t, altered)
}

func TestSortedValuesDeterministic(t *testing.T) {
	m := map[string]thing{"z": {"z", 1}, "a": {"a", 2}, "m": {"m", 3}}
	vals := SortedValues(m)
	require.Equal(t, []string{"a", "m", "z"}, []string{vals[0].ID, vals[1].ID, vals[2].ID})
}
