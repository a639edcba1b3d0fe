package differs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
)

func TestCreateSequenceIncludesBoundsAndCache(t *testing.T) {
	s := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		StartValue: 1, Increment: 1, Cache: 1, CycleOption: false}

	changes := Sequences(newCtx(), "public",
		map[string]*catalog.Sequence{}, map[string]*catalog.Sequence{s.StableID(): s})

	require.Len(t, changes, 1)
	require.Contains(t, changes[0].Serialize(), "NO MINVALUE")
	require.Contains(t, changes[0].Serialize(), "NO MAXVALUE")
	require.Contains(t, changes[0].Serialize(), "NO CYCLE")
	require.Contains(t, changes[0].Serialize(), "CACHE 1")
}

func TestDropSequenceSkippedWhenOwningTableDropped(t *testing.T) {
	s := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		OwnedByTable: "orders", OwnedByColumn: "id"}

	ctx := newCtx()
	ctx.DroppedTables["table:public.orders"] = true

	changes := Sequences(ctx, "public",
		map[string]*catalog.Sequence{s.StableID(): s}, map[string]*catalog.Sequence{})

	require.Empty(t, changes)
}

func TestAlterSequenceEmitsOnlyChangedClauses(t *testing.T) {
	old := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		StartValue: 1, Increment: 1, Cache: 1}
	new := &catalog.Sequence{Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		StartValue: 1, Increment: 5, Cache: 1}

	changes := Sequences(newCtx(), "public",
		map[string]*catalog.Sequence{old.StableID(): old}, map[string]*catalog.Sequence{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t, "ALTER SEQUENCE public.orders_id_seq INCREMENT BY 5", changes[0].Serialize())
}

func TestAlterSequenceFoldsStartWithIntoSingleStatementInOrder(t *testing.T) {
	oldMin, oldMax := int64(5), int64(100)
	old := &catalog.Sequence{Schema: "public", Name: "s", DataType: "bigint",
		MinValue: &oldMin, MaxValue: &oldMax, StartValue: 5, Increment: 5, Cache: 5, CycleOption: true}
	new := &catalog.Sequence{Schema: "public", Name: "s", DataType: "bigint",
		StartValue: 1, Increment: 1, Cache: 1, CycleOption: false}

	changes := Sequences(newCtx(), "public",
		map[string]*catalog.Sequence{old.StableID(): old}, map[string]*catalog.Sequence{new.StableID(): new})

	require.Len(t, changes, 1)
	require.Equal(t,
		"ALTER SEQUENCE public.s INCREMENT BY 1 NO MINVALUE NO MAXVALUE START WITH 1 CACHE 1 NO CYCLE",
		changes[0].Serialize())
}
