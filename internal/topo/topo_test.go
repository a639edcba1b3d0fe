package topo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, file string, idx int, sql string, provides, requires []string) *StatementNode {
	t.Helper()
	n, err := ClassifyAndExtract(StatementID{FilePath: file, StatementIndex: idx}, sql, idx,
		Annotations{Provides: provides, Requires: requires})
	require.NoError(t, err)
	return n
}

func TestClassifyDisambiguatesFunctionVsProcedure(t *testing.T) {
	fn := node(t, "p", 0, "CREATE FUNCTION f() RETURNS int LANGUAGE sql AS $$ SELECT 1 $$", nil, nil)
	require.Equal(t, ClassCreateFunction, fn.Class)

	proc := node(t, "p", 1, "CREATE PROCEDURE p() LANGUAGE sql AS $$ SELECT 1 $$", nil, nil)
	require.Equal(t, ClassCreateProcedure, proc.Class)
}

func TestClassifyDisambiguatesMaterializedView(t *testing.T) {
	mv := node(t, "p", 0, "CREATE MATERIALIZED VIEW public.m AS SELECT 1", nil, nil)
	require.Equal(t, ClassCreateMaterializedView, mv.Class)

	v := node(t, "p", 1, "CREATE VIEW public.v AS SELECT 1", nil, nil)
	require.Equal(t, ClassCreateView, v.Class)
}

func TestClassifyGrantVsRevoke(t *testing.T) {
	g := node(t, "p", 0, "GRANT SELECT ON public.t TO alice", nil, nil)
	require.Equal(t, ClassGrant, g.Class)

	r := node(t, "p", 1, "REVOKE SELECT ON public.t FROM alice", nil, nil)
	require.Equal(t, ClassRevoke, r.Class)
}

func TestAnalyzeAndSortOrdersProviderBeforeDependent(t *testing.T) {
	// table created second in ingest order but required by the FK
	// statement that comes before it in this slice.
	nodes := []*StatementNode{
		node(t, "p", 0, "ALTER TABLE public.orders ADD CONSTRAINT fk FOREIGN KEY (customer_id) REFERENCES public.customers(id)",
			nil, []string{"table:public.customers", "key:public.customers(id)"}),
		node(t, "p", 1, "CREATE TABLE public.customers (id int PRIMARY KEY)",
			[]string{"table:public.customers", "key:public.customers(id)"}, nil),
	}

	ordered, diagnostics, graph := AnalyzeAndSort(nodes)
	require.Len(t, ordered, 2)
	require.Equal(t, "CREATE TABLE public.customers (id int PRIMARY KEY)", ordered[0].SQL)
	require.Equal(t, 1, graph.NodeCount-1) // sanity: still 2 nodes, one edge recorded below
	require.Equal(t, 2, graph.NodeCount)
	require.Len(t, graph.Edges, 1)
	for _, d := range diagnostics {
		require.NotEqual(t, DiagCycleDetected, d.Code)
	}
}

func TestAnalyzeAndSortReportsCycleButStillOrders(t *testing.T) {
	nodes := []*StatementNode{
		node(t, "p", 0, "CREATE FUNCTION a() RETURNS int LANGUAGE sql AS $$ SELECT b() $$",
			[]string{"function:public.a()"}, []string{"function:public.b()"}),
		node(t, "p", 1, "CREATE FUNCTION b() RETURNS int LANGUAGE sql AS $$ SELECT a() $$",
			[]string{"function:public.b()"}, []string{"function:public.a()"}),
	}

	ordered, diagnostics, _ := AnalyzeAndSort(nodes)
	require.Len(t, ordered, 2)

	var sawCycle bool
	for _, d := range diagnostics {
		if d.Code == DiagCycleDetected {
			sawCycle = true
		}
	}
	require.True(t, sawCycle)
}

func TestAnalyzeAndSortFlagsMissingProvider(t *testing.T) {
	nodes := []*StatementNode{
		node(t, "p", 0, "GRANT SELECT ON public.t TO alice", nil, []string{"table:public.t"}),
	}
	_, diagnostics, _ := AnalyzeAndSort(nodes)
	require.Len(t, diagnostics, 1)
	require.Equal(t, DiagReferenceError, diagnostics[0].Code)
	require.Equal(t, "info", diagnostics[0].Severity)
}

func TestAnalyzeAndSortIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	build := func() []*StatementNode {
		return []*StatementNode{
			node(t, "p", 0, "CREATE TABLE public.a (id int)", []string{"table:public.a"}, nil),
			node(t, "p", 1, "CREATE TABLE public.b (id int)", []string{"table:public.b"}, nil),
			node(t, "p", 2, "ALTER TABLE public.b ADD CONSTRAINT fk FOREIGN KEY (a_id) REFERENCES public.a(id)",
				nil, []string{"table:public.a"}),
		}
	}

	first, _, _ := AnalyzeAndSort(build())
	second, _, _ := AnalyzeAndSort(build())
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].SQL, second[i].SQL)
	}
	require.Equal(t, "CREATE TABLE public.a (id int)", first[0].SQL)
}

func TestAnalyzeAndSortGraphReportIsStableAcrossRuns(t *testing.T) {
	build := func() []*StatementNode {
		return []*StatementNode{
			node(t, "p", 0, "CREATE TABLE public.customers (id int PRIMARY KEY)",
				[]string{"table:public.customers"}, nil),
			node(t, "p", 1, "ALTER TABLE public.orders ADD CONSTRAINT fk FOREIGN KEY (customer_id) REFERENCES public.customers(id)",
				nil, []string{"table:public.customers"}),
		}
	}

	_, _, first := AnalyzeAndSort(build())
	_, _, second := AnalyzeAndSort(build())

	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("graph report differs across identical runs (-first +second):\n%s", diff)
	}
}
