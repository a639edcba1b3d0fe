package topo

import "sort"

// Edge is one dependency edge in the GraphReport (spec.md §4.H step 6).
type Edge struct {
	From      StatementID
	To        StatementID
	Reason    string
	ObjectRef string
}

// GraphReport is the deterministic diagnostic surface synthesizing the
// teacher's per-kind topological sort helpers into a single generalized
// DAG view (SPEC_FULL.md "SUPPLEMENTED FEATURES").
type GraphReport struct {
	NodeCount   int
	Edges       []Edge
	CycleGroups [][]StatementID
}

// Diagnostic is an accumulated, non-fatal (unless Severity=="error")
// observation surfaced alongside the ordered plan (spec.md §7).
type Diagnostic struct {
	Code       string
	Statement  *StatementID
	Message    string
	ObjectRefs []string
	Severity   string
}

const (
	DiagDiscoveryError          = "DISCOVERY_ERROR"
	DiagParseError              = "PARSE_ERROR"
	DiagUnknownStatementClass   = "UNKNOWN_STATEMENT_CLASS"
	DiagCycleDetected           = "CYCLE_DETECTED"
	DiagReferenceError          = "REFERENCE_ERROR"
)

// AnalyzeAndSort implements the analyze_and_sort API of spec.md §6: it
// builds the dependency graph over a set of already-classified
// statements, runs Kahn's algorithm breaking ties by (phase, ingest
// index), and reports any cycles it had to break through.
func AnalyzeAndSort(nodes []*StatementNode) (ordered []*StatementNode, diagnostics []Diagnostic, graph GraphReport) {
	byID := make(map[StatementID]*StatementNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// latestProvider[id] is the highest-ingest-index statement that
	// provides id, mirroring the teacher's "build edges from the latest
	// provider" rule (spec.md §4.H step 4): later CREATE/REPLACE statements
	// shadow earlier ones as the authoritative provider of an id.
	latestProvider := make(map[string]StatementID)
	for _, n := range nodes {
		for _, id := range n.Provides {
			cur, ok := latestProvider[id]
			if !ok || n.Ingest > byID[cur].Ingest {
				latestProvider[id] = n.ID
			}
		}
	}
	droppedBy := make(map[string][]StatementID)

	adj := make(map[StatementID][]StatementID)   // provider -> dependents
	inDegree := make(map[StatementID]int, len(nodes))
	var edges []Edge

	for _, n := range nodes {
		inDegree[n.ID] = 0
	}

	for _, n := range nodes {
		seen := make(map[StatementID]bool)
		for _, reqID := range append(append([]string{}, n.Requires...), n.DependsOn...) {
			provider, ok := latestProvider[reqID]
			if !ok {
				diagnostics = append(diagnostics, Diagnostic{
					Code: DiagReferenceError, Statement: idPtr(n.ID),
					Message: "requires " + reqID + " but no statement in this plan provides it",
					ObjectRefs: []string{reqID}, Severity: "info",
				})
				continue
			}
			if provider == n.ID || seen[provider] {
				continue
			}
			seen[provider] = true
			adj[provider] = append(adj[provider], n.ID)
			inDegree[n.ID]++
			edges = append(edges, Edge{From: provider, To: n.ID, Reason: "requires", ObjectRef: reqID})
		}
	}

	for _, n := range nodes {
		for _, id := range n.Drops {
			droppedBy[id] = append(droppedBy[id], n.ID)
		}
	}
	for _, n := range nodes {
		for _, reqID := range requiresOf(n) {
			for _, dropper := range droppedBy[reqID] {
				if dropper == n.ID || byID[dropper].Ingest >= n.Ingest {
					continue
				}
				diagnostics = append(diagnostics, Diagnostic{
					Code: DiagReferenceError, Statement: idPtr(n.ID),
					Message: "requires " + reqID + " which was dropped earlier in the plan",
					ObjectRefs: []string{reqID}, Severity: "error",
				})
			}
		}
	}

	for _, n := range nodes {
		if c, ok := classUnknownDiagnostic(n); ok {
			diagnostics = append(diagnostics, c)
		}
	}

	ordered, cycles := kahnSort(nodes, byID, adj, inDegree)
	if len(cycles) > 0 {
		for _, grp := range cycles {
			members := make([]string, len(grp))
			for i, id := range grp {
				members[i] = id.FilePath + "#" + itoa(id.StatementIndex)
			}
			diagnostics = append(diagnostics, Diagnostic{
				Code: DiagCycleDetected,
				Message: "cycle detected among statements; ordered by ingest index within the group",
				ObjectRefs: members, Severity: "warning",
			})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From.FilePath != edges[j].From.FilePath {
			return edges[i].From.FilePath < edges[j].From.FilePath
		}
		if edges[i].From.StatementIndex != edges[j].From.StatementIndex {
			return edges[i].From.StatementIndex < edges[j].From.StatementIndex
		}
		if edges[i].To.FilePath != edges[j].To.FilePath {
			return edges[i].To.FilePath < edges[j].To.FilePath
		}
		return edges[i].To.StatementIndex < edges[j].To.StatementIndex
	})

	graph = GraphReport{NodeCount: len(nodes), Edges: edges, CycleGroups: cycles}

	sort.Slice(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		af, ai := "", 0
		bf, bi := "", 0
		if a.Statement != nil {
			af, ai = a.Statement.FilePath, a.Statement.StatementIndex
		}
		if b.Statement != nil {
			bf, bi = b.Statement.FilePath, b.Statement.StatementIndex
		}
		if af != bf {
			return af < bf
		}
		if ai != bi {
			return ai < bi
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})

	return ordered, diagnostics, graph
}

func requiresOf(n *StatementNode) []string {
	return append(append([]string{}, n.Requires...), n.DependsOn...)
}

func classUnknownDiagnostic(n *StatementNode) (Diagnostic, bool) {
	if n.Class != ClassUnknown {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Code: DiagUnknownStatementClass, Statement: idPtr(n.ID),
		Message: "could not classify statement; placed by ingest index in data_structures phase",
		Severity: "warning",
	}, true
}

func idPtr(id StatementID) *StatementID { return &id }

// kahnSort runs Kahn's algorithm over the statement set, breaking ties
// among ready nodes by (phase bucket order, ingest index) per spec.md
// §4.H step 5. When the ready set is empty but unprocessed nodes remain,
// the whole set of unprocessed nodes is reported as one cycle group (it
// can include nodes that only depend on a cycle; strongly connected
// components are not computed), and the lowest-ingest unprocessed node is
// forced ready —
// the same "declare dependencies satisfied" cycle-breaking strategy
// internal/diff/topological.go uses per object kind, generalized here to
// the whole statement set.
func kahnSort(nodes []*StatementNode, byID map[StatementID]*StatementNode, adj map[StatementID][]StatementID, inDegree map[StatementID]int) ([]*StatementNode, [][]StatementID) {
	remaining := make(map[StatementID]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	var ready []StatementID
	for _, n := range nodes {
		if remaining[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	byIngestAll := append([]*StatementNode{}, nodes...)
	sort.Slice(byIngestAll, func(i, j int) bool { return byIngestAll[i].Ingest < byIngestAll[j].Ingest })

	processed := make(map[StatementID]bool, len(nodes))
	var result []*StatementNode
	var cycleGroups [][]StatementID
	var forcedInThisCycle []StatementID

	for len(result) < len(nodes) {
		if len(ready) == 0 {
			leftover := make([]StatementID, 0)
			for _, n := range byIngestAll {
				if !processed[n.ID] {
					leftover = append(leftover, n.ID)
				}
			}
			if len(leftover) == 0 {
				break
			}
			if len(forcedInThisCycle) == 0 && len(leftover) > 1 {
				cycleGroups = append(cycleGroups, leftover)
			}
			next := leftover[0]
			ready = append(ready, next)
			remaining[next] = 0
			forcedInThisCycle = append(forcedInThisCycle, next)
			continue
		}

		sort.Slice(ready, func(i, j int) bool {
			a, b := byID[ready[i]], byID[ready[j]]
			if a.Phase != b.Phase {
				return a.Phase < b.Phase
			}
			return a.Ingest < b.Ingest
		})

		current := ready[0]
		ready = ready[1:]
		if processed[current] {
			continue
		}
		processed[current] = true
		forcedInThisCycle = nil
		result = append(result, byID[current])

		neighbors := append([]StatementID{}, adj[current]...)
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].FilePath != neighbors[j].FilePath {
				return neighbors[i].FilePath < neighbors[j].FilePath
			}
			return neighbors[i].StatementIndex < neighbors[j].StatementIndex
		})
		for _, nb := range neighbors {
			remaining[nb]--
			if remaining[nb] <= 0 && !processed[nb] {
				ready = append(ready, nb)
			}
		}
	}

	return result, cycleGroups
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
