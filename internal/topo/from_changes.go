package topo

import "github.com/supabase/pg-toolbelt-sub009/internal/change"

// FromChanges converts a planned change set (internal/differs.Plan's
// output) into topo's statement-node input shape, classifying each
// change's serialized SQL the same way a hand-authored migration file's
// statements would be classified, while taking Provides/Requires/Drops
// directly from the Change record instead of re-deriving them from the
// SQL text (component F already computed them precisely from the typed
// catalog model — see DESIGN.md for why this is not a re-parse of refs).
//
// filePath is the synthetic source label attached to every node (e.g.
// "plan.sql"); ingest index is the change's position in changes.
func FromChanges(filePath string, changes []*change.Change) ([]*StatementNode, []Diagnostic) {
	var nodes []*StatementNode
	var diagnostics []Diagnostic

	for i, c := range changes {
		id := StatementID{FilePath: filePath, StatementIndex: i}
		ann := Annotations{
			Provides: c.Creates(),
			Requires: c.Requires(),
			Drops:    c.Drops(),
		}
		node, err := ClassifyAndExtract(id, c.Serialize(), i, ann)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				Code: DiagParseError, Statement: &id,
				Message: err.Error(), Severity: "error",
			})
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, diagnostics
}
