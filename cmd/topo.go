package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/spf13/cobra"
	"github.com/supabase/pg-toolbelt-sub009/internal/include"
	"github.com/supabase/pg-toolbelt-sub009/internal/logger"
	"github.com/supabase/pg-toolbelt-sub009/internal/topo"
	"golang.org/x/sync/errgroup"
)

var topoFormat string

// TopoCmd runs the statement topology analyzer directly over one or
// more hand-authored SQL migration files (as opposed to the "plan"
// command's catalog-diff-generated statements), resolving \i include
// directives through internal/include before classifying and ordering.
// Unlike psql, include paths resolve relative to the including file, a
// trailing "/" includes a folder, and no path may leave the base directory.
var TopoCmd = &cobra.Command{
	Use:   "topo FILE...",
	Short: "Classify and topologically order statements in SQL files",
	Long: `topo ingests one or more SQL files (resolving \i include directives),
classifies every statement, builds the cross-file dependency graph, and
prints the statements in dependency order along with any diagnostics.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTopo,
}

func init() {
	TopoCmd.Flags().StringVar(&topoFormat, "format", "sql", "output format: sql or json")
	RootCmd.AddCommand(TopoCmd)
}

func runTopo(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	resolved := make([][]string, len(args))
	var g errgroup.Group
	for i, file := range args {
		i, file := i, file
		g.Go(func() error {
			stmts, err := splitIncludedFile(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			resolved[i] = stmts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var nodes []*topo.StatementNode
	var diagnostics []topo.Diagnostic
	for i, file := range args {
		for stmtIdx, sql := range resolved[i] {
			id := topo.StatementID{FilePath: file, StatementIndex: stmtIdx}
			n, err := topo.ClassifyAndExtract(id, sql, stmtIdx, topo.Annotations{})
			if err != nil {
				diagnostics = append(diagnostics, topo.Diagnostic{
					Code: topo.DiagParseError, Statement: &id,
					Message: err.Error(), Severity: "error",
				})
				continue
			}
			nodes = append(nodes, n)
		}
	}

	ordered, sortDiagnostics, graph := topo.AnalyzeAndSort(nodes)
	diagnostics = append(diagnostics, sortDiagnostics...)
	log.Debug("topo analysis complete", "statements", len(nodes), "edges", len(graph.Edges), "cycles", len(graph.CycleGroups))

	for _, d := range diagnostics {
		log.Warn(d.Message, "code", d.Code, "severity", d.Severity)
	}

	if topoFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Ordered     []*topo.StatementNode `json:"ordered"`
			Diagnostics []topo.Diagnostic      `json:"diagnostics"`
		}{ordered, diagnostics})
	}

	for _, n := range ordered {
		fmt.Printf("%s;\n", n.SQL)
	}
	return nil
}

// splitIncludedFile resolves \i directives in file and splits the
// result into individual statement texts using pg_query's own
// statement boundaries, so dollar-quoted function bodies containing
// semicolons are never mis-split.
func splitIncludedFile(file string) ([]string, error) {
	content, err := include.NewProcessor(".").ProcessFile(file)
	if err != nil {
		return nil, err
	}

	result, err := pg_query.Parse(content)
	if err != nil {
		return nil, err
	}

	stmts := make([]string, 0, len(result.Stmts))
	for _, raw := range result.Stmts {
		start := int(raw.StmtLocation)
		length := int(raw.StmtLen)
		if length <= 0 {
			stmts = append(stmts, content[start:])
			continue
		}
		end := start + length
		if end > len(content) {
			end = len(content)
		}
		stmts = append(stmts, content[start:end])
	}
	return stmts, nil
}
