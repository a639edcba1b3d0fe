package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supabase/pg-toolbelt-sub009/cmd/util"
	"github.com/supabase/pg-toolbelt-sub009/internal/catalog"
	"github.com/supabase/pg-toolbelt-sub009/internal/change"
	"github.com/supabase/pg-toolbelt-sub009/internal/color"
	"github.com/supabase/pg-toolbelt-sub009/internal/differs"
	"github.com/supabase/pg-toolbelt-sub009/internal/ignore"
	"github.com/supabase/pg-toolbelt-sub009/internal/logger"
	"github.com/supabase/pg-toolbelt-sub009/internal/topo"
)

var (
	planMainFile    string
	planBranchFile  string
	planCurrentUser string
	planServerVer   int
	planIgnoreFile  string
	planNoColor     bool
	planFormat      string
)

// PlanCmd computes the ordered DDL that transforms the main snapshot
// into the branch snapshot. Both snapshots are catalog.Catalog values
// serialized as JSON (produced upstream by whatever extracts a live
// database into the catalog model); this command never opens a
// database connection itself.
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute an ordered migration plan between two schema snapshots",
	Long: `plan reads two catalog snapshots (--main and --branch, JSON-encoded
internal/catalog.Catalog values) and prints the ordered sequence of DDL
statements that transforms main into branch.`,
	RunE: runPlan,
}

func init() {
	PlanCmd.Flags().StringVar(&planMainFile, "main", "", "path to the main catalog snapshot (JSON)")
	PlanCmd.Flags().StringVar(&planBranchFile, "branch", "", "path to the branch catalog snapshot (JSON)")
	PlanCmd.Flags().StringVar(&planCurrentUser, "current-user", util.GetEnvWithDefault("PGUSER", "postgres"), "role the plan is computed on behalf of")
	PlanCmd.Flags().IntVar(&planServerVer, "server-version", util.GetEnvIntWithDefault("PGSCHEMA_SERVER_VERSION", 17), "target server major version (e.g. 17)")
	PlanCmd.Flags().StringVar(&planIgnoreFile, "ignore-file", ignore.FileName, "path to a .pgschemaignore file filtering objects out of the plan")
	PlanCmd.Flags().BoolVar(&planNoColor, "no-color", false, "disable colorized summary output")
	PlanCmd.Flags().StringVar(&planFormat, "format", "sql", "output format: sql or json")
	_ = PlanCmd.MarkFlagRequired("main")
	_ = PlanCmd.MarkFlagRequired("branch")
	RootCmd.AddCommand(PlanCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	main, err := loadCatalog(planMainFile)
	if err != nil {
		return fmt.Errorf("loading main snapshot: %w", err)
	}
	branch, err := loadCatalog(planBranchFile)
	if err != nil {
		return fmt.Errorf("loading branch snapshot: %w", err)
	}

	ignoreCfg, err := ignore.LoadFromPath(planIgnoreFile)
	if err != nil {
		return fmt.Errorf("loading ignore file: %w", err)
	}

	changes := differs.Plan(planCurrentUser, planServerVer, main, branch)
	changes = filterIgnored(changes, ignoreCfg)
	log.Debug("planned changes", "count", len(changes))

	nodes, diagnostics := topo.FromChanges("plan", changes)
	ordered, sortDiagnostics, graph := topo.AnalyzeAndSort(nodes)
	diagnostics = append(diagnostics, sortDiagnostics...)

	for _, d := range diagnostics {
		logDiagnostic(log, d)
	}

	// FromChanges assigns each node's StatementIndex the change's
	// position in the input slice, so the ordered nodes map straight
	// back to their originating Change.
	orderedChanges := make([]*change.Change, 0, len(ordered))
	for _, n := range ordered {
		if idx := n.ID.StatementIndex; idx >= 0 && idx < len(changes) {
			orderedChanges = append(orderedChanges, changes[idx])
		}
	}

	switch planFormat {
	case "json":
		return printPlanJSON(orderedChanges, diagnostics, graph)
	default:
		printPlanSummary(orderedChanges)
		fmt.Println(change.Join(orderedChanges))
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c catalog.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func filterIgnored(changes []*change.Change, cfg *ignore.Config) []*change.Change {
	if cfg == nil {
		return changes
	}
	out := make([]*change.Change, 0, len(changes))
	for _, c := range changes {
		name := c.ObjectID
		if idx := strings.IndexByte(name, ':'); idx >= 0 {
			name = name[idx+1:]
		}
		if cfg.ShouldIgnore(c.ObjectKind, name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func printPlanSummary(changes []*change.Change) {
	added, modified, dropped := 0, 0, 0
	for _, c := range changes {
		switch c.Op {
		case change.OpCreate, change.OpGrant:
			added++
		case change.OpDrop, change.OpRevoke, change.OpRevokeGrantOption:
			dropped++
		default:
			modified++
		}
	}
	col := color.New(!planNoColor)
	fmt.Fprintln(os.Stderr, col.Bold(col.FormatPlanHeader(added, modified, dropped)))
}

func printPlanJSON(changes []*change.Change, diagnostics []topo.Diagnostic, graph topo.GraphReport) error {
	type statement struct {
		Op       string `json:"op"`
		Kind     string `json:"kind"`
		ObjectID string `json:"object_id"`
		SQL      string `json:"sql"`
	}
	out := struct {
		Statements  []statement       `json:"statements"`
		Diagnostics []topo.Diagnostic `json:"diagnostics"`
		EdgeCount   int               `json:"edge_count"`
		CycleGroups int               `json:"cycle_groups"`
	}{
		EdgeCount:   len(graph.Edges),
		CycleGroups: len(graph.CycleGroups),
	}
	for _, c := range changes {
		out.Statements = append(out.Statements, statement{
			Op: c.Op.String(), Kind: c.ObjectKind, ObjectID: c.ObjectID, SQL: c.Serialize(),
		})
	}
	out.Diagnostics = diagnostics

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func logDiagnostic(log *slog.Logger, d topo.Diagnostic) {
	log.Warn(d.Message, "code", d.Code, "severity", d.Severity)
}
