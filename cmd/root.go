package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/supabase/pg-toolbelt-sub009/internal/logger"
	"github.com/supabase/pg-toolbelt-sub009/internal/version"
)

var Debug bool

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var RootCmd = &cobra.Command{
	Use:   "pgschema",
	Short: "PostgreSQL schema migration planner",
	Long: fmt.Sprintf(`pgschema computes an ordered sequence of DDL statements that
transforms one PostgreSQL schema snapshot into another.

Version: %s@%s %s %s

Commands:
  plan    Compute an ordered migration plan between two snapshots
  topo    Classify and order statements in hand-authored SQL files

Use "pgschema [command] --help" for more information about a command.`,
		version.Version(), GitCommit, platform(), BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

// platform returns the OS/architecture combination.
func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
