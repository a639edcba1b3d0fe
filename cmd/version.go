package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supabase/pg-toolbelt-sub009/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of pgschema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pgschema v%s@%s %s %s\n", version.Version(), GitCommit, platform(), BuildDate)
	},
}
