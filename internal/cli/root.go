package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codexc",
		Short: "Compile the Codex 144:99 content bundle",
		Long: `Codexc merges the hand-edited codex sources - node records, arcana
data, the bibliography, halls, and ui-flow documents, and the spine
atlas tree - into one validated bundle under dist/.

The compile is all-or-nothing: every invariant is checked in memory
before any output file is touched.`,
		RunE:         RunCompile,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to codexc.yaml (default: ./codexc.yaml when present)")

	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile sources into dist/ and append a sync event",
		RunE:  RunCompile,
	}
	compileCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load, assemble, and validate without writing anything",
		RunE:  RunValidate,
	}

	idsCmd := &cobra.Command{
		Use:   "ids",
		Short: "Print the id registry a compile would produce",
		RunE:  RunIDs,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codexc %s\n", version)
		},
	}

	rootCmd.AddCommand(
		compileCmd,
		validateCmd,
		idsCmd,
		versionCmd,
	)

	return rootCmd
}
