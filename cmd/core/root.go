package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "core",
	Short: "Case Orchestration & Readiness Engine",
	Long: `C.O.R.E. prepares cancer cases for multidisciplinary team (MDT) meetings.

For every patient on the meeting roster it checks the five data domains
(pathology, radiology, clinical notes, genomics, contraindications) in
parallel, validates what it finds, and derives the blockers that need human
action before the meeting. Patients with mutation data additionally get a
genomic intelligence report: interpreted mutations, recruiting trials, and
literature-backed treatment options.

The result is a dashboard JSON artifact consumed by the meeting display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
