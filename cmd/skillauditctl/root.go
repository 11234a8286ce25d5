// Package cmd wires the ingest, analyze, policy, and report stages behind
// the skillauditctl command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillauditctl",
	Short: "skillauditctl audits a third-party agent skill package before installation",
}

// Execute runs the root command, exiting the process on cobra's own usage
// errors. Scan-specific exit codes are set explicitly by the scan command
// and never reach cobra.CheckErr.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
