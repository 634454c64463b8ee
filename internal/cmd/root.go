package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "folioscan",
	Short: "Portfolio archive analyzer",
	Long: `Folioscan analyzes uploaded source archives: it discovers the projects
inside, classifies every file, mines git history for contribution and
activity statistics, ranks skills chronologically and deduplicates file
content across uploads of the same user.`,
	Version: "1.0.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
