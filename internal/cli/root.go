// Package cli implements the legalflow command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "legalflow",
	Short: "Gamified legal-compliance self-assessment service",
	Long: `legalflow runs the compliance self-assessment API: four audit domains of
yes/no questions, a score per domain, and an assistant that reviews chat
messages and uploaded documents for legal risks.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
