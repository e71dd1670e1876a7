package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"legalflow/internal/reconciler"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [file]",
	Short: "Turn a raw model response into an analysis record",
	Long: `Run the response reconciler on a raw completion and print the recovered
analysis record with the stage that produced it. Reads stdin when no file is given.

Examples:
  legalflow reconcile response.txt
  cat response.txt | legalflow reconcile --domain "Labor law"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReconcile,
}

var (
	reconcileDomain string
	reconcilePrompt string
)

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileDomain, "domain", "", "Domain description used for risks recovered from prose")
	reconcileCmd.Flags().StringVar(&reconcilePrompt, "prompt-file", "", "Prompt that was sent, cut from the response if echoed")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening response: %w", err)
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	opts := reconciler.Options{DomainDescription: reconcileDomain}
	if reconcilePrompt != "" {
		prompt, err := os.ReadFile(reconcilePrompt)
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		opts.PromptEcho = string(prompt)
	}

	result := reconciler.Reconcile(string(raw), opts)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"stage":  result.Stage,
		"record": result.Record,
	})
}
