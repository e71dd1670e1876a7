package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"legalflow/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show or validate the audit catalog",
	Long: `Print the audit domains and their questions.

Examples:
  legalflow catalog                      # Built-in catalog as a table
  legalflow catalog --yaml               # Built-in catalog as YAML
  legalflow catalog --file custom.yaml   # Validate and show a catalog file`,
	RunE: runCatalog,
}

var (
	catalogFile string
	catalogYAML bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "Catalog YAML file to validate instead of the built-in one")
	catalogCmd.Flags().BoolVar(&catalogYAML, "yaml", false, "Print as YAML")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	c := catalog.Default()
	if catalogFile != "" {
		data, err := os.ReadFile(catalogFile)
		if err != nil {
			return fmt.Errorf("reading catalog: %w", err)
		}
		if c, err = catalog.Load(data); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if catalogYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(map[string]interface{}{"domains": c.Domains()})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, d := range c.Domains() {
		fmt.Fprintf(w, "%s\t%s\t%d pts\n", d.ID, d.Name, d.MaxPoints)
		for _, q := range d.Questions {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", q.ID, q.Text, q.Points)
		}
	}
	fmt.Fprintf(w, "total\t\t%d pts\n", c.MaxTotal())
	return w.Flush()
}
