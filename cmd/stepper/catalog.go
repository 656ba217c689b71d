package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steltz/stepper"
	"github.com/steltz/stepper/internal/presentation/graph"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog [catalog]",
	Short: "Print the questions of a catalog",
	Long: `Lists the questions in display order.

Formats:
- text (default): one line per question.
- json: the same payload GET /catalog returns.
- mermaid: a flowchart (graph TD) of the steps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		source := cfg.Catalog
		if len(args) > 0 {
			source = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			format = "json"
		}

		c, err := stepper.LoadCatalog(cmd.Context(), source)
		if err != nil {
			return err
		}
		views := c.Views()
		out := cmd.OutOrStdout()

		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(views, nil))
			return nil
		case "text", "":
			for _, q := range views {
				req := ""
				if q.Required {
					req = " *"
				}
				fmt.Fprintf(out, "%d. [%s] %s%s\n", q.Position, q.Type, q.Text, req)
				if len(q.Options) > 0 {
					fmt.Fprintf(out, "   options: %s\n", strings.Join(q.Options, " / "))
				}
			}
			return nil
		default:
			return fmt.Errorf("unknown format: %s. Supported: text, json, mermaid", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().String("format", "text", "Output format: text, json or mermaid")
	catalogCmd.Flags().Bool("json", false, "Shorthand for --format json")
}
