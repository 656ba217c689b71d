package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steltz/stepper"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check a catalog for consistency",
	Long: `Loads a catalog file or question directory and reports duplicate ids or
positions, unknown question types and bad length bounds. Without an argument
the configured catalog (or the built-in one) is checked.`,
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

		c, err := stepper.LoadCatalog(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog is valid! ✅ (%d questions)\n", c.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
