package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steltz/stepper/internal/config"
)

// settings holds flags, environment and file configuration for every command.
var settings = config.New()

var rootCmd = &cobra.Command{
	Use:   "stepper",
	Short: "Stepper is a multi-step survey engine",
	Long: `Stepper presents a fixed sequence of questions one at a time, validates each
answer and hands the collected answers to a completion sink once submitted.

Run it in the terminal, serve it over HTTP to a mobile front-end, or expose it
to agents over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./stepper.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog file (YAML/JSON) or directory of question documents")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"catalog":    "catalog",
		"log.level":  "log-level",
		"log.format": "log-format",
	})
}

// bindFlags maps config keys to flags. An unset flag falls back to the
// environment, the config file and then the default.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := settings.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// loadConfig merges flags, environment and the config file. Local flags are
// bound only for the command that runs, since several commands share keys.
func loadConfig(cmd *cobra.Command, local map[string]string) (*config.Config, error) {
	bindFlags(cmd.Flags(), local)
	file, _ := cmd.Flags().GetString("config")
	return config.Load(settings, file)
}
