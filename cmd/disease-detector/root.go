package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "disease-detector",
	Short:         "Symptom-based disease prediction service",
	Long:          "disease-detector ranks likely diseases from free-text symptoms with an ensemble of embedding models, keyword matchers and patient history.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("catalog", "", "Path to a disease catalog YAML file (overrides CATALOG_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(catalogCmd)
}

// resolveCatalogPath returns the --catalog flag (highest priority), then
// CATALOG_PATH, then "" for the built-in catalog.
func resolveCatalogPath(cmd *cobra.Command, fromEnv string) string {
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		return p
	}
	return fromEnv
}
