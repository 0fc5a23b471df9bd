package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"disease-detector/internal/catalog"
	"disease-detector/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the active disease catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog(cmd)
	},
}

func init() {
	catalogCmd.Flags().String("file", "", "Catalog file to validate instead of the configured one")
	catalogCmd.Flags().StringP("output", "o", "yaml", "Output format: yaml or json")
}

type catalogDocument struct {
	Diseases []catalog.DiseaseProfile `yaml:"diseases" json:"diseases"`
}

func runCatalog(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = resolveCatalogPath(cmd, cfg.CatalogPath)
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}
	doc := catalogDocument{Diseases: cat.Profiles()}

	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
