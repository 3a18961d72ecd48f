package main

import (
	"fmt"

	"github.com/jonathan/fieldsync/internal/catalog"
	"github.com/jonathan/fieldsync/internal/db"
	"github.com/spf13/cobra"
)

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog",
	Short: "Load a catalog JSON file into the database",
	Long:  "Validates a catalog file against the catalog schema and upserts its error codes, issues and jobs in one transaction.",
	RunE:  runImportCatalog,
}

var (
	importCatalogFile   string
	importCatalogDryRun bool
)

func init() {
	importCatalogCmd.Flags().StringVarP(&importCatalogFile, "file", "f", "", "Path to catalog JSON file (required)")
	importCatalogCmd.Flags().BoolVar(&importCatalogDryRun, "dry-run", false, "Validate the file without writing to the database")

	if err := importCatalogCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(importCatalogCmd)
}

func runImportCatalog(cmd *cobra.Command, _ []string) error {
	f, err := catalog.LoadFile(importCatalogFile)
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%d error codes, %d issues, %d jobs", len(f.ErrorCodes), len(f.Issues), len(f.Jobs))
	if importCatalogDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "catalog valid: %s\n", summary)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.ImportCatalog(ctx, f.ErrorCodes, f.Issues, f.Jobs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", summary)
	return nil
}
