package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/fieldsync/internal/diagnosis"
	"github.com/jonathan/fieldsync/internal/types"
	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a complaint from the command line",
	Long:  "Ranks catalog issues against a complaint and optional error code and prints the diagnosis as JSON.",
	RunE:  runDiagnose,
}

var (
	diagnoseComplaint string
	diagnoseErrorCode string
	diagnoseCatalog   string
	diagnoseOutput    string
)

func init() {
	diagnoseCmd.Flags().StringVarP(&diagnoseComplaint, "complaint", "c", "", "Customer complaint text (required)")
	diagnoseCmd.Flags().StringVarP(&diagnoseErrorCode, "error-code", "e", "", "Error code shown by the device")
	diagnoseCmd.Flags().StringVar(&diagnoseCatalog, "catalog", "", "Catalog JSON file to use instead of the database")
	diagnoseCmd.Flags().StringVarP(&diagnoseOutput, "out", "o", "", "Write the result to a file instead of stdout")

	if err := diagnoseCmd.MarkFlagRequired("complaint"); err != nil {
		panic(fmt.Sprintf("failed to mark complaint flag as required: %v", err))
	}

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	req := types.DiagnoseRequest{Complaint: diagnoseComplaint, ErrorCode: diagnoseErrorCode}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg.DatabaseURL, diagnoseCatalog)
	if err != nil {
		return err
	}
	defer closeStore()

	d := diagnosis.NewDiagnoser(store, store, diagnosis.WithLogger(logger))
	result, err := d.Diagnose(ctx, req.Complaint, req.ErrorCode)
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagnosis to JSON: %w", err)
	}
	out = append(out, '\n')

	if diagnoseOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(diagnoseOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", diagnoseOutput, err)
	}
	return nil
}
