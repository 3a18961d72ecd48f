package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/fieldsync/internal/server"
	"github.com/spf13/cobra"
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Mint a technician bearer token for the jobs API",
	Long:  "Signs a token with JWT_SECRET. A new technician ID is generated when --technician-id is not given.",
	RunE:  runIssueToken,
}

var (
	issueTokenTechnicianID string
	issueTokenName         string
)

func init() {
	issueTokenCmd.Flags().StringVar(&issueTokenTechnicianID, "technician-id", "", "Technician UUID")
	issueTokenCmd.Flags().StringVar(&issueTokenName, "name", "", "Technician display name")
	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.JWT.Enabled() {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	technicianID := uuid.New()
	if issueTokenTechnicianID != "" {
		technicianID, err = uuid.Parse(issueTokenTechnicianID)
		if err != nil {
			return fmt.Errorf("invalid technician id %q: %w", issueTokenTechnicianID, err)
		}
	}

	token, err := server.NewJWTService(cfg.JWT).GenerateToken(technicianID, issueTokenName)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
