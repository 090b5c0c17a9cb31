package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy state folder to the current layout",
	Long: `Migrate legacy session documents into the current layout. The
pass is idempotent: a completed run leaves a marker and later runs are
no-ops. Legacy conversation transcripts are archived verbatim before
conversion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, v, err := setup()
		if err != nil {
			return err
		}

		report := migration.NewEngine(v, cfg).Run(cmd.Context())

		fmt.Printf("Found:     %d\n", report.TotalFound)
		fmt.Printf("Processed: %d\n", report.Processed)
		fmt.Printf("Created:   %d\n", report.Created)
		fmt.Printf("Failed:    %d\n", report.Failed)
		if report.BackupCreated {
			fmt.Println("Backup:    created")
		}
		for _, e := range report.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}
