package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/session"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent agent sessions",
	Long: `List recent agent sessions, newest first. Malformed session
documents are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, v, err := setup()
		if err != nil {
			return err
		}
		store := session.NewStore(v, cfg)

		sessions, err := store.ListRecentAgentSessions(cmd.Context(), sessionsLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-40s  %s\n", s.LastActive.Format("2006-01-02 15:04"), s.Title, s.HistoryPath)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to list")
}
