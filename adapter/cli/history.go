package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <work-request-id>",
	Short: "Show a work request's score audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid work request id %q: %w", args[0], err)
		}

		audits, err := app.Prioritization.GetScoreHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(audits) == 0 {
			fmt.Println("no score history")
			return nil
		}

		for _, a := range audits {
			fmt.Printf("%s  %.2f -> %.2f  %s -> %s  %s  (%s)\n",
				a.CreatedAt.Format("2006-01-02 15:04:05"),
				a.OldScore, a.NewScore, a.OldLevel, a.NewLevel,
				a.Trigger, a.ConfigRef)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
