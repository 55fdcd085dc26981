package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var escalationsVertical string

var escalationsCmd = &cobra.Command{
	Use:   "escalations",
	Short: "List unresolved escalations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		verticalID, err := parseOptionalUUID(escalationsVertical)
		if err != nil {
			return err
		}

		escalations, err := app.Prioritization.GetPendingEscalations(cmd.Context(), verticalID)
		if err != nil {
			return err
		}
		if len(escalations) == 0 {
			fmt.Println("no unresolved escalations")
			return nil
		}

		for _, e := range escalations {
			fmt.Printf("%s  request %s  score %.2f  %s\n",
				e.EscalatedAt.Format("2006-01-02 15:04"), e.WorkRequestID,
				e.CurrentScore, e.Reason)
		}
		return nil
	},
}

func init() {
	escalationsCmd.Flags().StringVar(&escalationsVertical, "vertical", "", "business vertical id (empty = all)")
	rootCmd.AddCommand(escalationsCmd)
}
