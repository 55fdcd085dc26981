package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <work-request-id>",
	Short: "Recalculate one work request's priority score",
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

		scored, err := app.Prioritization.CalculatePriorityScore(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Work request %s\n", scored.WorkRequestID)
		fmt.Printf("  Score: %.2f (%s)\n", scored.Score, scored.Level)
		fmt.Printf("  Decay multiplier:    %.3f\n", scored.DecayMultiplier)
		fmt.Printf("  Value multiplier:    %.3f\n", scored.ValueMultiplier)
		fmt.Printf("  Capacity multiplier: %.3f\n", scored.CapacityMultiplier)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
