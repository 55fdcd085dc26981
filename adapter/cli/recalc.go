package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/codesidh/bpts/internal/prioritization/application/services"
	"github.com/spf13/cobra"
)

var recalcVertical string

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate all pending work requests in a scope",
	Long: `Recalculate scores for every pending work request.

Without --vertical every scope is swept: global items under the global
configuration and each business vertical under its own effective one.

Examples:
  bpts recalc                     # all scopes
  bpts recalc --vertical <uuid>   # one business vertical`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		verticalID, err := parseOptionalUUID(recalcVertical)
		if err != nil {
			return err
		}

		var reports []*services.RecalculationReport
		if verticalID != nil {
			report, err := app.Prioritization.RecalculateAll(cmd.Context(), verticalID)
			if err != nil {
				if errors.Is(err, services.ErrRecalculationInProgress) {
					return fmt.Errorf("a recalculation for this scope is already running")
				}
				return err
			}
			reports = []*services.RecalculationReport{report}
		} else {
			reports, err = app.Prioritization.RecalculateAllScopes(cmd.Context())
			if err != nil {
				return err
			}
		}

		for _, report := range reports {
			fmt.Printf("Scope %s: %d total, %d updated, %d skipped (%s)\n",
				report.Scope, report.Total, report.Updated, report.Skipped, report.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	recalcCmd.Flags().StringVar(&recalcVertical, "vertical", "", "business vertical id (empty = global)")
	rootCmd.AddCommand(recalcCmd)
}
