package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codesidh/bpts/internal/prioritization/application/queries"
	"github.com/codesidh/bpts/internal/prioritization/domain/config"
	"github.com/spf13/cobra"
)

var (
	previewFile     string
	previewVertical string
	previewTop      int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a candidate configuration's impact without applying it",
	Long: `Score the pending population under a candidate configuration and
report the differences. Nothing is persisted.

Examples:
  bpts preview --file candidate.json
  bpts preview --file candidate.json --vertical <uuid> --top 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		candidate, err := loadConfigFile(previewFile)
		if err != nil {
			return err
		}
		verticalID, err := parseOptionalUUID(previewVertical)
		if err != nil {
			return err
		}

		// The preview facade fills defaults; pass TopN through directly.
		result, err := app.Prioritization.PreviewChangesWithOptions(cmd.Context(), queries.PreviewChangesQuery{
			Candidate:  candidate,
			VerticalID: verticalID,
			TopN:       previewTop,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Scope %s: %d items, %d level changes, %d failed\n",
			result.Scope, result.Total, result.LevelChanges, result.Failed)
		fmt.Printf("Average score: %.2f -> %.2f\n", result.AverageBefore, result.AverageAfter)
		if len(result.TopDeltas) > 0 {
			fmt.Println("\nLargest changes:")
			for _, d := range result.TopDeltas {
				fmt.Printf("  %s  %.2f -> %.2f (%+.2f)  %s -> %s  %s\n",
					d.WorkRequestID, d.CurrentScore, d.NewScore, d.Delta,
					d.CurrentLevel, d.NewLevel, d.Title)
			}
		}
		return nil
	},
}

// loadConfigFile reads a configuration draft from a JSON file.
func loadConfigFile(path string) (*config.PriorityConfiguration, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg config.PriorityConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

func init() {
	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "candidate configuration JSON file")
	previewCmd.Flags().StringVar(&previewVertical, "vertical", "", "business vertical id (empty = global)")
	previewCmd.Flags().IntVar(&previewTop, "top", 0, "number of per-item rows to show")
	rootCmd.AddCommand(previewCmd)
}
