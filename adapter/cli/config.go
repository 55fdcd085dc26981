package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configKey      string
	configVertical string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage priority configurations",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration for a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		verticalID, err := parseOptionalUUID(configVertical)
		if err != nil {
			return err
		}

		effective, err := app.Prioritization.GetEffectiveConfiguration(cmd.Context(), configKey, verticalID)
		if err != nil {
			return err
		}

		if effective.Inherited {
			fmt.Println("(inherited from global)")
		}
		out, err := json.MarshalIndent(effective.Config, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		draft, err := loadConfigFile(args[0])
		if err != nil {
			return err
		}

		result := app.Prioritization.ValidateConfiguration(draft)
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		for _, r := range result.Recommendations {
			fmt.Printf("hint: %s\n", r)
		}
		if !result.Valid {
			os.Exit(1)
		}
		fmt.Println("configuration is valid")
		return nil
	},
}

var configApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Create a new configuration version from a draft file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		draft, err := loadConfigFile(args[0])
		if err != nil {
			return err
		}

		result, err := app.Prioritization.CreateConfigurationVersion(cmd.Context(), draft, userName())
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", result.Config.Ref())
		return nil
	},
}

var configHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every version for a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		verticalID, err := parseOptionalUUID(configVertical)
		if err != nil {
			return err
		}

		versions, err := app.Prioritization.GetVersionHistory(cmd.Context(), configKey, verticalID)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			fmt.Println("no versions found")
			return nil
		}

		for _, v := range versions {
			marker := " "
			if v.Active {
				marker = "*"
			}
			inherit := ""
			if v.InheritsGlobal {
				inherit = " (inherits global)"
			}
			fmt.Printf("%s v%-3d %s  by %s%s  %s\n",
				marker, v.Version, v.ModifiedAt.Format("2006-01-02 15:04"),
				v.ModifiedBy, inherit, v.Description)
		}
		return nil
	},
}

var configRollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Restore an earlier version as a new version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		var target int
		if _, err := fmt.Sscanf(args[0], "%d", &target); err != nil || target < 1 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		verticalID, err := parseOptionalUUID(configVertical)
		if err != nil {
			return err
		}

		result, err := app.Prioritization.RollbackConfiguration(cmd.Context(), configKey, verticalID, target, userName())
		if err != nil {
			return err
		}
		fmt.Printf("rolled back to v%d as %s\n", result.RolledBackTo, result.Config.Ref())
		return nil
	},
}

var configDiffCmd = &cobra.Command{
	Use:   "diff <from> <to>",
	Short: "Compare two versions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		var from, to int
		if _, err := fmt.Sscanf(args[0], "%d", &from); err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if _, err := fmt.Sscanf(args[1], "%d", &to); err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		verticalID, err := parseOptionalUUID(configVertical)
		if err != nil {
			return err
		}

		diff, err := app.Prioritization.CompareVersions(cmd.Context(), configKey, verticalID, from, to)
		if err != nil {
			return err
		}
		fmt.Println(diff.Summary())
		return nil
	},
}

var configInheritCmd = &cobra.Command{
	Use:   "inherit <on|off>",
	Short: "Switch a vertical between inheriting and overriding global",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		verticalID, err := parseOptionalUUID(configVertical)
		if err != nil {
			return err
		}
		if verticalID == nil {
			return fmt.Errorf("--vertical is required")
		}

		var inherit bool
		switch args[0] {
		case "on":
			inherit = true
		case "off":
			inherit = false
		default:
			return fmt.Errorf("argument must be on or off, got %q", args[0])
		}

		result, err := app.Prioritization.SetInheritance(cmd.Context(), configKey, *verticalID, inherit, userName())
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", result.Config.Ref())
		return nil
	},
}

// userName identifies the operator in audit fields.
func userName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

func init() {
	configCmd.PersistentFlags().StringVar(&configKey, "key", "", "configuration key (default \"default\")")
	configCmd.PersistentFlags().StringVar(&configVertical, "vertical", "", "business vertical id (empty = global)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configApplyCmd)
	configCmd.AddCommand(configHistoryCmd)
	configCmd.AddCommand(configRollbackCmd)
	configCmd.AddCommand(configDiffCmd)
	configCmd.AddCommand(configInheritCmd)
	rootCmd.AddCommand(configCmd)
}
