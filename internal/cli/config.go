package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change workspace configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		prefix, err := svc.Config().ProjectPrefix()
		if err != nil {
			return err
		}
		levels, err := svc.Config().FlightLevels()
		if err != nil {
			return err
		}

		fmt.Printf("prefix:              %s\n", prefix)
		fmt.Printf("preset:              %s\n", levels.PresetName())
		fmt.Printf("strategies_enabled:  %t\n", levels.StrategiesEnabled)
		fmt.Printf("initiatives_enabled: %t\n", levels.InitiativesEnabled)
		fmt.Printf("hierarchy:           %s\n", levels.HierarchyDisplay())
		return nil
	},
}

var configPresetCmd = &cobra.Command{
	Use:   "set-preset <full|streamlined|direct>",
	Short: "Change the flight-level preset",
	Long: `Change which hierarchy tiers are enabled. Existing documents are not
moved; the new hierarchy applies to documents created afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := config.ParsePreset(args[0])
		if err != nil {
			return err
		}

		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		// config.toml is the durable source of truth; write it first, then
		// let sync reconcile the database copy.
		tomlPath := filepath.Join(svc.MetisDir(), config.TOMLFileName)
		file, err := config.LoadFile(tomlPath)
		if err != nil {
			return err
		}
		file.FlightLevels = levels
		if err := file.Save(tomlPath); err != nil {
			return err
		}
		if _, err := svc.Sync(); err != nil {
			return err
		}

		fmt.Println(render(styleSuccess, "Flight levels set to "+levels.PresetName()))
		fmt.Println(render(styleMuted, levels.HierarchyDisplay()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPresetCmd)
	rootCmd.AddCommand(configCmd)
}
