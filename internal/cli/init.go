package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/config"
	"github.com/randalmurphal/metis/internal/workspace"
)

var (
	initPrefix   string
	initPreset   string
	initUpstream string
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a metis workspace in the current directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		result, err := workspace.Initialize(workspace.InitOptions{
			BasePath:    cwd,
			ProjectName: args[0],
			Prefix:      initPrefix,
			Preset:      initPreset,
			UpstreamURL: initUpstream,
		})
		if err != nil {
			return err
		}

		fmt.Println(render(styleSuccess, "Initialized metis workspace"))
		fmt.Printf("  config:  %s\n", result.ConfigPath)
		fmt.Printf("  index:   %s\n", result.DatabasePath)
		fmt.Printf("  vision:  %s\n", result.VisionPath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initPrefix, "prefix", "", "project prefix for short codes (e.g. ACME)")
	initCmd.Flags().StringVar(&initPreset, "preset", config.PresetFull, "flight-level preset: full, streamlined, or direct")
	initCmd.Flags().StringVar(&initUpstream, "upstream", "", "upstream git URL (required for the full preset)")
	initCmd.MarkFlagRequired("prefix")
	rootCmd.AddCommand(initCmd)
}
