package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/document"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document counts by type and phase",
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
		counts, err := svc.DB().CountByTypeAndPhase()
		if err != nil {
			return err
		}

		fmt.Println(render(styleHeader, fmt.Sprintf("%s (%s preset)", prefix, levels.PresetName())))
		fmt.Println(render(styleMuted, levels.HierarchyDisplay()))
		fmt.Println()

		for _, docType := range document.ValidTypes() {
			phases := counts[string(docType)]
			if len(phases) == 0 {
				continue
			}
			total := 0
			for _, n := range phases {
				total += n
			}
			fmt.Printf("%s (%d)\n", render(styleHeader, string(docType)), total)

			names := make([]string, 0, len(phases))
			for name := range phases {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-12s %d\n", name, phases[name])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
