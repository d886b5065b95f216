package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/workspace"
)

var (
	reassignTo      string
	reassignBacklog string
)

var reassignCmd = &cobra.Command{
	Use:   "reassign <task-short-code>",
	Short: "Move a task to another initiative or to the backlog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (reassignTo == "") == (reassignBacklog == "") {
			return errors.ErrValidationFailed("exactly one of --to or --backlog is required")
		}

		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		var result *workspace.ReassignmentResult
		if reassignTo != "" {
			result, err = svc.ReassignToInitiative(args[0], reassignTo)
		} else {
			result, err = svc.ReassignToBacklog(args[0], reassignBacklog)
		}
		if err != nil {
			return err
		}

		fmt.Println(render(styleSuccess, fmt.Sprintf("Moved %s", result.ShortCode)))
		fmt.Printf("  from: %s\n", result.OldPath)
		fmt.Printf("  to:   %s\n", result.NewPath)
		return nil
	},
}

func init() {
	reassignCmd.Flags().StringVar(&reassignTo, "to", "", "target initiative id or short code")
	reassignCmd.Flags().StringVar(&reassignBacklog, "backlog", "", "backlog category: bug, feature, tech-debt")
	rootCmd.AddCommand(reassignCmd)
}
