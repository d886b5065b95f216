package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/document"
)

var phaseForce bool

var phaseCmd = &cobra.Command{
	Use:   "phase <id-or-short-code> <target-phase>",
	Short: "Transition a document to a new phase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		result, err := svc.TransitionPhase(args[0], document.Phase(args[1]), phaseForce)
		if err != nil {
			return err
		}

		fmt.Println(render(styleSuccess, fmt.Sprintf("%s: %s → %s",
			result.DocumentID, result.PreviousPhase, result.NewPhase)))
		return nil
	},
}

func init() {
	phaseCmd.Flags().BoolVarP(&phaseForce, "force", "f", false, "bypass the exit-criteria gate (the state machine still applies)")
	rootCmd.AddCommand(phaseCmd)
}
