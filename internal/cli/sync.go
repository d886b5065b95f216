package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the index with the workspace files",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		// Prepare already synced once; run again so the report reflects a
		// quiescent workspace plus anything that changed in between.
		results, err := svc.Sync()
		if err != nil {
			return err
		}

		errCount := 0
		for _, r := range results {
			switch r.Kind {
			case sync.ResultUpToDate:
				// Quiet for unchanged files.
			case sync.ResultError:
				errCount++
				fmt.Println(render(styleError, r.String()))
			default:
				fmt.Println(r.String())
			}
		}

		summary := sync.Summary(results)
		fmt.Printf("%d files: %d imported, %d updated, %d moved, %d deleted, %d renumbered, %d errors\n",
			len(results), summary[sync.ResultImported], summary[sync.ResultUpdated],
			summary[sync.ResultMoved], summary[sync.ResultDeleted],
			summary[sync.ResultRenumbered], errCount)

		if errCount > 0 {
			return fmt.Errorf("%d files failed to sync", errCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
