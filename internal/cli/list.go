package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/db"
)

var (
	listType  string
	listPhase string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, optionally filtered by type and phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		var rows []*db.Row
		switch {
		case listType != "" && listPhase != "":
			rows, err = svc.DB().FindByTypeAndPhase(listType, listPhase)
		case listType != "":
			rows, err = svc.DB().FindByType(listType)
		case listPhase != "":
			rows, err = svc.DB().FindByPhase(listPhase)
		default:
			rows, err = svc.DB().AllDocuments()
		}
		if err != nil {
			return err
		}

		printRows(rows)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over document titles and bodies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		rows, err := svc.DB().Search(args[0])
		if err != nil {
			return err
		}
		printRows(rows)
		return nil
	},
}

// printRows renders index rows one per line.
func printRows(rows []*db.Row) {
	if len(rows) == 0 {
		fmt.Println(render(styleMuted, "no documents"))
		return
	}
	for _, row := range rows {
		marker := ""
		if row.Archived {
			marker = " " + render(styleMuted, "[archived]")
		}
		fmt.Printf("%-14s %-10s %-10s %s%s\n",
			row.ShortCode, row.DocumentType, row.Phase, row.Title, marker)
	}
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by document type")
	listCmd.Flags().StringVar(&listPhase, "phase", "", "filter by phase")
	rootCmd.AddCommand(listCmd, searchCmd)
}
