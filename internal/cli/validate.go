package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workspace-relative-path>",
	Short: "Validate a document file against its type's rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		report := svc.ValidateDocument(args[0])
		if report.IsValid {
			fmt.Println(render(styleSuccess, fmt.Sprintf("%s: valid %s", args[0], report.Type)))
			return nil
		}

		fmt.Println(render(styleError, fmt.Sprintf("%s: invalid", args[0])))
		for _, issue := range report.Errors {
			fmt.Printf("  - %s\n", issue)
		}
		return fmt.Errorf("document is invalid")
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id-or-short-code>",
	Short: "Archive a document and its subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openWorkspace()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		result, err := svc.Archive(args[0])
		if err != nil {
			return err
		}

		fmt.Println(render(styleSuccess, fmt.Sprintf("Archived %s (%d files)", result.ShortCode, len(result.Moved))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, archiveCmd)
}
