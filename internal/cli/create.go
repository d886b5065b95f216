package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/workspace"
)

var (
	createDescription string
	createParent      string
	createTags        []string
	createRisk        string
	createComplexity  string
	createLead        string
	createDecider     string
	createCategory    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document",
}

func runCreate(docType document.Type, title string) error {
	svc, err := openWorkspace()
	if err != nil {
		return err
	}
	defer svc.DB().Close()

	cfg := workspace.CreateConfig{
		Type:            docType,
		Title:           title,
		Description:     createDescription,
		ParentID:        createParent,
		Tags:            createTags,
		RiskLevel:       document.RiskLevel(createRisk),
		Complexity:      document.Complexity(createComplexity),
		TechnicalLead:   createLead,
		DecisionMaker:   createDecider,
		BacklogCategory: createCategory,
	}

	result, err := svc.CreateDocument(cfg)
	if err != nil {
		return err
	}

	fmt.Println(render(styleSuccess, fmt.Sprintf("Created %s %s", docType, result.ShortCode)))
	fmt.Printf("  id:   %s\n", result.DocumentID)
	fmt.Printf("  path: %s\n", result.FilePath)
	return nil
}

var createStrategyCmd = &cobra.Command{
	Use:   "strategy <title>",
	Short: "Create a strategy under the vision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(document.TypeStrategy, args[0])
	},
}

var createInitiativeCmd = &cobra.Command{
	Use:   "initiative <title>",
	Short: "Create an initiative under a strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(document.TypeInitiative, args[0])
	},
}

var createTaskCmd = &cobra.Command{
	Use:   "task <title>",
	Short: "Create a task under an initiative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(document.TypeTask, args[0])
	},
}

var createADRCmd = &cobra.Command{
	Use:   "adr <title>",
	Short: "Create an architectural decision record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(document.TypeADR, args[0])
	},
}

var createBacklogCmd = &cobra.Command{
	Use:   "backlog <title>",
	Short: "Create a backlog task with no parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if createCategory == "" {
			createCategory = "feature"
		}
		return runCreate(document.TypeTask, args[0])
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createStrategyCmd, createInitiativeCmd, createTaskCmd, createADRCmd, createBacklogCmd} {
		cmd.Flags().StringVarP(&createDescription, "description", "d", "", "initial description for the document body")
		cmd.Flags().StringSliceVar(&createTags, "tag", nil, "free-form tags")
	}
	createInitiativeCmd.Flags().StringVar(&createParent, "strategy", "", "parent strategy id or short code")
	createTaskCmd.Flags().StringVar(&createParent, "initiative", "", "parent initiative id or short code")
	createStrategyCmd.Flags().StringVar(&createRisk, "risk", "", "risk level: low, medium, high, critical")
	createInitiativeCmd.Flags().StringVar(&createComplexity, "complexity", "", "complexity: S, M, L, XL")
	createInitiativeCmd.Flags().StringVar(&createLead, "lead", "", "technical lead")
	createADRCmd.Flags().StringVar(&createDecider, "decision-maker", "", "who made the decision")
	createBacklogCmd.Flags().StringVar(&createCategory, "category", "", "backlog category: bug, feature, tech-debt")

	createCmd.AddCommand(createStrategyCmd, createInitiativeCmd, createTaskCmd, createADRCmd, createBacklogCmd)
	rootCmd.AddCommand(createCmd)
}
