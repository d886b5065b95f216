// Package cli implements the metis command line front-end over the
// workspace services. Commands stay thin: they resolve the workspace,
// invoke a service, and render the typed result.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/metis/internal/errors"
	"github.com/randalmurphal/metis/internal/workspace"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeader  = lipgloss.NewStyle().Bold(true)
)

// colorEnabled reports whether styled output should be emitted.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == ""
}

// render applies a style when stdout is a terminal.
func render(style lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return style.Render(text)
}

// rootCmd is the base command for the metis CLI.
var rootCmd = &cobra.Command{
	Use:   "metis",
	Short: "Manage a hierarchical corpus of strategic-planning documents",
	Long: `metis manages a workspace of markdown documents modeling a
strategic-planning hierarchy (Vision → Strategy → Initiative → Task, plus
independent ADRs). The files are the source of truth; a sidecar SQLite index
keeps queries fast and is rebuilt by sync.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI, mapping structured errors to user-facing prose.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		var metisErr *errors.MetisError
		if stderrors.As(err, &metisErr) {
			fmt.Fprintln(os.Stderr, render(styleError, metisErr.UserMessage()))
		} else {
			fmt.Fprintln(os.Stderr, render(styleError, "Error: "+err.Error()))
		}
		return err
	}
	return nil
}

// openWorkspace detects and prepares the workspace containing the current
// directory.
func openWorkspace() (*workspace.Service, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.ErrIo("resolve", "current directory", err)
	}
	root, err := workspace.Detect(cwd)
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, errors.ErrInvalidWorkspace(cwd)
	}
	return workspace.Prepare(root)
}
