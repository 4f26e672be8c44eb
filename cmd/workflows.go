package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/workflows/domain"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List available workflow definitions",
	Long:  `Display all workflow definitions visible from this project, grouped by the scope that owns each id after precedence is applied.`,
	RunE:  runWorkflows,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	workflows := newResolver().ResolveWorkflows(workflowRoots())

	byScope := map[domain.Scope][]domain.Workflow{}
	for _, wf := range workflows {
		byScope[wf.SourceScope] = append(byScope[wf.SourceScope], wf)
	}

	for _, scope := range []domain.Scope{domain.ScopeDefault, domain.ScopeCustom, domain.ScopeProject} {
		fmt.Println(headingStyle.Render(scopeHeading(scope)))
		group := byScope[scope]
		if len(group) == 0 {
			fmt.Println(mutedStyle.Render("  (none)"))
		} else {
			maxLen := maxIDLen(group)
			for _, wf := range group {
				fmt.Printf("  %s  %s\n",
					idStyle.Render(fmt.Sprintf("%-*s", maxLen, wf.ID)),
					wf.Description)
			}
		}
		fmt.Println()
	}

	fmt.Println(mutedStyle.Render("Start a session with 'unreal-companion session start <workflow-id>'"))
	return nil
}

func scopeHeading(scope domain.Scope) string {
	switch scope {
	case domain.ScopeDefault:
		return "Default Workflows:"
	case domain.ScopeCustom:
		return "Custom Workflows (global):"
	case domain.ScopeProject:
		return "Project Workflows:"
	default:
		return scope.String() + ":"
	}
}

// maxIDLen returns the length of the longest workflow ID in the slice.
func maxIDLen(workflows []domain.Workflow) int {
	maxLen := 0
	for _, wf := range workflows {
		if len(wf.ID) > maxLen {
			maxLen = len(wf.ID)
		}
	}
	return maxLen
}
