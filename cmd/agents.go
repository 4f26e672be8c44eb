package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List available agent definitions",
	RunE:  runAgents,
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <agent-id>",
	Short: "Show an agent's full persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsShow,
}

func init() {
	agentsCmd.AddCommand(agentsShowCmd)
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(cmd *cobra.Command, args []string) error {
	agents := newResolver().ResolveAgents(agentRoots())

	if len(agents) == 0 {
		fmt.Println(mutedStyle.Render("No agents found. Run 'unreal-companion init' to install the defaults."))
		return nil
	}

	maxLen := 0
	for _, a := range agents {
		if len(a.ID) > maxLen {
			maxLen = len(a.ID)
		}
	}
	for _, a := range agents {
		fmt.Printf("  %s  %s %s\n",
			idStyle.Render(fmt.Sprintf("%-*s", maxLen, a.ID)),
			a.Description,
			mutedStyle.Render("["+a.SourceScope.String()+"]"))
	}
	return nil
}

func runAgentsShow(cmd *cobra.Command, args []string) error {
	agent, err := newResolver().FindAgent(agentRoots(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render(agent.Name))
	if agent.Title != "" {
		fmt.Println(mutedStyle.Render(agent.Title))
	}
	fmt.Println(agent.Description)
	fmt.Println()
	printPersonaField("Role", agent.Persona.Role)
	printPersonaField("Identity", agent.Persona.Identity)
	printPersonaField("Style", agent.Persona.Style)
	printPersonaField("Focus", agent.Persona.Focus)
	if len(agent.Principles) > 0 {
		fmt.Println(idStyle.Render("Principles:"))
		for _, p := range agent.Principles {
			fmt.Println("  - " + p)
		}
	}
	fmt.Println(mutedStyle.Render("source: " + agent.SourcePath))
	return nil
}

func printPersonaField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%s %s\n", idStyle.Render(label+":"), value)
}
