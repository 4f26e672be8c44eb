package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/workflows/resolver"
)

var validateWatch bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every visible definition parses and hydrates",
	Long: `Resolve all workflow and agent definitions and load every step file,
reporting anything that fails to parse. With --watch, keep running and
re-validate whenever a definition file changes.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "re-validate on definition changes")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	r := newResolver()

	if err := validateOnce(r); err != nil {
		return err
	}

	if !validateWatch && !cfg.WatchDefinitions {
		return nil
	}

	watcher, err := resolver.NewWatcher(r, workflowRoots())
	if err != nil {
		return fmt.Errorf("starting definition watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	fmt.Println(mutedStyle.Render("Watching for definition changes. Ctrl+C to stop."))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func validateOnce(r *resolver.Resolver) error {
	workflows := r.ResolveWorkflows(workflowRoots())
	agents := r.ResolveAgents(agentRoots())

	failures := 0
	for _, wf := range workflows {
		for i := range wf.Steps {
			if _, err := r.LoadStep(wf, i); err != nil {
				failures++
				fmt.Println(errorStyle.Render("✗ ") + fmt.Sprintf("%s step %d: %v", wf.ID, i, err))
			}
		}
	}

	fmt.Println(progressStyle.Render(fmt.Sprintf("✓ %d workflow(s), %d agent(s) resolved", len(workflows), len(agents))))
	if failures > 0 {
		return fmt.Errorf("%d step file(s) failed to hydrate", failures)
	}
	return nil
}
