package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/sessions/engine"
)

var startFresh bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage guided workflow sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <workflow-id>",
	Short: "Start (or resume) a guided session",
	Long: `Start a guided session for the given workflow. Starting the same
workflow again resumes the existing session; pass --fresh to archive it and
begin a new parallel attempt.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionStart,
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show the current step of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionStatus,
}

var sessionAnswerCmd = &cobra.Command{
	Use:   "answer <session-id> <response...>",
	Short: "Submit a response for the current step and advance",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSessionAnswer,
}

var sessionSkipCmd = &cobra.Command{
	Use:   "skip <session-id>",
	Short: "Advance past the current step without a response",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSkip,
}

var sessionBackCmd = &cobra.Command{
	Use:   "back <session-id>",
	Short: "Return to the previous step",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionBack,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active and recently completed sessions",
	RunE:  runSessionList,
}

func init() {
	sessionStartCmd.Flags().BoolVar(&startFresh, "fresh", false, "archive any existing session for this workflow and start over")
	sessionCmd.AddCommand(sessionStartCmd, sessionStatusCmd, sessionAnswerCmd, sessionSkipCmd, sessionBackCmd, sessionListCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	eng := newEngine(st)
	ctx := cmd.Context()

	start := eng.Start
	if startFresh {
		start = eng.StartFresh
	}
	rec, err := start(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(mutedStyle.Render("session: ") + idStyle.Render(rec.ID))

	view, err := eng.LoadCurrentStep(ctx, rec.ID)
	if err != nil {
		return err
	}
	printStep(view)
	return nil
}

func runSessionStatus(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	view, err := newEngine(st).LoadCurrentStep(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printStep(view)
	return nil
}

func runSessionAnswer(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	response := strings.Join(args[1:], " ")
	view, err := newEngine(st).SubmitStepResponse(cmd.Context(), args[0], response)
	if err != nil {
		return err
	}
	printStep(view)
	return nil
}

func runSessionSkip(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	view, err := newEngine(st).Skip(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printStep(view)
	return nil
}

func runSessionBack(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// The engine trusts its caller not to step below zero.
	rec, err := st.GetSession(args[0])
	if err != nil {
		return err
	}
	if rec.CurrentStepIndex == 0 {
		fmt.Println(mutedStyle.Render("Already at the first step."))
		return nil
	}

	view, err := newEngine(st).Back(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printStep(view)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	doc, err := st.Load()
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render("Active Sessions:"))
	if len(doc.ActiveSessions) == 0 {
		fmt.Println(mutedStyle.Render("  (none)"))
	}
	for _, rec := range doc.ActiveSessions {
		fmt.Printf("  %s  %s %s\n",
			idStyle.Render(rec.ID),
			rec.DisplayName,
			progressStyle.Render(fmt.Sprintf("step %d/%d", rec.CurrentStepIndex+1, rec.TotalSteps)))
	}

	fmt.Println()
	fmt.Println(headingStyle.Render("Recently Completed:"))
	if len(doc.RecentCompleted) == 0 {
		fmt.Println(mutedStyle.Render("  (none)"))
	}
	for _, rec := range doc.RecentCompleted {
		line := fmt.Sprintf("  %s  %s", idStyle.Render(rec.SessionID), rec.CompletedAt.Format("2006-01-02 15:04"))
		if rec.OutputPath != "" {
			line += "  " + mutedStyle.Render(rec.OutputPath)
		}
		fmt.Println(line)
	}
	return nil
}

func printStep(view engine.StepView) {
	if view.Completed {
		fmt.Println(progressStyle.Render("✓ " + view.WorkflowName + " complete"))
		return
	}

	fmt.Println(stepTitleStyle.Render(view.Step.Title) +
		mutedStyle.Render(fmt.Sprintf("  (step %d of %d)", view.StepIndex+1, view.TotalSteps)))
	if view.Step.ProgressLabel != "" {
		fmt.Println(progressStyle.Render(view.Step.ProgressLabel))
	}
	if view.Step.Goal != "" {
		fmt.Println(view.Step.Goal)
	}
	if view.Step.Content != "" {
		fmt.Println()
		fmt.Println(strings.TrimSpace(view.Step.Content))
	}
	if len(view.Step.Questions) > 0 {
		fmt.Println()
		for _, q := range view.Step.Questions {
			marker := "  - "
			if q.Required {
				marker = "  * "
			}
			fmt.Println(idStyle.Render(marker) + q.Prompt)
		}
	}
	if view.Response != "" {
		fmt.Println()
		fmt.Println(mutedStyle.Render("previous response: ") + view.Response)
	}
}
