package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/handler"
	"github.com/beaconhq/beacon/internal/render"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage steps within plans",
}

var (
	stepAddDescription string
	stepAddAcceptance  string
	stepAddReferences  string
)

var stepAddCmd = &cobra.Command{
	Use:   "add <plan_id> <title>",
	Short: "Append a step to the end of a plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		var description, acceptance *string
		if cmd.Flags().Changed("description") {
			description = &stepAddDescription
		}
		if cmd.Flags().Changed("acceptance-criteria") {
			acceptance = &stepAddAcceptance
		}

		st, err := newHandler().AddStep(cmd.Context(), planID, args[1],
			description, acceptance, splitCSV(stepAddReferences))
		if err != nil {
			return err
		}
		printMarkdown(render.StepCreated(st))
		return nil
	},
}

var (
	stepInsertDescription string
	stepInsertAcceptance  string
	stepInsertReferences  string
)

var stepInsertCmd = &cobra.Command{
	Use:   "insert <plan_id> <position> <title>",
	Short: "Insert a step at a position, shifting later steps down",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		position, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position: %q", args[1])
		}
		var description, acceptance *string
		if cmd.Flags().Changed("description") {
			description = &stepInsertDescription
		}
		if cmd.Flags().Changed("acceptance-criteria") {
			acceptance = &stepInsertAcceptance
		}

		st, err := newHandler().InsertStep(cmd.Context(), planID, position, args[2],
			description, acceptance, splitCSV(stepInsertReferences))
		if err != nil {
			return err
		}
		printMarkdown(render.StepCreated(st))
		return nil
	},
}

var (
	stepUpdateStatus      string
	stepUpdateTitle       string
	stepUpdateDescription string
	stepUpdateAcceptance  string
	stepUpdateReferences  string
	stepUpdateResult      string
)

var stepUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a step; omitted flags preserve current values",
	Long: `Update fields of a step. Only the flags you pass change; everything else
is preserved. Marking a step done requires --result describing what
actually happened.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}

		var in handler.UpdateStepInput
		if cmd.Flags().Changed("status") {
			in.Status = &stepUpdateStatus
		}
		if cmd.Flags().Changed("title") {
			in.Title = &stepUpdateTitle
		}
		if cmd.Flags().Changed("description") {
			in.Description = &stepUpdateDescription
		}
		if cmd.Flags().Changed("acceptance-criteria") {
			in.AcceptanceCriteria = &stepUpdateAcceptance
		}
		if cmd.Flags().Changed("references") {
			refs := splitCSV(stepUpdateReferences)
			if refs == nil {
				refs = []string{}
			}
			in.References = &refs
		}
		if cmd.Flags().Changed("result") {
			in.Result = &stepUpdateResult
		}

		st, changed, err := newHandler().UpdateStep(cmd.Context(), id, in)
		if err != nil {
			return err
		}
		printMarkdown(render.StepUpdated(st, changed))
		return nil
	},
}

var stepShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a step's full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		st, err := newHandler().ShowStep(cmd.Context(), id)
		if err != nil {
			return err
		}
		printMarkdown(render.Step(st))
		return nil
	},
}

var stepSwapCmd = &cobra.Command{
	Use:   "swap <a> <b>",
	Short: "Exchange the order of two steps in the same plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		b, err := parseID(args[1], "step id")
		if err != nil {
			return err
		}
		if err := newHandler().SwapSteps(cmd.Context(), a, b); err != nil {
			return err
		}
		printMarkdown(render.StepsSwapped(a, b))
		return nil
	},
}

var stepRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a step and close the gap in its plan's ordering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		if err := newHandler().RemoveStep(cmd.Context(), id); err != nil {
			return err
		}
		printMarkdown(render.StepRemoved(id))
		return nil
	},
}

// stepClaimCmd mirrors the MCP claim_step tool. Hidden: the race it
// arbitrates only matters to concurrent agents, not interactive use.
var stepClaimCmd = &cobra.Command{
	Use:    "claim <id>",
	Short:  "Atomically move a todo step to inprogress",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "step id")
		if err != nil {
			return err
		}
		st, err := newHandler().ClaimStep(cmd.Context(), id)
		if err != nil {
			return err
		}
		if st == nil {
			printMarkdown(render.StepNotClaimable(id))
			return nil
		}
		printMarkdown(render.StepClaimed(st))
		return nil
	},
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty entries. Empty input yields nil.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func init() {
	stepAddCmd.Flags().StringVarP(&stepAddDescription, "description", "d", "", "What the step involves")
	stepAddCmd.Flags().StringVar(&stepAddAcceptance, "acceptance-criteria", "", "How to tell the step is done")
	stepAddCmd.Flags().StringVar(&stepAddReferences, "references", "", "Comma-separated file paths or URLs")

	stepInsertCmd.Flags().StringVarP(&stepInsertDescription, "description", "d", "", "What the step involves")
	stepInsertCmd.Flags().StringVar(&stepInsertAcceptance, "acceptance-criteria", "", "How to tell the step is done")
	stepInsertCmd.Flags().StringVar(&stepInsertReferences, "references", "", "Comma-separated file paths or URLs")

	stepUpdateCmd.Flags().StringVar(&stepUpdateStatus, "status", "", "New status: todo, inprogress, or done")
	stepUpdateCmd.Flags().StringVar(&stepUpdateTitle, "title", "", "New title")
	stepUpdateCmd.Flags().StringVarP(&stepUpdateDescription, "description", "d", "", "New description")
	stepUpdateCmd.Flags().StringVar(&stepUpdateAcceptance, "acceptance-criteria", "", "New acceptance criteria")
	stepUpdateCmd.Flags().StringVar(&stepUpdateReferences, "references", "", "Comma-separated references (replaces the list)")
	stepUpdateCmd.Flags().StringVar(&stepUpdateResult, "result", "", "What actually happened; required with --status done")

	stepCmd.AddCommand(stepAddCmd)
	stepCmd.AddCommand(stepInsertCmd)
	stepCmd.AddCommand(stepUpdateCmd)
	stepCmd.AddCommand(stepShowCmd)
	stepCmd.AddCommand(stepSwapCmd)
	stepCmd.AddCommand(stepRemoveCmd)
	stepCmd.AddCommand(stepClaimCmd)
	rootCmd.AddCommand(stepCmd)
}
