package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/render"
	"github.com/beaconhq/beacon/internal/task"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plans",
}

var (
	planCreateDescription string
	planCreateDirectory   string
)

var planCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var description, directory *string
		if cmd.Flags().Changed("description") {
			description = &planCreateDescription
		}
		if cmd.Flags().Changed("directory") {
			directory = &planCreateDirectory
		}

		p, err := newHandler().CreatePlan(cmd.Context(), args[0], description, directory)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanCreated(p))
		return nil
	},
}

var planListArchived bool

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans with step completion counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := &task.PlanFilter{IncludeArchived: planListArchived}
		summaries, err := newHandler().ListPlanSummaries(cmd.Context(), filter)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanList(summaries))
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a plan and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := newHandler().ShowPlan(cmd.Context(), id)
		if err != nil {
			return err
		}
		printMarkdown(render.Plan(p))
		return nil
	},
}

var planArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := newHandler().ArchivePlan(cmd.Context(), id)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanArchived(p))
		return nil
	},
}

var planUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>",
	Short: "Restore an archived plan to active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := newHandler().UnarchivePlan(cmd.Context(), id)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanUnarchived(p))
		return nil
	},
}

var planDeleteConfirm bool

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Permanently delete a plan and all of its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "plan id")
		if err != nil {
			return err
		}
		p, err := newHandler().DeletePlan(cmd.Context(), id, planDeleteConfirm)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanDeleted(p))
		return nil
	},
}

var planSearchArchived bool

var planSearchCmd = &cobra.Command{
	Use:   "search <directory>",
	Short: "Find plans whose directory starts with the given path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := newHandler().SearchPlans(cmd.Context(), args[0], planSearchArchived)
		if err != nil {
			return err
		}
		printMarkdown(render.PlanList(summaries))
		return nil
	},
}

// parseID parses a positional numeric ID argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", what, arg)
	}
	return id, nil
}

func init() {
	planCreateCmd.Flags().StringVarP(&planCreateDescription, "description", "d", "", "What the plan is for")
	planCreateCmd.Flags().StringVar(&planCreateDirectory, "directory", "", "Working directory the plan applies to")
	planListCmd.Flags().BoolVar(&planListArchived, "archived", false, "Include archived plans")
	planDeleteCmd.Flags().BoolVar(&planDeleteConfirm, "confirm", false, "Actually delete; without it the command refuses")
	planSearchCmd.Flags().BoolVar(&planSearchArchived, "archived", false, "Include archived plans")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planArchiveCmd)
	planCmd.AddCommand(planUnarchiveCmd)
	planCmd.AddCommand(planDeleteCmd)
	planCmd.AddCommand(planSearchCmd)
	rootCmd.AddCommand(planCmd)
}
