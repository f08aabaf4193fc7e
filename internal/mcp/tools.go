package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/beaconhq/beacon/internal/handler"
	"github.com/beaconhq/beacon/internal/render"
	"github.com/beaconhq/beacon/internal/task"
)

func (s *Server) handleToolsList(req *Request) {
	s.sendResult(req.ID, map[string]interface{}{"tools": toolDefinitions()})
}

func toolDefinitions() []Tool {
	idProp := map[string]interface{}{
		"type":        "integer",
		"description": "Plan ID",
	}
	stepIDProp := map[string]interface{}{
		"type":        "integer",
		"description": "Step ID",
	}
	archivedProp := map[string]interface{}{
		"type":        "boolean",
		"description": "Include archived plans",
	}
	referencesProp := map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Related file paths or URLs",
	}

	return []Tool{
		{
			Name:        "create_plan",
			Description: "Create a new plan with a title, optional description, and optional working directory",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"title":       map[string]interface{}{"type": "string", "description": "Plan title"},
					"description": map[string]interface{}{"type": "string", "description": "What the plan is for"},
					"directory":   map[string]interface{}{"type": "string", "description": "Working directory the plan applies to"},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        "list_plans",
			Description: "List plans with step completion counts",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"archived": archivedProp,
				},
			},
		},
		{
			Name:        "show_plan",
			Description: "Show a plan and all of its steps",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{"id": idProp},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "archive_plan",
			Description: "Archive a plan so it no longer appears in default listings",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{"id": idProp},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "unarchive_plan",
			Description: "Restore an archived plan to active",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{"id": idProp},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "delete_plan",
			Description: "Permanently delete a plan and all of its steps. Requires confirmed=true.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"id": idProp,
					"confirmed": map[string]interface{}{
						"type":        "boolean",
						"description": "Must be true to actually delete",
					},
				},
				Required: []string{"id", "confirmed"},
			},
		},
		{
			Name:        "search_plans",
			Description: "Find plans whose directory starts with the given path",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"directory": map[string]interface{}{"type": "string", "description": "Directory to search by (prefix match)"},
					"archived":  archivedProp,
				},
				Required: []string{"directory"},
			},
		},
		{
			Name:        "add_step",
			Description: "Append a step to the end of a plan",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"plan_id":             idProp,
					"title":               map[string]interface{}{"type": "string", "description": "Step title"},
					"description":         map[string]interface{}{"type": "string", "description": "What the step involves"},
					"acceptance_criteria": map[string]interface{}{"type": "string", "description": "How to tell the step is done"},
					"references":          referencesProp,
				},
				Required: []string{"plan_id", "title"},
			},
		},
		{
			Name:        "insert_step",
			Description: "Insert a step at a position within a plan, shifting later steps down",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"plan_id":             idProp,
					"position":            map[string]interface{}{"type": "integer", "description": "Zero-based position to insert at"},
					"title":               map[string]interface{}{"type": "string", "description": "Step title"},
					"description":         map[string]interface{}{"type": "string", "description": "What the step involves"},
					"acceptance_criteria": map[string]interface{}{"type": "string", "description": "How to tell the step is done"},
					"references":          referencesProp,
				},
				Required: []string{"plan_id", "position", "title"},
			},
		},
		{
			Name:        "update_step",
			Description: "Update fields of a step. Omitted fields are preserved. Marking a step done requires a result.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"id":                  stepIDProp,
					"status":              map[string]interface{}{"type": "string", "enum": []string{"todo", "inprogress", "done"}},
					"title":               map[string]interface{}{"type": "string", "description": "Step title"},
					"description":         map[string]interface{}{"type": "string", "description": "What the step involves"},
					"acceptance_criteria": map[string]interface{}{"type": "string", "description": "How to tell the step is done"},
					"references":          referencesProp,
					"result":              map[string]interface{}{"type": "string", "description": "What actually happened; required when status is done"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "swap_steps",
			Description: "Exchange the order of two steps in the same plan",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"step1_id": stepIDProp,
					"step2_id": stepIDProp,
				},
				Required: []string{"step1_id", "step2_id"},
			},
		},
		{
			Name:        "show_step",
			Description: "Show a step's full details",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{"id": stepIDProp},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "claim_step",
			Description: "Atomically move a todo step to inprogress. Returns whether the claim won.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{"id": stepIDProp},
				Required:   []string{"id"},
			},
		},
	}
}

func (s *Server) callTool(name string, args map[string]interface{}) (string, error) {
	ctx := context.Background()

	switch name {
	case "create_plan":
		title, err := stringArg(args, "title")
		if err != nil {
			return "", err
		}
		p, err := s.handler.CreatePlan(ctx, title, optStringArg(args, "description"), optStringArg(args, "directory"))
		if err != nil {
			return "", err
		}
		return render.PlanCreated(p), nil

	case "list_plans":
		filter := &task.PlanFilter{IncludeArchived: boolArg(args, "archived")}
		summaries, err := s.handler.ListPlanSummaries(ctx, filter)
		if err != nil {
			return "", err
		}
		return render.PlanList(summaries), nil

	case "show_plan":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		p, err := s.handler.ShowPlan(ctx, id)
		if err != nil {
			return "", err
		}
		return render.Plan(p), nil

	case "archive_plan":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		p, err := s.handler.ArchivePlan(ctx, id)
		if err != nil {
			return "", err
		}
		return render.PlanArchived(p), nil

	case "unarchive_plan":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		p, err := s.handler.UnarchivePlan(ctx, id)
		if err != nil {
			return "", err
		}
		return render.PlanUnarchived(p), nil

	case "delete_plan":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		p, err := s.handler.DeletePlan(ctx, id, boolArg(args, "confirmed"))
		if err != nil {
			return "", err
		}
		return render.PlanDeleted(p), nil

	case "search_plans":
		directory, err := stringArg(args, "directory")
		if err != nil {
			return "", err
		}
		summaries, err := s.handler.SearchPlans(ctx, directory, boolArg(args, "archived"))
		if err != nil {
			return "", err
		}
		return render.PlanList(summaries), nil

	case "add_step":
		planID, err := intArg(args, "plan_id")
		if err != nil {
			return "", err
		}
		title, err := stringArg(args, "title")
		if err != nil {
			return "", err
		}
		st, err := s.handler.AddStep(ctx, planID, title,
			optStringArg(args, "description"), optStringArg(args, "acceptance_criteria"), stringSliceArg(args, "references"))
		if err != nil {
			return "", err
		}
		return render.StepCreated(st), nil

	case "insert_step":
		planID, err := intArg(args, "plan_id")
		if err != nil {
			return "", err
		}
		position, err := intArg(args, "position")
		if err != nil {
			return "", err
		}
		title, err := stringArg(args, "title")
		if err != nil {
			return "", err
		}
		st, err := s.handler.InsertStep(ctx, planID, int(position), title,
			optStringArg(args, "description"), optStringArg(args, "acceptance_criteria"), stringSliceArg(args, "references"))
		if err != nil {
			return "", err
		}
		return render.StepCreated(st), nil

	case "update_step":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		in := handlerUpdateInput(args)
		st, changed, err := s.handler.UpdateStep(ctx, id, in)
		if err != nil {
			return "", err
		}
		return render.StepUpdated(st, changed), nil

	case "swap_steps":
		a, err := intArg(args, "step1_id")
		if err != nil {
			return "", err
		}
		b, err := intArg(args, "step2_id")
		if err != nil {
			return "", err
		}
		if err := s.handler.SwapSteps(ctx, a, b); err != nil {
			return "", err
		}
		return render.StepsSwapped(a, b), nil

	case "show_step":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		st, err := s.handler.ShowStep(ctx, id)
		if err != nil {
			return "", err
		}
		return render.Step(st), nil

	case "claim_step":
		id, err := intArg(args, "id")
		if err != nil {
			return "", err
		}
		st, err := s.handler.ClaimStep(ctx, id)
		if err != nil {
			return "", err
		}
		if st == nil {
			return render.StepNotClaimable(id), nil
		}
		return render.StepClaimed(st), nil

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// handlerUpdateInput builds a sparse update from tool arguments. A key
// that is absent leaves the field untouched; an explicit references
// array, even empty, replaces the stored list.
func handlerUpdateInput(args map[string]interface{}) handler.UpdateStepInput {
	in := handler.UpdateStepInput{
		Status:             optStringArg(args, "status"),
		Title:              optStringArg(args, "title"),
		Description:        optStringArg(args, "description"),
		AcceptanceCriteria: optStringArg(args, "acceptance_criteria"),
		Result:             optStringArg(args, "result"),
	}
	if _, ok := args["references"]; ok {
		refs := stringSliceArg(args, "references")
		if refs == nil {
			refs = []string{}
		}
		in.References = &refs
	}
	return in
}

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %s must be a non-empty string", key)
	}
	return s, nil
}

// optStringArg extracts an optional string argument, nil when absent.
func optStringArg(args map[string]interface{}, key string) *string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// intArg extracts a required integer argument. JSON numbers arrive as
// float64.
func intArg(args map[string]interface{}, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument: %s", key)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("argument %s must be an integer", key)
	}
}

// boolArg extracts an optional boolean argument, false when absent.
func boolArg(args map[string]interface{}, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// stringSliceArg extracts an optional string array argument.
func stringSliceArg(args map[string]interface{}, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
