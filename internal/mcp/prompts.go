package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt represents an MCP prompt definition.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument describes one argument of a prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// PromptMessage is a single message in a prompt result.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content ToolContent `json:"content"`
}

const planPromptBody = `Break the following goal into a Beacon plan.

Goal: {goal}

Instructions:

1. Call create_plan with a short title for the goal. If the goal concerns a
   specific directory, set the plan's directory so it can be found later.
2. Think through the work and call add_step once per step, in execution
   order. Each step should be small enough to finish in one sitting. Give
   every step a description and, where you can, acceptance criteria that
   state how to verify it.
3. Add file paths or URLs as references on the steps they apply to.
4. Call show_plan and review the result. Use insert_step, swap_steps, or
   update_step to fix ordering or gaps before starting work.
`

const doPromptBody = `Work through a Beacon plan step by step.

Plan: {plan_id}

Instructions:

1. If no plan ID was given, call list_plans (or search_plans with the
   current directory) and pick the most relevant incomplete plan.
2. Call show_plan to see the steps. Steps marked ○ are todo, ➤ is in
   progress, ✓ is done.
3. Take the first unfinished step: call claim_step with its ID. If the
   claim does not succeed, someone else took it; move to the next step.
4. Do the work the step describes, checking its acceptance criteria.
5. When finished, call update_step with status "done" and a result that
   records what actually happened, including anything that deviated from
   the description.
6. Repeat from step 3 until every step is done.
`

func promptDefinitions() []Prompt {
	return []Prompt{
		{
			Name:        "plan",
			Description: "Turn a goal into a structured plan with ordered steps",
			Arguments: []PromptArgument{
				{Name: "goal", Description: "The goal to plan for", Required: true},
			},
		},
		{
			Name:        "do",
			Description: "Execute an existing plan one step at a time",
			Arguments: []PromptArgument{
				{Name: "plan_id", Description: "ID of the plan to work on"},
			},
		},
	}
}

func (s *Server) handlePromptsList(req *Request) {
	s.sendResult(req.ID, map[string]interface{}{"prompts": promptDefinitions()})
}

func (s *Server) handlePromptsGet(req *Request) {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}

	var body, description string
	switch params.Name {
	case "plan":
		goal, ok := params.Arguments["goal"]
		if !ok || strings.TrimSpace(goal) == "" {
			s.sendError(req.ID, -32602, "Invalid params", "missing required argument: goal")
			return
		}
		body = expandPrompt(planPromptBody, map[string]string{"goal": goal})
		description = "Plan the goal as ordered steps"
	case "do":
		planID := params.Arguments["plan_id"]
		if planID == "" {
			planID = "(not specified)"
		}
		body = expandPrompt(doPromptBody, map[string]string{"plan_id": planID})
		description = "Work through the plan step by step"
	default:
		s.sendError(req.ID, -32602, "Invalid params", fmt.Sprintf("unknown prompt: %s", params.Name))
		return
	}

	s.sendResult(req.ID, map[string]interface{}{
		"description": description,
		"messages": []PromptMessage{
			{Role: "user", Content: ToolContent{Type: "text", Text: body}},
		},
	})
}

// expandPrompt substitutes {name} placeholders in a prompt body.
func expandPrompt(body string, args map[string]string) string {
	for name, value := range args {
		body = strings.ReplaceAll(body, "{"+name+"}", value)
	}
	return body
}
