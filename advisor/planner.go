package advisor

import (
	"context"
	"sync"

	"github.com/Joelfranklin96/nutrition-copilot/agents"
	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/systemprompt/cot"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

// memoryBinder is satisfied by agents carrying conversation memory. Binding
// replaces whatever a prior call left behind, so one shared specialist never
// carries context from one session into another.
type memoryBinder interface {
	SetMemory(*components.Memory)
}

var _ memoryBinder = (*agents.Agent[schema.Input, MealSuggestion])(nil)

// Planner suggests exactly one healthy breakfast meal for the user's
// preferences. The output schema holds a single suggestion, so the count
// constraint cannot be violated.
type Planner struct {
	agent agents.TypeableAgent[schema.Input, MealSuggestion]
	// mu serializes calls: each call binds its own session history
	mu sync.Mutex
}

func NewPlanner(opts ...agents.Option) *Planner {
	generator := cot.New(
		cot.WithBackground([]string{
			"You are a breakfast planning expert focused on healthy, practical options for busy people.",
		}),
		cot.WithSteps([]string{
			"Suggest exactly 1 breakfast meal based on the user's preferences.",
			"The meal must be nutritionally balanced (protein, healthy fats, complex carbs).",
			"The meal must be quick to prepare, suitable for busy mornings.",
			"The meal must be actually healthy, not just trendy or marketed as healthy.",
		}),
		cot.WithOutputInstructs([]string{
			"Provide the meal name, clear and descriptive.",
			"Provide one concise sentence explaining why it's a healthy choice, focused on nutritional benefits.",
			"Keep responses brief and actionable. No lengthy explanations.",
		}),
	)
	opts = append([]agents.Option{
		agents.WithName("BreakfastPlanner"),
		agents.WithSystemPromptGenerator(generator),
	}, opts...)
	return &Planner{
		agent: agents.NewAgent[schema.Input, MealSuggestion](opts...),
	}
}

// Plan produces one meal suggestion for the given preference text. The
// history holds the session's prior turns only; the preference text itself
// is appended by the agent run.
func (p *Planner) Plan(ctx context.Context, history []components.Message, preferences string, apiResp *components.ApiResponse) (*MealSuggestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if binder, ok := p.agent.(memoryBinder); ok {
		mem := components.NewMemory(0)
		mem.SetHistory(history)
		binder.SetMemory(mem)
	}
	suggestion := new(MealSuggestion)
	if err := p.agent.Run(ctx, schema.NewInput(preferences), suggestion, apiResp); err != nil {
		return nil, err
	}
	return suggestion, nil
}
