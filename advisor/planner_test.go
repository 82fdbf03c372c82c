package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/Joelfranklin96/nutrition-copilot/agents"
	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

func TestPlannerRebindsMemoryPerCall(t *testing.T) {
	planner := NewPlanner()
	resp := new(components.ApiResponse)
	// no client configured: each run fails after recording its input
	planner.Plan(context.Background(), nil, "I am allergic to peanuts, plan around that", resp)
	planner.Plan(context.Background(), nil, "suggest any breakfast", resp)
	agent, ok := planner.agent.(*agents.Agent[schema.Input, MealSuggestion])
	if !ok {
		t.Fatal("Expect the planner to run a concrete agent")
	}
	history := agent.Memory().History()
	if len(history) != 1 {
		t.Fatalf("Expect only the latest call's message, but got %d", len(history))
	}
	if got := schema.Stringify(history[0].Content()); strings.Contains(got, "peanuts") {
		t.Errorf("Expect no context from the earlier call, but got %s", got)
	}
}

func TestPlannerSeedsProvidedHistory(t *testing.T) {
	planner := NewPlanner()
	prior := []components.Message{
		*components.NewMessage(components.UserRole, schema.String("I am vegetarian")),
		*components.NewMessage(components.AssistantRole, schema.String("Noted.")),
	}
	planner.Plan(context.Background(), prior, "suggest a breakfast", new(components.ApiResponse))
	agent := planner.agent.(*agents.Agent[schema.Input, MealSuggestion])
	history := agent.Memory().History()
	if len(history) != 3 {
		t.Fatalf("Expect prior turns plus the new message, but got %d messages", len(history))
	}
	if got := schema.Stringify(history[0].Content()); got != "I am vegetarian" {
		t.Errorf("Expect the session history replayed first, but got %s", got)
	}
	if got := schema.Stringify(history[2].Content()); got != "suggest a breakfast" {
		t.Errorf("Expect the new message last, but got %s", got)
	}
}
