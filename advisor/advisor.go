// Package advisor composes the breakfast planning pipeline: a food-topic
// guardrail gating a fixed Plan, Calculate, Price sequence of specialist
// agents over the nutrition index and web search.
package advisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/Joelfranklin96/nutrition-copilot/agents"
	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/session"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

// Result is the outcome of one pipeline turn.
type Result struct {
	// Reply is the user-visible text. On a block it is the fixed refusal; on
	// success it originates from the price checker step only.
	Reply string
	// Blocked reports whether the guardrail refused the message.
	Blocked bool
	// State holds the accumulated step outputs.
	State PipelineState
	// Trace lists every tool invocation of the turn in order.
	Trace []components.ToolCall
	// Usage aggregates model token usage across all agent calls of the turn.
	Usage components.ApiUsage
}

// Advisor drives the pipeline. The three steps run strictly in order, each
// consuming the prior step's output; the advisor itself never authors the
// final text. A failing step aborts the turn with its error unmasked.
type Advisor struct {
	guardrail  *agents.Guardrail[schema.Input]
	planner    *Planner
	calculator *Calculator
	pricer     *PriceChecker
	sessions   session.Store
	onToolCall ToolObserver

	mu    sync.Mutex
	turns map[string]*sync.Mutex
}

type AdvisorOption func(*Advisor)

// WithSessionStore records user and assistant turns per session.
func WithSessionStore(store session.Store) AdvisorOption {
	return func(a *Advisor) {
		a.sessions = store
	}
}

// WithToolCallObserver registers a callback invoked for every tool call in a
// turn, so a transport can render the execution trace as it happens.
func WithToolCallObserver(fn ToolObserver) AdvisorOption {
	return func(a *Advisor) {
		a.onToolCall = fn
	}
}

func New(
	guardrail *agents.Guardrail[schema.Input],
	planner *Planner,
	calculator *Calculator,
	pricer *PriceChecker,
	opts ...AdvisorOption,
) *Advisor {
	ret := &Advisor{
		guardrail:  guardrail,
		planner:    planner,
		calculator: calculator,
		pricer:     pricer,
		turns:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// sessionLock returns the per-session mutex; turns within one session run
// sequentially while distinct sessions proceed concurrently.
func (a *Advisor) sessionLock(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.turns[sessionID]
	if !ok {
		lock = new(sync.Mutex)
		a.turns[sessionID] = lock
	}
	return lock
}

// Run processes one user message for a session through the full pipeline.
// On a guardrail block it returns the refusal text alongside
// ErrGuardrailBlocked; the session stays usable for the next message.
func (a *Advisor) Run(ctx context.Context, sessionID, message string) (*Result, error) {
	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	result := new(Result)
	var observe ToolObserver = func(call components.ToolCall) {
		result.Trace = append(result.Trace, call)
		if a.onToolCall != nil {
			a.onToolCall(call)
		}
	}

	input := schema.NewInput(message)
	// capture prior turns before recording the new one; the planner replays
	// them so the suggestion honors preferences stated earlier in the session
	var history []components.Message
	if a.sessions != nil {
		var err error
		if history, err = a.sessions.Load(sessionID); err != nil {
			return nil, fmt.Errorf("load session history: %w", err)
		}
		if err := a.sessions.Append(sessionID, components.UserRole, input); err != nil {
			return nil, fmt.Errorf("append user turn: %w", err)
		}
	}

	apiResp := new(components.ApiResponse)
	verdict, err := a.guardrail.Check(ctx, input, apiResp)
	a.mergeUsage(result, apiResp)
	if err != nil {
		return nil, fmt.Errorf("guardrail check: %w", err)
	}
	if !verdict.Passed {
		result.Blocked = true
		result.Reply = a.guardrail.Refusal()
		a.appendReply(sessionID, result.Reply)
		return result, ErrGuardrailBlocked
	}

	apiResp = new(components.ApiResponse)
	plan, err := a.planner.Plan(ctx, history, message, apiResp)
	a.mergeUsage(result, apiResp)
	if err != nil {
		return nil, fmt.Errorf("plan meal: %w", err)
	}
	if err := result.State.attachPlan(plan); err != nil {
		return nil, err
	}

	apiResp = new(components.ApiResponse)
	breakdown, err := a.calculator.Calculate(ctx, plan.Meal, apiResp, observe)
	a.mergeUsage(result, apiResp)
	if err != nil {
		return nil, fmt.Errorf("calculate nutrition: %w", err)
	}
	if err := result.State.attachBreakdown(breakdown); err != nil {
		return nil, err
	}

	apiResp = new(components.ApiResponse)
	priced, err := a.pricer.Price(ctx, breakdown, apiResp, observe)
	a.mergeUsage(result, apiResp)
	if err != nil {
		return nil, fmt.Errorf("price meal: %w", err)
	}
	if err := result.State.attachPricedMeal(priced); err != nil {
		return nil, err
	}

	result.Reply = priced.Summary
	a.appendReply(sessionID, result.Reply)
	return result, nil
}

func (a *Advisor) mergeUsage(result *Result, apiResp *components.ApiResponse) {
	if apiResp != nil && apiResp.Usage != nil {
		result.Usage.Merge(apiResp.Usage)
	}
}

func (a *Advisor) appendReply(sessionID, reply string) {
	if a.sessions == nil {
		return
	}
	// best effort: a failed history append does not invalidate the reply
	_ = a.sessions.Append(sessionID, components.AssistantRole, schema.NewString(reply))
}
