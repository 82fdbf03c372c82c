package agents

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

// Verdict is the structured output of a guardrail classifier.
type Verdict struct {
	// Passed reports whether the input is allowed to proceed.
	Passed bool `json:"passed" jsonschema:"title=passed,description=Whether the input is allowed to proceed."`
	// Rationale is a short explanation of the decision.
	Rationale string `json:"rationale,omitempty" jsonschema:"title=rationale,description=A short explanation of the decision."`
}

func (v Verdict) String() string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

// Guardrail gates a pipeline behind a classifier agent. Each inbound input is
// classified fresh: verdicts are context-dependent and never cached. The
// classifier sees only the single input being checked, not prior turns.
type Guardrail[I schema.Schema] struct {
	classifier TypeableAgent[I, Verdict]
	// refusal is the fixed user-facing message served on a block
	refusal string
	// mu serializes checks: the classifier's memory is reset per check and
	// must not interleave with another caller's input
	mu sync.Mutex
}

type memoryResetter interface {
	ResetMemory()
}

func NewGuardrail[I schema.Schema](classifier TypeableAgent[I, Verdict], refusal string) *Guardrail[I] {
	return &Guardrail[I]{
		classifier: classifier,
		refusal:    refusal,
	}
}

// Refusal returns the fixed message served when an input is blocked.
func (g *Guardrail[I]) Refusal() string {
	return g.refusal
}

// Check classifies one input. A verdict with Passed == false means the
// caller must short-circuit without starting any downstream work.
func (g *Guardrail[I]) Check(ctx context.Context, input *I, apiResp *components.ApiResponse) (*Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if resetter, ok := g.classifier.(memoryResetter); ok {
		resetter.ResetMemory()
	}
	verdict := new(Verdict)
	if err := g.classifier.Run(ctx, input, verdict, apiResp); err != nil {
		return nil, err
	}
	return verdict, nil
}
