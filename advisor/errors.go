package advisor

import "errors"

var (
	// ErrGuardrailBlocked indicates the topic gate refused the user message.
	// The turn carries the fixed refusal text; the session itself stays usable.
	ErrGuardrailBlocked = errors.New("message blocked by topic guardrail")
	// ErrToolBudgetExceeded indicates an agent hit its per-turn lookup cap.
	// It is advisory: the agent stops calling the tool and continues with the
	// data it already has.
	ErrToolBudgetExceeded = errors.New("tool call budget exceeded")
)
