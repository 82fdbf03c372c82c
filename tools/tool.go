// Package tools defines the typed callable contract agents use to fetch
// external data mid-reasoning.
package tools

import (
	"context"
	"unicode/utf8"

	"github.com/Joelfranklin96/nutrition-copilot/schema"
)

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
}

// Tool is a typed callable an agent may invoke. Implementations must be safe
// to call repeatedly within one turn; budget enforcement is the caller's
// responsibility.
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
