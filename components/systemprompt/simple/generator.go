// Package simple generates system prompts from a single block of content,
// with optional context providers appended.
package simple

import (
	"fmt"
	"strings"

	"github.com/Joelfranklin96/nutrition-copilot/components/systemprompt"
)

// Generator renders a plain content prompt
type Generator struct {
	systemprompt.BaseGenerator
	content string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(content string, providers ...systemprompt.ContextProvider) *Generator {
	ret := new(Generator)
	ret.content = content
	ret.AddContextProviders(providers...)
	return ret
}

func (g *Generator) Generate() string {
	promptParts := make([]string, 0, len(g.ContextProviders())*3+2)
	promptParts = append(promptParts, g.content, "")
	if providers := g.ContextProviders(); len(providers) > 0 {
		promptParts = append(promptParts, "# EXTRA INFORMATION AND CONTEXT")
		for _, provider := range providers {
			if info := provider.Info(); info != "" {
				promptParts = append(promptParts, fmt.Sprintf("## %s", provider.Title()))
				promptParts = append(promptParts, info)
				promptParts = append(promptParts, "")
			}
		}
	}
	return strings.TrimSpace(strings.Join(promptParts, "\n"))
}
