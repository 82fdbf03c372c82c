package components

// ToolCall records a single tool invocation made while answering a turn.
// The transport layer renders these as an execution trace.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallback records the result a tool produced for a call.
type ToolCallback struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// NewToolCall returns a trace record for an invocation of the named tool.
func NewToolCall(name, arguments string) ToolCall {
	return ToolCall{
		ID:        NewTurnID(),
		Name:      name,
		Arguments: arguments,
	}
}
