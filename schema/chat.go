package schema

import "encoding/json"

// Input is the default chat input schema containing a single user message.
type Input struct {
	// ChatMessage The message sent by the user to the assistant.
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The message sent by the user to the assistant." validate:"required"`
}

func NewInput(msg string) *Input {
	return &Input{ChatMessage: msg}
}

func (s Input) String() string {
	return s.ChatMessage
}

// Output is the default chat output schema containing a single assistant reply.
type Output struct {
	// ChatMessage The markdown-enabled reply from the assistant.
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The markdown-enabled reply from the assistant." validate:"required"`
}

func NewOutput(msg string) *Output {
	return &Output{ChatMessage: msg}
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}
