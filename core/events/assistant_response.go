package events

// KindAssistantResponseFinal identifies a generated reply.
const KindAssistantResponseFinal Kind = "assistant_response.final"

// AssistantResponseFinal carries the reply generated for a user message.
type AssistantResponseFinal struct {
	Base
	Response string
}

// NewAssistantResponseFinal creates a final response event.
func NewAssistantResponseFinal(response string) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal), Response: response}
}
