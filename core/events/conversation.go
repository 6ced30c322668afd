package events

import "github.com/koscakluka/ema-voiceloop/core/conversations"

// KindMessageAppended identifies a message appended to the conversation.
const KindMessageAppended Kind = "conversation.message_appended"

// MessageAppended carries a message appended to the conversation history.
type MessageAppended struct {
	Base
	Message conversations.Message
}

// NewMessageAppended creates a message appended event.
func NewMessageAppended(message conversations.Message) MessageAppended {
	return MessageAppended{Base: NewBase(KindMessageAppended), Message: message}
}
