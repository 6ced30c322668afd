package conversations

import "sync"

// ActiveContext exposes the live conversation to observers.
type ActiveContext interface {
	// Ordering: oldest -> newest.
	History() []Message
	PartialTranscript() string
}

// History is an append-only, ordered sequence of messages. It is safe for
// concurrent use.
type History struct {
	mu       sync.RWMutex
	messages []Message
}

func NewHistory(messages ...Message) *History {
	return &History{messages: append([]Message(nil), messages...)}
}

func (h *History) Append(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Snapshot returns a copy of the messages.
func (h *History) Snapshot() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Message(nil), h.messages...)
}

// Values iterates messages from oldest to newest over a snapshot.
func (h *History) Values(yield func(Message) bool) {
	for _, message := range h.Snapshot() {
		if !yield(message) {
			return
		}
	}
}

// RValues iterates messages from newest to oldest over a snapshot.
func (h *History) RValues(yield func(Message) bool) {
	messages := h.Snapshot()
	for i := len(messages) - 1; i >= 0; i-- {
		if !yield(messages[i]) {
			return
		}
	}
}

// LastOfRole returns the most recent message with the given role.
func LastOfRole(messages []Message, role Role) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == role {
			return messages[i], true
		}
	}
	return Message{}, false
}
