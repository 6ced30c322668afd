package events

const (
	// KindListeningStarted identifies the start of a listening turn.
	KindListeningStarted Kind = "turn_state.listening_started"
	// KindListeningStopped identifies the end of a listening turn.
	KindListeningStopped Kind = "turn_state.listening_stopped"
	// KindTurnFailed identifies a listening turn aborted by an error.
	KindTurnFailed Kind = "turn_state.failed"
)

// ListeningStarted marks the start of a listening turn.
type ListeningStarted struct {
	Base
	Language string
}

// NewListeningStarted creates a listening started event.
func NewListeningStarted(language string) ListeningStarted {
	return ListeningStarted{Base: NewBase(KindListeningStarted), Language: language}
}

// ListeningStopped marks the end of a listening turn.
type ListeningStopped struct{ Base }

// NewListeningStopped creates a listening stopped event.
func NewListeningStopped() ListeningStopped {
	return ListeningStopped{Base: NewBase(KindListeningStopped)}
}

// TurnFailed marks a turn that could not start or was aborted.
type TurnFailed struct {
	Base
	Reason string
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(reason string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), Reason: reason}
}
