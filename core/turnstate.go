package orchestration

// TurnState is the state of the conversation turn.
type TurnState int

const (
	StateIdle TurnState = iota
	StateListening
	// StateProcessing is held only while a reply is being built. It is never
	// observable through [Orchestrator.State].
	StateProcessing
	StateSpeaking
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// VoiceProfile selects how replies are spoken and which language turns are
// recognized in. It is passed through to the capabilities unvalidated.
type VoiceProfile struct {
	Language  string
	VoiceName string
}

func publishedState(isListening, isSpeaking bool) TurnState {
	switch {
	case isListening:
		return StateListening
	case isSpeaking:
		return StateSpeaking
	default:
		return StateIdle
	}
}
