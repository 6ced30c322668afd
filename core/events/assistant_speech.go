package events

const (
	// KindAssistantSpeechRequested identifies a reply handed to speech output.
	KindAssistantSpeechRequested Kind = "assistant_speech.requested"
	// KindAssistantSpeechStarted identifies an utterance becoming audible.
	KindAssistantSpeechStarted Kind = "assistant_speech.started"
	// KindAssistantSpeechEnded identifies the end of an utterance.
	KindAssistantSpeechEnded Kind = "assistant_speech.ended"
)

// AssistantSpeechRequested carries an utterance about to be synthesized.
type AssistantSpeechRequested struct {
	Base
	UtteranceID string
	Text        string
	Voice       string
	Language    string
}

// NewAssistantSpeechRequested creates a speech requested event.
func NewAssistantSpeechRequested(utteranceID, text, voice, language string) AssistantSpeechRequested {
	return AssistantSpeechRequested{
		Base:        NewBase(KindAssistantSpeechRequested),
		UtteranceID: utteranceID,
		Text:        text,
		Voice:       voice,
		Language:    language,
	}
}

// AssistantSpeechStarted marks when an utterance starts playing.
type AssistantSpeechStarted struct {
	Base
	UtteranceID string
}

// NewAssistantSpeechStarted creates a speech started event.
func NewAssistantSpeechStarted(utteranceID string) AssistantSpeechStarted {
	return AssistantSpeechStarted{Base: NewBase(KindAssistantSpeechStarted), UtteranceID: utteranceID}
}

// AssistantSpeechEnded marks when an utterance stops playing, whether it
// finished or failed.
type AssistantSpeechEnded struct {
	Base
	UtteranceID string
}

// NewAssistantSpeechEnded creates a speech ended event.
func NewAssistantSpeechEnded(utteranceID string) AssistantSpeechEnded {
	return AssistantSpeechEnded{Base: NewBase(KindAssistantSpeechEnded), UtteranceID: utteranceID}
}
