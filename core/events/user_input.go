package events

const (
	// KindUserTranscriptInterimUpdated identifies mutable interim transcript updates.
	KindUserTranscriptInterimUpdated Kind = "user_input.transcript_interim_updated"
	// KindUserTranscriptFinal identifies a committed transcript.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
	// KindUserTextSubmitted identifies typed user input.
	KindUserTextSubmitted Kind = "user_input.text_submitted"
)

// UserTranscriptInterimUpdated carries the mutable interim transcript
// snapshot. An empty transcript means the interim state was cleared.
type UserTranscriptInterimUpdated struct {
	Base
	Transcript string
}

// NewUserTranscriptInterimUpdated creates an interim transcript snapshot update event.
func NewUserTranscriptInterimUpdated(transcript string) UserTranscriptInterimUpdated {
	return UserTranscriptInterimUpdated{Base: NewBase(KindUserTranscriptInterimUpdated), Transcript: transcript}
}

// UserTranscriptFinal carries a committed transcript.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}

// UserTextSubmitted carries text the user typed instead of speaking.
type UserTextSubmitted struct {
	Base
	Text string
}

// NewUserTextSubmitted creates a submitted text event.
func NewUserTextSubmitted(text string) UserTextSubmitted {
	return UserTextSubmitted{Base: NewBase(KindUserTextSubmitted), Text: text}
}
