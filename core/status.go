package orchestration

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

// Status is a point-in-time view of everything a UI renders.
type Status struct {
	State             TurnState
	IsListening       bool
	IsSpeaking        bool
	PartialTranscript string
	Level             float64
	Language          string
	VoiceName         string
	AvailableVoices   []texttospeech.Voice
	History           []conversations.Message
}

// Status returns a deep copy of the published state. Mutating it does not
// affect the orchestrator.
func (o *Orchestrator) Status() Status {
	o.observables.mu.RLock()
	status := Status{
		State:             publishedState(o.observables.isListening, o.observables.isSpeaking),
		IsListening:       o.observables.isListening,
		IsSpeaking:        o.observables.isSpeaking,
		PartialTranscript: o.observables.partialTranscript,
		Language:          o.observables.profile.Language,
		VoiceName:         o.observables.profile.VoiceName,
	}
	if err := copier.CopyWithOption(&status.AvailableVoices, o.observables.availableVoices, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("failed to copy available voices", "error", fmt.Errorf("copy status voices: %w", err))
		status.AvailableVoices = append([]texttospeech.Voice(nil), o.observables.availableVoices...)
	}
	o.observables.mu.RUnlock()

	status.Level = o.levelMeter.Level()
	// Messages are values; the snapshot already shares nothing.
	status.History = o.history.Snapshot()
	return status
}
