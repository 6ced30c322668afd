package events

import "github.com/koscakluka/ema-voiceloop/core/texttospeech"

// KindVoicesUpdated identifies a change of the voices offered for the
// selected language.
const KindVoicesUpdated Kind = "voices.updated"

// VoicesUpdated carries the voices available for the selected language and
// the selected voice.
type VoicesUpdated struct {
	Base
	Voices        []texttospeech.Voice
	SelectedVoice string
}

// NewVoicesUpdated creates a voices updated event.
func NewVoicesUpdated(voices []texttospeech.Voice, selectedVoice string) VoicesUpdated {
	return VoicesUpdated{Base: NewBase(KindVoicesUpdated), Voices: voices, SelectedVoice: selectedVoice}
}
