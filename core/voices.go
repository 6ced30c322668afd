package orchestration

import (
	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

// refreshVoices reloads the synthesizer catalog. Without a selected voice the
// first voice of the selected language becomes the default.
func (o *Orchestrator) refreshVoices() {
	o.catalog = o.textToSpeech.voices()
	if o.profile.VoiceName == "" {
		if voice, ok := texttospeech.DefaultVoice(o.catalog, o.profile.Language); ok {
			o.profile.VoiceName = voice.Name
		}
	}
	o.publishVoices()
}

func (o *Orchestrator) setLanguage(language string) {
	if language == "" || language == o.profile.Language {
		return
	}

	o.profile.Language = language
	o.publishVoices()
}

func (o *Orchestrator) setVoice(voiceName string) {
	if voiceName == o.profile.VoiceName {
		return
	}

	o.profile.VoiceName = voiceName
	o.publishVoices()
}

func (o *Orchestrator) publishVoices() {
	available := texttospeech.FilterByLanguage(o.catalog, o.profile.Language)

	o.observables.mu.Lock()
	o.observables.profile = o.profile
	o.observables.availableVoices = available
	o.observables.mu.Unlock()

	o.emitEvent(events.NewVoicesUpdated(append([]texttospeech.Voice(nil), available...), o.profile.VoiceName))
}
