package orchestration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

type textToSpeech struct {
	// synthesizer stores the configured speech synthesis implementation.
	synthesizer SpeechSynthesizer

	// currentUtterance is the ID of the last requested utterance. Lifecycle
	// events of any other utterance are stale. Owned by the loop.
	currentUtterance string
}

func (t *textToSpeech) set(synthesizer SpeechSynthesizer) {
	if t != nil {
		t.synthesizer = synthesizer
	}
}

func (t *textToSpeech) isConfigured() bool {
	return t != nil && t.synthesizer != nil
}

func (t *textToSpeech) voices() []texttospeech.Voice {
	if !t.isConfigured() {
		return nil
	}
	return t.synthesizer.Voices()
}

type utterance struct {
	id       string
	voice    string
	language string
}

// speak cancels whatever is being said and requests text as a new utterance.
// It never queues. A missing synthesizer makes it a no-op that reports
// ok == false.
func (t *textToSpeech) speak(ctx context.Context, text string, profile VoiceProfile, enqueue func(command) bool) (u utterance, ok bool, err error) {
	if !t.isConfigured() {
		return utterance{}, false, nil
	}

	if cancelErr := t.synthesizer.Cancel(); cancelErr != nil {
		logger.Warn("failed to cancel previous utterance", "error", cancelErr)
	}

	u = utterance{id: uuid.NewString(), language: profile.Language}
	t.currentUtterance = u.id

	opts := []texttospeech.UtteranceOption{
		texttospeech.WithRate(1),
		texttospeech.WithPitch(1),
	}
	if voice, found := texttospeech.FindVoice(t.synthesizer.Voices(), profile.VoiceName); found {
		u.voice, u.language = voice.Name, voice.Language
		opts = append(opts, texttospeech.WithVoice(voice), texttospeech.WithLanguage(voice.Language))
	} else {
		opts = append(opts, texttospeech.WithLanguage(profile.Language))
	}

	id := u.id
	opts = append(opts,
		texttospeech.WithStartCallback(func() { enqueue(speechStarted{utteranceID: id}) }),
		texttospeech.WithEndCallback(func() { enqueue(speechEnded{utteranceID: id}) }),
		texttospeech.WithErrorCallback(func(err error) {
			logger.Debug("utterance ended with error", "utterance_id", id, "error", err)
			enqueue(speechEnded{utteranceID: id})
		}),
	)

	if err := t.synthesizer.Speak(ctx, text, opts...); err != nil {
		enqueue(speechEnded{utteranceID: id})
		return u, true, fmt.Errorf("failed to speak utterance %s: %w", id, err)
	}
	return u, true, nil
}

func (t *textToSpeech) isCurrent(utteranceID string) bool {
	return t != nil && utteranceID != "" && utteranceID == t.currentUtterance
}

func (t *textToSpeech) cancel() error {
	if !t.isConfigured() {
		return nil
	}

	t.currentUtterance = ""
	if err := t.synthesizer.Cancel(); err != nil {
		return fmt.Errorf("failed to cancel speech: %w", err)
	}
	return nil
}
