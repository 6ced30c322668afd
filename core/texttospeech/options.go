package texttospeech

import (
	"context"
	"errors"
	"strings"
)

// ErrNotSupported is returned when speech synthesis cannot run in the
// current environment.
var ErrNotSupported = errors.New("speech synthesis not supported")

// Voice is an installed synthesis voice.
type Voice struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Synthesizer renders text as audible speech. At most one utterance is
// audible at a time; Cancel silences it.
type Synthesizer interface {
	Speak(ctx context.Context, text string, opts ...UtteranceOption) error
	Cancel() error
	Voices() []Voice
}

type UtteranceOptions struct {
	// Voice selects an installed voice. When nil the synthesizer picks its
	// default voice for Language.
	Voice    *Voice
	Language string
	Rate     float64
	Pitch    float64

	StartCallback func()
	EndCallback   func()
	// ErrorCallback is called instead of EndCallback when the utterance fails
	// or is cancelled.
	ErrorCallback func(error)
}

type UtteranceOption func(*UtteranceOptions)

func NewUtteranceOptions(opts ...UtteranceOption) UtteranceOptions {
	options := UtteranceOptions{
		Rate:          1,
		Pitch:         1,
		StartCallback: func() {},
		EndCallback:   func() {},
		ErrorCallback: func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithVoice(voice Voice) UtteranceOption {
	return func(o *UtteranceOptions) {
		o.Voice = &voice
	}
}

func WithLanguage(language string) UtteranceOption {
	return func(o *UtteranceOptions) {
		o.Language = language
	}
}

func WithRate(rate float64) UtteranceOption {
	return func(o *UtteranceOptions) {
		o.Rate = rate
	}
}

func WithPitch(pitch float64) UtteranceOption {
	return func(o *UtteranceOptions) {
		o.Pitch = pitch
	}
}

func WithStartCallback(callback func()) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.StartCallback = callback
		}
	}
}

func WithEndCallback(callback func()) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.EndCallback = callback
		}
	}
}

func WithErrorCallback(callback func(error)) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.ErrorCallback = callback
		}
	}
}

// FilterByLanguage returns the voices whose language tag starts with
// language, ignoring case. When nothing matches the full list is returned.
func FilterByLanguage(voices []Voice, language string) []Voice {
	prefix := strings.ToLower(language)

	var matching []Voice
	for _, voice := range voices {
		if strings.HasPrefix(strings.ToLower(voice.Language), prefix) {
			matching = append(matching, voice)
		}
	}
	if len(matching) == 0 {
		return append([]Voice(nil), voices...)
	}
	return matching
}

// FindVoice looks a voice up by name.
func FindVoice(voices []Voice, name string) (Voice, bool) {
	if name == "" {
		return Voice{}, false
	}
	for _, voice := range voices {
		if voice.Name == name {
			return voice, true
		}
	}
	return Voice{}, false
}

// DefaultVoice returns the first voice whose language equals language,
// ignoring case, or the first voice when none does.
func DefaultVoice(voices []Voice, language string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, voice := range voices {
		if strings.EqualFold(voice.Language, language) {
			return voice, true
		}
	}
	return voices[0], true
}
