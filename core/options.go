package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

const (
	DefaultLanguage            = "en-US"
	DefaultGreeting            = "Hi! I'm your voice assistant. Start listening and speak to get started."
	DefaultLevelSampleInterval = 16 * time.Millisecond
)

type OrchestratorOption func(*Orchestrator)

type SpeechRecognizer interface {
	Recognize(ctx context.Context, opts ...speechtotext.RecognitionOption) (speechtotext.Recognition, error)
}

func WithSpeechRecognizer(recognizer SpeechRecognizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechToText.set(recognizer)
	}
}

type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string, opts ...texttospeech.UtteranceOption) error
	Cancel() error
	Voices() []texttospeech.Voice
}

// VoiceCatalogNotifier is implemented by synthesizers whose voice catalog
// can change after construction.
type VoiceCatalogNotifier interface {
	OnVoicesChanged(callback func())
}

func WithSpeechSynthesizer(synthesizer SpeechSynthesizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.textToSpeech.set(synthesizer)
	}
}

type AudioCapture interface {
	RequestStream(ctx context.Context) (*audio.Stream, error)
}

func WithAudioCapture(capture AudioCapture) OrchestratorOption {
	return func(o *Orchestrator) {
		o.levelMeter.set(capture)
	}
}

type ReplyGenerator interface {
	Generate(text string, history []conversations.Message) string
}

func WithReplyGenerator(generator ReplyGenerator) OrchestratorOption {
	return func(o *Orchestrator) {
		if generator != nil {
			o.replies = generator
		}
	}
}

func WithLanguage(language string) OrchestratorOption {
	return func(o *Orchestrator) {
		if language != "" {
			o.profile.Language = language
		}
	}
}

func WithVoice(voiceName string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.profile.VoiceName = voiceName
	}
}

// WithGreeting replaces the assistant message the history starts with. An
// empty greeting starts with an empty history.
func WithGreeting(greeting string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.greeting = greeting
	}
}

func WithLevelSampleInterval(interval time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.levelMeter.interval = interval
		}
	}
}

type OrchestrateOptions struct {
	onMessage               func(message conversations.Message)
	onInterimTranscription  func(transcript string)
	onTranscription         func(transcript string)
	onResponse              func(response string)
	onListeningStateChanged func(isListening bool)
	onSpeakingStateChanged  func(isSpeaking bool)
	onLevel                 func(level float64)
	onVoicesChanged         func(voices []texttospeech.Voice, selectedVoice string)
	onTurnFailed            func(reason string)
	onEvent                 func(event events.Event)
}

type OrchestrateOption func(*OrchestrateOptions)

// WithMessageCallback registers a callback for every message appended to the
// conversation history, user and assistant alike.
func WithMessageCallback(callback func(message conversations.Message)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onMessage = callback
	}
}

// WithInterimTranscriptionCallback registers a callback for changes of the
// partial transcript of the listening turn. An empty transcript means the
// partial was cleared.
func WithInterimTranscriptionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onInterimTranscription = callback
	}
}

// WithTranscriptionCallback registers a callback for final transcriptions
// produced by the configured speech recognizer.
//
// Text submitted through [Orchestrator.SubmitText] does not trigger this
// callback.
func WithTranscriptionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onTranscription = callback
	}
}

func WithResponseCallback(callback func(response string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onResponse = callback
	}
}

func WithListeningStateChangedCallback(callback func(isListening bool)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onListeningStateChanged = callback
	}
}

func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onSpeakingStateChanged = callback
	}
}

// WithLevelCallback registers a callback for microphone level samples.
//
// Samples are coalesced: while one is waiting in the command queue newer
// samples replace it, so the callback sees the latest level at most once
// per loop iteration.
func WithLevelCallback(callback func(level float64)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onLevel = callback
	}
}

func WithVoicesChangedCallback(callback func(voices []texttospeech.Voice, selectedVoice string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onVoicesChanged = callback
	}
}

func WithTurnFailedCallback(callback func(reason string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onTurnFailed = callback
	}
}

// WithEventCallback registers a callback receiving every event the
// orchestrator emits, after the typed callbacks ran. Like every
// OrchestrateOption callback it runs on the loop goroutine, so callbacks
// never run concurrently with each other.
func WithEventCallback(callback func(event events.Event)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onEvent = callback
	}
}
