package orchestration

import (
	"testing"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

func TestCallbackEventEmitterDispatchesTypedCallbacks(t *testing.T) {
	var (
		messages   []string
		interim    []string
		final      []string
		responses  []string
		listening  []bool
		speaking   []bool
		levels     []float64
		voices     []string
		failures   []string
		eventCount int
	)

	emit := newCallbackEventEmitter(OrchestrateOptions{
		onMessage:               func(message conversations.Message) { messages = append(messages, message.Content) },
		onInterimTranscription:  func(transcript string) { interim = append(interim, transcript) },
		onTranscription:         func(transcript string) { final = append(final, transcript) },
		onResponse:              func(response string) { responses = append(responses, response) },
		onListeningStateChanged: func(isListening bool) { listening = append(listening, isListening) },
		onSpeakingStateChanged:  func(isSpeaking bool) { speaking = append(speaking, isSpeaking) },
		onLevel:                 func(level float64) { levels = append(levels, level) },
		onVoicesChanged: func(_ []texttospeech.Voice, selectedVoice string) {
			voices = append(voices, selectedVoice)
		},
		onTurnFailed: func(reason string) { failures = append(failures, reason) },
		onEvent:      func(events.Event) { eventCount++ },
	})

	emit(events.NewMessageAppended(conversations.NewUserMessage("hi")))
	emit(events.NewUserTranscriptInterimUpdated("h"))
	emit(events.NewUserTranscriptFinal("hi"))
	emit(events.NewAssistantResponseFinal("Hello!"))
	emit(events.NewListeningStarted("en-US"))
	emit(events.NewListeningStopped())
	emit(events.NewAssistantSpeechStarted("u1"))
	emit(events.NewAssistantSpeechEnded("u1"))
	emit(events.NewCaptureLevelUpdated(0.25))
	emit(events.NewVoicesUpdated(nil, "amy"))
	emit(events.NewTurnFailed("Recognition error: network"))
	emit(events.NewUserTextSubmitted("typed"))

	if len(messages) != 1 || len(interim) != 1 || len(final) != 1 || len(responses) != 1 {
		t.Fatalf("expected one callback per conversation event")
	}
	if len(listening) != 2 || !listening[0] || listening[1] {
		t.Fatalf("expected listening true then false, got %v", listening)
	}
	if len(speaking) != 2 || !speaking[0] || speaking[1] {
		t.Fatalf("expected speaking true then false, got %v", speaking)
	}
	if len(levels) != 1 || levels[0] != 0.25 {
		t.Fatalf("expected level callback, got %v", levels)
	}
	if len(voices) != 1 || voices[0] != "amy" {
		t.Fatalf("expected voices callback, got %v", voices)
	}
	if len(failures) != 1 {
		t.Fatalf("expected turn failed callback, got %v", failures)
	}
	if eventCount != 12 {
		t.Fatalf("expected every event to reach the raw callback, got %d", eventCount)
	}
}

func TestCallbackEventEmitterToleratesMissingCallbacks(t *testing.T) {
	emit := newCallbackEventEmitter(OrchestrateOptions{})

	emit(events.NewListeningStarted("en-US"))
	emit(events.NewCaptureLevelUpdated(1))
}
