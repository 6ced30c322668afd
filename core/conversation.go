package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/replies"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	inputSourceVoice = "voice"
	inputSourceText  = "text"
)

func (o *Orchestrator) submitText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	o.emitEvent(events.NewUserTextSubmitted(text))
	o.commit(ctx, text, inputSourceText)
}

func (o *Orchestrator) commitTranscript(ctx context.Context, transcript string) {
	o.emitEvent(events.NewUserTranscriptFinal(transcript))
	o.commit(ctx, transcript, inputSourceVoice)
}

// commit appends text as a user message, answers it and speaks the answer.
func (o *Orchestrator) commit(ctx context.Context, text, source string) {
	previousState := o.turnState
	o.turnState = StateProcessing
	defer func() { o.turnState = previousState }()

	history := o.history.Snapshot()
	o.appendMessage(conversations.NewUserMessage(text))
	transcriptsCommitted.Add(ctx, 1, metric.WithAttributes(attribute.String("input.source", source)))

	reply := o.generateReply(ctx, text, history)
	o.emitEvent(events.NewAssistantResponseFinal(reply))
	o.appendAssistantMessage(reply)
	o.speak(ctx, reply)
}

func (o *Orchestrator) generateReply(ctx context.Context, text string, history []conversations.Message) string {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()
	span.SetAttributes(
		attribute.Int("reply.history_length", len(history)),
		attribute.String("turn.state", o.turnState.String()),
	)

	var reply string
	generate := panicSafeNamedWorker("reply generation", func(context.Context) error {
		reply = o.replies.Generate(text, history)
		return nil
	})
	if err := generate(ctx); err != nil {
		err = fmt.Errorf("failed to generate reply: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("reply generation failed, echoing input", "error", err)
		return replies.EchoReply(text)
	}
	return reply
}

func (o *Orchestrator) appendAssistantMessage(content string) {
	o.appendMessage(conversations.NewAssistantMessage(content))
}

func (o *Orchestrator) appendMessage(message conversations.Message) {
	o.history.Append(message)
	o.emitEvent(events.NewMessageAppended(message))
}

func (o *Orchestrator) speak(ctx context.Context, text string) {
	ctx, span := tracer.Start(ctx, "request speech")
	defer span.End()

	u, ok, err := o.textToSpeech.speak(o.baseContext, text, o.profile, o.runtime.enqueue)
	if !ok {
		span.SetAttributes(attribute.Bool("speech.skipped", true))
		return
	}

	span.SetAttributes(
		attribute.String("speech.utterance_id", u.id),
		attribute.String("speech.voice", u.voice),
		attribute.String("speech.language", u.language),
	)
	utterancesRequested.Add(ctx, 1)
	o.emitEvent(events.NewAssistantSpeechRequested(u.id, text, u.voice, u.language))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("speech request failed", "error", err)
	}
}

func (o *Orchestrator) handleSpeechStarted(started speechStarted) {
	if !o.textToSpeech.isCurrent(started.utteranceID) {
		return
	}

	o.setSpeaking(true)
	o.emitEvent(events.NewAssistantSpeechStarted(started.utteranceID))
}

func (o *Orchestrator) handleSpeechEnded(ended speechEnded) {
	if !o.textToSpeech.isCurrent(ended.utteranceID) {
		return
	}

	o.textToSpeech.currentUtterance = ""
	o.setSpeaking(false)
	o.emitEvent(events.NewAssistantSpeechEnded(ended.utteranceID))
}

func (o *Orchestrator) setSpeaking(isSpeaking bool) {
	o.observables.mu.Lock()
	o.observables.isSpeaking = isSpeaking
	o.observables.mu.Unlock()
}
