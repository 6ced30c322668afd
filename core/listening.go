package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const UnsupportedRecognitionMessage = "Speech recognition is not supported in this environment. You can type your prompt instead."

func recognitionErrorMessage(kind speechtotext.ErrorKind) string {
	return fmt.Sprintf("Recognition error: %s", kind)
}

func (o *Orchestrator) startTurn(ctx context.Context) {
	if o.current != nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	session, err := o.speechToText.start(o.baseContext, o.profile.Language, o.runtime.enqueue)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, speechtotext.ErrNotSupported) {
			logger.Info("speech recognition not supported", "error", err)
			o.appendAssistantMessage(UnsupportedRecognitionMessage)
			o.emitEvent(events.NewTurnFailed(UnsupportedRecognitionMessage))
			return
		}

		kind := recognitionErrorKind(err)
		logger.Error("failed to start listening", "error", err, "kind", kind.String())
		recognitionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("recognition.error_kind", kind.String())))
		o.levelMeter.Stop()
		message := recognitionErrorMessage(kind)
		o.appendAssistantMessage(message)
		o.emitEvent(events.NewTurnFailed(message))
		return
	}

	span.SetAttributes(attribute.String("recognition.session_id", session.id))
	o.current = session
	o.turnState = StateListening
	o.levelMeter.Start(o.baseContext)
	o.setListening(true)
	o.emitEvent(events.NewListeningStarted(o.profile.Language))
}

func (o *Orchestrator) stopTurn() {
	if o.current == nil {
		return
	}

	session := o.current
	if err := session.stop(); err != nil {
		logger.Warn("failed to stop recognition", "error", err, "session_id", session.id)
	}
	o.drain(session)
	o.returnToIdle()
}

// drain keeps session around until the recognizer reports its end so late
// final results are still committed.
func (o *Orchestrator) drain(session *transcriptionSession) {
	if o.current == session {
		o.current = nil
	}
	session.draining = true
	o.draining[session] = struct{}{}
}

// returnToIdle tears down the meter and clears the listening observables.
func (o *Orchestrator) returnToIdle() {
	o.turnState = StateIdle
	o.levelMeter.Stop()
	o.setPartialTranscript("")
	o.setListening(false)
	o.emitEvent(events.NewCaptureLevelUpdated(0))
	o.emitEvent(events.NewListeningStopped())
}

// publishLevel emits the latest meter sample. Samples queued before the turn
// ended are dropped, returnToIdle already published 0.
func (o *Orchestrator) publishLevel() {
	o.levelPending.Store(false)
	if o.current == nil {
		return
	}
	o.emitEvent(events.NewCaptureLevelUpdated(o.levelMeter.Level()))
}

func (o *Orchestrator) handleRecognitionResult(ctx context.Context, result recognitionResult) {
	session := result.session
	switch {
	case session == o.current:
		interim, final, interimChanged := session.apply(result.resultIndex, result.results)
		if final != "" {
			o.setPartialTranscript("")
			o.commitTranscript(ctx, final)
			return
		}
		if interim != "" && interimChanged {
			o.setPartialTranscript(interim)
		}

	case o.isDraining(session) && !session.failed:
		if _, final, _ := session.apply(result.resultIndex, result.results); final != "" {
			o.commitTranscript(ctx, final)
		}
	}
}

func (o *Orchestrator) handleRecognitionError(ctx context.Context, recognitionErr recognitionError) {
	session := recognitionErr.session
	switch {
	case session == o.current:
		kind := recognitionErr.errKind
		err := fmt.Errorf("recognition %s failed: %w", session.id, kind)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("recognition failed", "error", err, "kind", kind.String())
		recognitionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("recognition.error_kind", kind.String())))

		session.failed = true
		o.drain(session)
		o.returnToIdle()

		message := recognitionErrorMessage(kind)
		o.appendAssistantMessage(message)
		o.emitEvent(events.NewTurnFailed(message))

	case o.isDraining(session):
		session.failed = true
		logger.Debug("stopped recognition reported an error", "session_id", session.id, "kind", recognitionErr.errKind.String())
	}
}

func (o *Orchestrator) handleRecognitionEnded(ended recognitionEnded) {
	session := ended.session
	switch {
	case session == o.current:
		session.stopped = true
		o.current = nil
		o.returnToIdle()

	case o.isDraining(session):
		delete(o.draining, session)
	}
}

func (o *Orchestrator) isDraining(session *transcriptionSession) bool {
	_, ok := o.draining[session]
	return ok
}

func (o *Orchestrator) setListening(isListening bool) {
	o.observables.mu.Lock()
	o.observables.isListening = isListening
	o.observables.mu.Unlock()
}

func (o *Orchestrator) setPartialTranscript(transcript string) {
	o.observables.mu.Lock()
	changed := o.observables.partialTranscript != transcript
	o.observables.partialTranscript = transcript
	o.observables.mu.Unlock()

	if changed {
		o.emitEvent(events.NewUserTranscriptInterimUpdated(transcript))
	}
}
