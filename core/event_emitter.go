package orchestration

import "github.com/koscakluka/ema-voiceloop/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OrchestrateOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.MessageAppended:
			if opts.onMessage != nil {
				opts.onMessage(typedEvent.Message)
			}
		case events.UserTranscriptInterimUpdated:
			if opts.onInterimTranscription != nil {
				opts.onInterimTranscription(typedEvent.Transcript)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.AssistantResponseFinal:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Response)
			}
		case events.ListeningStarted:
			if opts.onListeningStateChanged != nil {
				opts.onListeningStateChanged(true)
			}
		case events.ListeningStopped:
			if opts.onListeningStateChanged != nil {
				opts.onListeningStateChanged(false)
			}
		case events.AssistantSpeechStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.AssistantSpeechEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.CaptureLevelUpdated:
			if opts.onLevel != nil {
				opts.onLevel(typedEvent.Level)
			}
		case events.VoicesUpdated:
			if opts.onVoicesChanged != nil {
				opts.onVoicesChanged(typedEvent.Voices, typedEvent.SelectedVoice)
			}
		case events.TurnFailed:
			if opts.onTurnFailed != nil {
				opts.onTurnFailed(typedEvent.Reason)
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}
