// Package events defines the typed orchestration event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - conversation.*
//   - assistant_response.*
//   - assistant_speech.*
//   - turn_state.*
//   - capture.*
//   - voices.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text for the current turn phase.
//   - Started/Ended/Stopped: lifecycle boundaries.
//
// user_input events
//
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     mutable interim transcript snapshot; empty when cleared.
//   - UserTranscriptFinal (user_input.transcript_final): committed transcript.
//   - UserTextSubmitted (user_input.text_submitted): typed user input.
//
// conversation events
//
//   - MessageAppended (conversation.message_appended): message appended to
//     the history.
//
// assistant_response events
//
//   - AssistantResponseFinal (assistant_response.final): reply generated for
//     the latest user message.
//
// assistant_speech events
//
//   - AssistantSpeechRequested (assistant_speech.requested): reply handed to
//     speech output, superseding any utterance in flight.
//   - AssistantSpeechStarted (assistant_speech.started): utterance audible.
//   - AssistantSpeechEnded (assistant_speech.ended): utterance finished or
//     failed.
//
// turn_state events
//
//   - ListeningStarted (turn_state.listening_started): listening turn started.
//   - ListeningStopped (turn_state.listening_stopped): listening turn ended.
//   - TurnFailed (turn_state.failed): turn could not start or was aborted.
//
// capture events
//
//   - CaptureLevelUpdated (capture.level_updated): microphone level sample.
//
// voices events
//
//   - VoicesUpdated (voices.updated): voices offered for the selected
//     language changed.
package events
