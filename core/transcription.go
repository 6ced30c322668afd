package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
)

type speechToText struct {
	// recognizer stores the configured speech recognition implementation.
	recognizer SpeechRecognizer
}

func (s *speechToText) set(recognizer SpeechRecognizer) {
	if s != nil {
		s.recognizer = recognizer
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.recognizer != nil
}

// start begins a continuous recognition in language. Recognizer callbacks
// are turned into commands tagged with the returned session so the loop can
// tell current, draining and stale sessions apart.
func (s *speechToText) start(ctx context.Context, language string, enqueue func(command) bool) (*transcriptionSession, error) {
	if !s.isConfigured() {
		return nil, speechtotext.ErrNotSupported
	}

	session := newTranscriptionSession()
	recognition, err := s.recognizer.Recognize(ctx,
		speechtotext.WithLanguage(language),
		speechtotext.WithContinuous(true),
		speechtotext.WithInterimResults(true),
		speechtotext.WithStartCallback(func() {
			enqueue(recognitionStarted{session: session})
		}),
		speechtotext.WithResultCallback(func(resultIndex int, results []speechtotext.Result) {
			enqueue(recognitionResult{
				session:     session,
				resultIndex: resultIndex,
				results:     append([]speechtotext.Result(nil), results...),
			})
		}),
		speechtotext.WithErrorCallback(func(kind speechtotext.ErrorKind) {
			enqueue(recognitionError{session: session, errKind: kind})
		}),
		speechtotext.WithEndCallback(func() {
			enqueue(recognitionEnded{session: session})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start recognition: %w", err)
	}
	if recognition == nil {
		return nil, fmt.Errorf("failed to start recognition: %w", speechtotext.ErrNotSupported)
	}

	session.recognition = recognition
	return session, nil
}

// recognitionErrorKind recovers the kind of a failed recognition start.
// Errors without a kind are reported as aborted.
func recognitionErrorKind(err error) speechtotext.ErrorKind {
	var kind speechtotext.ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return speechtotext.ErrorAborted
}

type transcriptionSession struct {
	id          string
	recognition speechtotext.Recognition

	// committed holds result indexes whose final text was already taken.
	committed map[int]struct{}
	interim   string

	// draining is set once the session stopped being the current one. A
	// draining session still commits finals until its end arrives.
	draining bool
	// failed sessions only wait for their end.
	failed bool
	stopped bool
}

func newTranscriptionSession() *transcriptionSession {
	return &transcriptionSession{
		id:        uuid.NewString(),
		committed: map[int]struct{}{},
	}
}

// apply folds a batch of results delivered from resultIndex onward into the
// session. It returns the trimmed interim and newly final text, and whether
// the interim text differs from the previous batch.
func (s *transcriptionSession) apply(resultIndex int, results []speechtotext.Result) (interim, final string, interimChanged bool) {
	var interimParts, finalParts []string
	for i, result := range results {
		index := resultIndex + i
		if !result.IsFinal {
			interimParts = append(interimParts, result.Transcript)
			continue
		}

		if _, ok := s.committed[index]; ok {
			continue
		}
		s.committed[index] = struct{}{}
		finalParts = append(finalParts, result.Transcript)
	}

	interim = joinTranscripts(interimParts)
	final = joinTranscripts(finalParts)

	if final != "" {
		interimChanged = s.interim != ""
		s.interim = ""
		return interim, final, interimChanged
	}

	interimChanged = interim != s.interim
	s.interim = interim
	return interim, final, interimChanged
}

func (s *transcriptionSession) stop() error {
	if s == nil || s.stopped || s.recognition == nil {
		return nil
	}

	s.stopped = true
	if err := s.recognition.Stop(); err != nil {
		return fmt.Errorf("failed to stop recognition %s: %w", s.id, err)
	}
	return nil
}

func joinTranscripts(parts []string) string {
	var builder strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(part)
	}
	return builder.String()
}
