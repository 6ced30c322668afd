package speechtotext

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by a recognizer that cannot run in the current
// environment, for example because it has no credentials or no capture
// device.
var ErrNotSupported = errors.New("speech recognition not supported")

// Recognizer starts continuous recognition sessions.
type Recognizer interface {
	Recognize(ctx context.Context, opts ...RecognitionOption) (Recognition, error)
}

// Recognition is a running recognition session. Stop requests a graceful
// shutdown; the end callback still fires once the session has wound down.
type Recognition interface {
	Stop() error
}

// Result is a single recognition result. Interim results may be revised by
// later events, final results never are.
type Result struct {
	Transcript string
	IsFinal    bool
}

// ErrorKind names the reason a recognition session failed.
type ErrorKind string

const (
	ErrorNoSpeech             ErrorKind = "no-speech"
	ErrorAborted              ErrorKind = "aborted"
	ErrorAudioCapture         ErrorKind = "audio-capture"
	ErrorNetwork              ErrorKind = "network"
	ErrorNotAllowed           ErrorKind = "not-allowed"
	ErrorServiceNotAllowed    ErrorKind = "service-not-allowed"
	ErrorLanguageNotSupported ErrorKind = "language-not-supported"
)

func (k ErrorKind) String() string { return string(k) }

// Error makes a kind usable as a wrapped error; recover it with errors.As.
func (k ErrorKind) Error() string { return string(k) }

type RecognitionOptions struct {
	Language       string
	Continuous     bool
	InterimResults bool

	StartCallback func()
	// ResultCallback receives every result from resultIndex onward. Results
	// before resultIndex were already delivered as final and are not
	// included.
	ResultCallback func(resultIndex int, results []Result)
	ErrorCallback  func(kind ErrorKind)
	EndCallback    func()
}

type RecognitionOption func(*RecognitionOptions)

func NewRecognitionOptions(opts ...RecognitionOption) RecognitionOptions {
	options := RecognitionOptions{Language: "en-US"}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithLanguage(language string) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.Language = language
	}
}

func WithContinuous(continuous bool) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.Continuous = continuous
	}
}

func WithInterimResults(interimResults bool) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.InterimResults = interimResults
	}
}

func WithStartCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.StartCallback = callback
	}
}

func WithResultCallback(callback func(resultIndex int, results []Result)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ResultCallback = callback
	}
}

func WithErrorCallback(callback func(kind ErrorKind)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEndCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.EndCallback = callback
	}
}
