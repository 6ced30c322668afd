package deepgram

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
)

const (
	defaultEndpoint          = "wss://api.deepgram.com/v1/listen"
	defaultModel             = "nova-3"
	defaultKeepAliveInterval = 5 * time.Second
	defaultCloseTimeout      = 5 * time.Second
)

// Recognizer streams microphone audio to Deepgram's live transcription API.
type Recognizer struct {
	capture audio.Capture

	apiKey   string
	model    string
	endpoint string
	dialer   *websocket.Dialer

	keepAliveInterval time.Duration
	closeTimeout      time.Duration
}

type RecognizerOption func(*Recognizer)

// WithAPIKey sets the API key. Without it the DEEPGRAM_API_KEY environment
// variable is used.
func WithAPIKey(apiKey string) RecognizerOption {
	return func(r *Recognizer) {
		r.apiKey = apiKey
	}
}

func WithModel(model string) RecognizerOption {
	return func(r *Recognizer) {
		r.model = model
	}
}

func WithEndpoint(endpoint string) RecognizerOption {
	return func(r *Recognizer) {
		r.endpoint = endpoint
	}
}

func WithDialer(dialer *websocket.Dialer) RecognizerOption {
	return func(r *Recognizer) {
		r.dialer = dialer
	}
}

func WithKeepAliveInterval(interval time.Duration) RecognizerOption {
	return func(r *Recognizer) {
		r.keepAliveInterval = interval
	}
}

func NewRecognizer(capture audio.Capture, opts ...RecognizerOption) *Recognizer {
	recognizer := &Recognizer{
		capture:           capture,
		model:             defaultModel,
		endpoint:          defaultEndpoint,
		dialer:            websocket.DefaultDialer,
		keepAliveInterval: defaultKeepAliveInterval,
		closeTimeout:      defaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(recognizer)
	}

	if recognizer.apiKey == "" {
		recognizer.apiKey, _ = os.LookupEnv("DEEPGRAM_API_KEY")
	}
	return recognizer
}

// Recognize starts a recognition session. The session connects and begins
// streaming in the background; failures after this point are reported
// through the error callback followed by the end callback.
func (r *Recognizer) Recognize(ctx context.Context, opts ...speechtotext.RecognitionOption) (speechtotext.Recognition, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found: %w", speechtotext.ErrNotSupported)
	}
	if r.capture == nil {
		return nil, fmt.Errorf("no audio capture configured: %w", speechtotext.ErrNotSupported)
	}

	options := speechtotext.NewRecognitionOptions(opts...)
	s := newSession(r, options)
	go s.run(ctx)

	return s, nil
}
