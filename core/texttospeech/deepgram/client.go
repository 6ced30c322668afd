package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultEndpoint = "https://api.deepgram.com/v1/speak"

// AudioOutput plays synthesized audio.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	// ClearBuffer drops audio that has not been played yet.
	ClearBuffer()
	// AwaitMark blocks until the audio sent so far has been played.
	AwaitMark(ctx context.Context) error
}

// TextToSpeechClient synthesizes one utterance at a time with Deepgram's
// speak API and plays it on an [AudioOutput].
type TextToSpeechClient struct {
	output   AudioOutput
	apiKey   string
	endpoint string
	client   *http.Client

	voicesMu        sync.RWMutex
	voices          []texttospeech.Voice
	voicesListeners []func()

	mu            sync.Mutex
	cancelCurrent context.CancelFunc
}

type TextToSpeechOption func(*TextToSpeechClient)

// WithAPIKey sets the API key. Without it the DEEPGRAM_API_KEY environment
// variable is used.
func WithAPIKey(apiKey string) TextToSpeechOption {
	return func(c *TextToSpeechClient) {
		c.apiKey = apiKey
	}
}

func WithEndpoint(endpoint string) TextToSpeechOption {
	return func(c *TextToSpeechClient) {
		c.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) TextToSpeechOption {
	return func(c *TextToSpeechClient) {
		c.client = client
	}
}

// WithVoices replaces the built-in voice catalog.
func WithVoices(voices []texttospeech.Voice) TextToSpeechOption {
	return func(c *TextToSpeechClient) {
		c.voices = append([]texttospeech.Voice(nil), voices...)
	}
}

func NewTextToSpeechClient(output AudioOutput, opts ...TextToSpeechOption) (*TextToSpeechClient, error) {
	client := &TextToSpeechClient{
		output:   output,
		endpoint: defaultEndpoint,
		voices:   GetAvailableVoices(),
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		client.apiKey, _ = os.LookupEnv("DEEPGRAM_API_KEY")
	}
	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found: %w", texttospeech.ErrNotSupported)
	}
	if client.output == nil {
		return nil, fmt.Errorf("no audio output configured: %w", texttospeech.ErrNotSupported)
	}
	if client.client == nil {
		client.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)}
	}

	return client, nil
}

// Cancel stops the utterance in flight, if any, and silences the output.
func (c *TextToSpeechClient) Cancel() error {
	c.mu.Lock()
	cancel := c.cancelCurrent
	c.cancelCurrent = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.output.ClearBuffer()
	return nil
}

func (c *TextToSpeechClient) Voices() []texttospeech.Voice {
	c.voicesMu.RLock()
	defer c.voicesMu.RUnlock()
	return append([]texttospeech.Voice(nil), c.voices...)
}

// OnVoicesChanged registers a callback invoked whenever the catalog changes.
func (c *TextToSpeechClient) OnVoicesChanged(callback func()) {
	if callback == nil {
		return
	}
	c.voicesMu.Lock()
	defer c.voicesMu.Unlock()
	c.voicesListeners = append(c.voicesListeners, callback)
}

// SetVoices replaces the catalog and notifies listeners.
func (c *TextToSpeechClient) SetVoices(voices []texttospeech.Voice) {
	c.voicesMu.Lock()
	c.voices = append([]texttospeech.Voice(nil), voices...)
	listeners := append([]func(){}, c.voicesListeners...)
	c.voicesMu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// resolveVoice picks the model for an utterance: the requested voice when it
// is in the catalog, otherwise the default voice for the language.
func (c *TextToSpeechClient) resolveVoice(options texttospeech.UtteranceOptions) string {
	voices := c.Voices()
	if options.Voice != nil {
		if voice, ok := texttospeech.FindVoice(voices, options.Voice.Name); ok {
			return voice.Name
		}
	}
	if options.Language != "" {
		language := strings.ToLower(options.Language)
		for _, voice := range voices {
			if strings.HasPrefix(strings.ToLower(voice.Language), language) {
				return voice.Name
			}
		}
	}
	return defaultVoice
}
