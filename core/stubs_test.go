package orchestration

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/events"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

func flush(t *testing.T, o *Orchestrator) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.Flush(ctx); err != nil {
		t.Fatalf("expected queue to flush, got %v", err)
	}
}

func startOrchestrator(t *testing.T, opts ...OrchestratorOption) (*Orchestrator, *eventRecorder) {
	t.Helper()

	o := NewOrchestrator(opts...)
	recorder := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	o.Orchestrate(ctx, WithEventCallback(recorder.record))
	t.Cleanup(func() {
		cancel()
		o.Close()
	})

	flush(t, o)
	return o, recorder
}

func lastMessageContent(t *testing.T, o *Orchestrator) string {
	t.Helper()

	history := o.History()
	if len(history) == 0 {
		t.Fatalf("expected a non-empty history")
	}
	return history[len(history)-1].Content
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) count(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, event := range r.events {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

type recognizerStub struct {
	mu           sync.Mutex
	err          error
	recognitions []*recognitionStub
}

func (r *recognizerStub) Recognize(_ context.Context, opts ...speechtotext.RecognitionOption) (speechtotext.Recognition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	recognition := &recognitionStub{options: speechtotext.NewRecognitionOptions(opts...)}
	r.recognitions = append(r.recognitions, recognition)
	return recognition, nil
}

func (r *recognizerStub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recognitions)
}

func (r *recognizerStub) recognition(t *testing.T, i int) *recognitionStub {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= len(r.recognitions) {
		t.Fatalf("expected at least %d recognitions, got %d", i+1, len(r.recognitions))
	}
	return r.recognitions[i]
}

type recognitionStub struct {
	options speechtotext.RecognitionOptions
	stops   atomic.Int32
}

func (r *recognitionStub) Stop() error {
	r.stops.Add(1)
	return nil
}

func (r *recognitionStub) final(resultIndex int, transcript string) {
	r.options.ResultCallback(resultIndex, []speechtotext.Result{{Transcript: transcript, IsFinal: true}})
}

func (r *recognitionStub) interim(resultIndex int, transcript string) {
	r.options.ResultCallback(resultIndex, []speechtotext.Result{{Transcript: transcript}})
}

type synthesizerStub struct {
	mu         sync.Mutex
	voices     []texttospeech.Voice
	calls      []string
	utterances []texttospeech.UtteranceOptions
	speakErr   error

	onVoicesChanged func()
}

func (s *synthesizerStub) Speak(_ context.Context, text string, opts ...texttospeech.UtteranceOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "speak:"+text)
	s.utterances = append(s.utterances, texttospeech.NewUtteranceOptions(opts...))
	return s.speakErr
}

func (s *synthesizerStub) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "cancel")
	return nil
}

func (s *synthesizerStub) Voices() []texttospeech.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]texttospeech.Voice(nil), s.voices...)
}

func (s *synthesizerStub) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *synthesizerStub) utterance(t *testing.T, i int) texttospeech.UtteranceOptions {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.utterances) {
		t.Fatalf("expected at least %d utterances, got %d", i+1, len(s.utterances))
	}
	return s.utterances[i]
}

type notifyingSynthesizerStub struct {
	*synthesizerStub
}

func (s notifyingSynthesizerStub) OnVoicesChanged(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onVoicesChanged = callback
}

func (s notifyingSynthesizerStub) setVoices(voices []texttospeech.Voice) {
	s.mu.Lock()
	s.voices = voices
	callback := s.onVoicesChanged
	s.mu.Unlock()

	if callback != nil {
		callback()
	}
}

type captureStub struct {
	mu      sync.Mutex
	err     error
	streams []*audio.Stream
	stops   atomic.Int32
}

func (c *captureStub) RequestStream(context.Context) (*audio.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	stream := audio.NewStream(
		audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16},
		func() error {
			c.stops.Add(1)
			return nil
		},
	)
	c.streams = append(c.streams, stream)
	return stream, nil
}

func (c *captureStub) stream() *audio.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.streams) == 0 {
		return nil
	}
	return c.streams[len(c.streams)-1]
}

// squareWave returns a linear16 frame alternating between +amplitude and
// -amplitude.
func squareWave(samples int, amplitude int16) []byte {
	frame := make([]byte, samples*2)
	for i := range samples {
		sample := amplitude
		if i%2 == 1 {
			sample = -amplitude
		}
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(sample))
	}
	return frame
}
