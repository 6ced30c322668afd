package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"testing"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
)

func TestNewCallbackConfigDefaultsToNoopCallbacks(t *testing.T) {
	callbacks, wsConfig := newCallbackConfig(speechtotext.RecognitionOptions{})

	callbacks.startCallback()
	callbacks.resultCallback(0, nil)
	callbacks.errorCallback(speechtotext.ErrorNetwork)
	callbacks.endCallback()

	if wsConfig.continuous {
		t.Fatalf("expected continuous recognition disabled when unset")
	}
	if wsConfig.interimResults {
		t.Fatalf("expected interim-results disabled when unset")
	}
}

func TestNewCallbackConfigKeepsConfiguredCallbacksAndFlags(t *testing.T) {
	startCalls := atomic.Int32{}
	resultCalls := atomic.Int32{}
	errorCalls := atomic.Int32{}
	endCalls := atomic.Int32{}

	callbacks, wsConfig := newCallbackConfig(speechtotext.NewRecognitionOptions(
		speechtotext.WithLanguage("en-GB"),
		speechtotext.WithContinuous(true),
		speechtotext.WithInterimResults(true),
		speechtotext.WithStartCallback(func() { startCalls.Add(1) }),
		speechtotext.WithResultCallback(func(int, []speechtotext.Result) { resultCalls.Add(1) }),
		speechtotext.WithErrorCallback(func(speechtotext.ErrorKind) { errorCalls.Add(1) }),
		speechtotext.WithEndCallback(func() { endCalls.Add(1) }),
	))

	callbacks.startCallback()
	callbacks.resultCallback(0, nil)
	callbacks.errorCallback(speechtotext.ErrorNoSpeech)
	callbacks.endCallback()

	if !wsConfig.continuous || !wsConfig.interimResults {
		t.Fatalf("expected continuous interim recognition enabled")
	}
	if wsConfig.language != "en-GB" {
		t.Fatalf("expected language en-GB, got %q", wsConfig.language)
	}
	for name, calls := range map[string]*atomic.Int32{
		"start":  &startCalls,
		"result": &resultCalls,
		"error":  &errorCalls,
		"end":    &endCalls,
	} {
		if got := calls.Load(); got != 1 {
			t.Fatalf("expected %s callback once, got %d", name, got)
		}
	}
}

func TestResultLogReplacesInterimAndAdvancesAfterFinal(t *testing.T) {
	var log resultLog

	if index, result := log.apply("hel", false); index != 0 || result.IsFinal {
		t.Fatalf("expected first interim at index 0, got index %d result %+v", index, result)
	}
	if index, result := log.apply("hello", true); index != 0 || !result.IsFinal || result.Transcript != "hello" {
		t.Fatalf("expected final to replace interim at index 0, got index %d result %+v", index, result)
	}
	if index, _ := log.apply("world", false); index != 1 {
		t.Fatalf("expected interim after final at index 1, got %d", index)
	}
}

func TestResultLogKeepsIndexesMonotonicWithoutGrowing(t *testing.T) {
	var log resultLog

	previous := -1
	for i := range 10000 {
		log.apply("partial", false)
		index, _ := log.apply(fmt.Sprintf("final %d", i), true)
		if index != previous+1 {
			t.Fatalf("expected index %d, got %d", previous+1, index)
		}
		previous = index
	}

	if log.finalized != 10000 {
		t.Fatalf("expected 10000 finalized results counted, got %d", log.finalized)
	}
}

func TestProcessMessageReportsResultsFromChangedIndex(t *testing.T) {
	type call struct {
		index   int
		results []speechtotext.Result
	}
	var calls []call

	s := newSession(&Recognizer{}, speechtotext.NewRecognitionOptions(
		speechtotext.WithContinuous(true),
		speechtotext.WithResultCallback(func(resultIndex int, results []speechtotext.Result) {
			calls = append(calls, call{index: resultIndex, results: results})
		}),
	))

	s.processMessage(resultsMessage("hel", false))
	s.processMessage(resultsMessage("", false))
	s.processMessage(resultsMessage(" hello there ", true))
	s.processMessage(resultsMessage("again", false))
	s.processMessage([]byte(`{"type":"Metadata"}`))
	s.processMessage([]byte(`not json`))

	if len(calls) != 3 {
		t.Fatalf("expected 3 result callbacks, got %d", len(calls))
	}
	if calls[0].index != 0 || calls[0].results[0].IsFinal || calls[0].results[0].Transcript != "hel" {
		t.Fatalf("unexpected first callback: %+v", calls[0])
	}
	if calls[1].index != 0 || !calls[1].results[0].IsFinal || calls[1].results[0].Transcript != "hello there" {
		t.Fatalf("unexpected final callback: %+v", calls[1])
	}
	if calls[2].index != 1 || len(calls[2].results) != 1 || calls[2].results[0].Transcript != "again" {
		t.Fatalf("unexpected trailing interim callback: %+v", calls[2])
	}
}

func TestProcessMessageStopsNonContinuousSessionAfterFinal(t *testing.T) {
	s := newSession(&Recognizer{}, speechtotext.NewRecognitionOptions())

	s.processMessage(resultsMessage("hi", true))

	if !s.isStopped() {
		t.Fatalf("expected non-continuous session to stop after first final result")
	}
}

func TestBuildListenURLSetsLanguageAndInterimResults(t *testing.T) {
	rawURL, err := buildListenURL(defaultEndpoint, "nova-3",
		encodingInfo{SampleRate: 16000, Format: encodingLinear16},
		wsConfig{language: "fr-FR", interimResults: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
	query := parsed.Query()
	expected := map[string]string{
		"encoding":        "linear16",
		"sample_rate":     "16000",
		"channels":        "1",
		"model":           "nova-3",
		"language":        "fr-FR",
		"interim_results": "true",
	}
	for key, value := range expected {
		if got := query.Get(key); got != value {
			t.Fatalf("expected %s=%q, got %q", key, value, got)
		}
	}
}

func TestConvertEncodingRejectsCompandedAudioAbove8kHz(t *testing.T) {
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingMulaw}); err == nil {
		t.Fatalf("expected error for 16kHz mulaw")
	}
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 44100, Format: audio.EncodingLinear16}); err == nil {
		t.Fatalf("expected error for unsupported sample rate")
	}

	encoding, err := convertEncoding(audio.GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected default encoding to be supported, got %v", err)
	}
	if encoding.Format != encodingLinear16 || encoding.SampleRate != audio.DefaultSampleRate {
		t.Fatalf("unexpected encoding %+v", encoding)
	}
}

func TestRecognizeWithoutAPIKeyIsNotSupported(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")

	recognizer := NewRecognizer(stubCapture{})
	_, err := recognizer.Recognize(context.Background())
	if !errors.Is(err, speechtotext.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestRecognizeReportsCaptureFailureThenEnds(t *testing.T) {
	errorKinds := make(chan speechtotext.ErrorKind, 1)
	ended := make(chan struct{})

	recognizer := NewRecognizer(stubCapture{err: audio.ErrPermissionDenied}, WithAPIKey("test"))
	_, err := recognizer.Recognize(context.Background(),
		speechtotext.WithErrorCallback(func(kind speechtotext.ErrorKind) { errorKinds <- kind }),
		speechtotext.WithEndCallback(func() { close(ended) }),
	)
	if err != nil {
		t.Fatalf("expected recognition to start, got %v", err)
	}

	<-ended
	select {
	case kind := <-errorKinds:
		if kind != speechtotext.ErrorNotAllowed {
			t.Fatalf("expected not-allowed error, got %q", kind)
		}
	default:
		t.Fatalf("expected error callback before end")
	}
}

type stubCapture struct {
	err error
}

func (c stubCapture) RequestStream(context.Context) (*audio.Stream, error) {
	if c.err != nil {
		return nil, c.err
	}
	return audio.NewStream(audio.GetDefaultEncodingInfo(), nil), nil
}

func resultsMessage(transcript string, isFinal bool) []byte {
	return []byte(fmt.Sprintf(
		`{"type":%q,"is_final":%t,"channel":{"alternatives":[{"transcript":%q}]}}`,
		string(api.TypeMessageResponse), isFinal, transcript,
	))
}
