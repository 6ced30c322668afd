package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/koscakluka/ema-voiceloop/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	transcriptsCommitted = newCounter("voiceloop.transcripts.committed", "User messages committed from speech or text")
	utterancesRequested  = newCounter("voiceloop.utterances.requested", "Replies handed to the speech synthesizer")
	recognitionErrors    = newCounter("voiceloop.recognition.errors", "Listening turns aborted by a recognition error")
)

func newCounter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}
