package orchestration

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/events"
)

func TestLevelMeterSamplesAndResetsOnStop(t *testing.T) {
	capture := &captureStub{}
	meter := newLevelMeter(capture)
	meter.interval = 5 * time.Millisecond

	meter.Start(context.Background())
	waitForCondition(t, time.Second, "microphone level", func() bool {
		if stream := capture.stream(); stream != nil {
			stream.Push(squareWave(512, 16384))
		}
		return meter.Level() > 0
	})

	if level := meter.Level(); level < 0.49 || level > 0.51 {
		t.Fatalf("expected level near 0.5, got %v", level)
	}

	meter.Stop()
	if level := meter.Level(); level != 0 {
		t.Fatalf("expected level 0 after stop, got %v", level)
	}
	if got := capture.stops.Load(); got != 1 {
		t.Fatalf("expected microphone track to be stopped once, got %d", got)
	}

	capture.stream().Push(squareWave(512, 16384))
	time.Sleep(20 * time.Millisecond)
	if level := meter.Level(); level != 0 {
		t.Fatalf("expected no late sample after stop, got %v", level)
	}

	meter.Stop()
}

func TestLevelMeterAcquisitionFailureKeepsLevelAtZero(t *testing.T) {
	capture := &captureStub{err: audio.ErrPermissionDenied}
	meter := newLevelMeter(capture)
	meter.interval = 5 * time.Millisecond

	meter.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	meter.Stop()

	if level := meter.Level(); level != 0 {
		t.Fatalf("expected level 0, got %v", level)
	}
}

func TestLevelMeterStartReplacesRunningSession(t *testing.T) {
	capture := &captureStub{}
	meter := newLevelMeter(capture)
	meter.interval = 5 * time.Millisecond

	meter.Start(context.Background())
	waitForCondition(t, time.Second, "first stream", func() bool { return capture.stream() != nil })
	first := capture.stream()

	meter.Start(context.Background())
	defer meter.Stop()

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected first stream to be released")
	}
}

func TestLevelMeterReleasesStreamOnContextCancel(t *testing.T) {
	capture := &captureStub{}
	meter := newLevelMeter(capture)
	ctx, cancel := context.WithCancel(context.Background())

	meter.Start(ctx)
	waitForCondition(t, time.Second, "stream", func() bool { return capture.stream() != nil })
	cancel()

	select {
	case <-capture.stream().Done():
	case <-time.After(time.Second):
		t.Fatalf("expected stream to be released")
	}
	meter.Stop()
}

func TestLevelMeterWithoutCaptureIsNoop(t *testing.T) {
	meter := newLevelMeter(nil)

	meter.Start(context.Background())
	meter.Stop()

	if meter.Level() != 0 {
		t.Fatalf("expected level 0")
	}
}

func TestLevelUpdatesAreDeliveredOnTheLoop(t *testing.T) {
	capture := &captureStub{}
	o := NewOrchestrator(
		WithSpeechRecognizer(&recognizerStub{}),
		WithAudioCapture(capture),
		WithLevelSampleInterval(time.Millisecond),
	)

	var running, overlaps, levels atomic.Int32
	callback := func() {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(200 * time.Microsecond)
		running.Add(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.Orchestrate(ctx,
		WithLevelCallback(func(level float64) {
			if level > 0 {
				levels.Add(1)
			}
			callback()
		}),
		WithEventCallback(func(events.Event) { callback() }),
	)
	t.Cleanup(func() {
		cancel()
		o.Close()
	})

	o.StartTurn()
	flush(t, o)
	waitForCondition(t, 2*time.Second, "level updates", func() bool {
		if stream := capture.stream(); stream != nil {
			stream.Push(squareWave(512, 16384))
		}
		o.SubmitText("hello")
		return levels.Load() >= 5
	})

	if got := overlaps.Load(); got != 0 {
		t.Fatalf("expected callbacks to never overlap, got %d overlaps", got)
	}

	o.StopTurn()
	flush(t, o)
	after := levels.Load()

	capture.stream().Push(squareWave(512, 16384))
	time.Sleep(20 * time.Millisecond)
	flush(t, o)

	if got := levels.Load(); got != after {
		t.Fatalf("expected no level updates after the turn ended, got %d more", got-after)
	}
}
