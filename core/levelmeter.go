package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/audio"
)

// LevelMeter samples the microphone level while a turn is listening. Only
// one sampling session is active at a time.
type LevelMeter struct {
	capture  AudioCapture
	interval time.Duration

	// onLevel runs on the sampling goroutine for every stored sample.
	onLevel func(level float64)

	mu      sync.Mutex
	session *meterSession
	level   float64
}

type meterSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newLevelMeter(capture AudioCapture) *LevelMeter {
	return &LevelMeter{
		capture:  capture,
		interval: DefaultLevelSampleInterval,
		onLevel:  func(float64) {},
	}
}

func (m *LevelMeter) set(capture AudioCapture) {
	if m != nil {
		m.capture = capture
	}
}

func (m *LevelMeter) isConfigured() bool {
	return m != nil && m.capture != nil
}

func (m *LevelMeter) setCallback(onLevel func(level float64)) {
	if m == nil {
		return
	}
	if onLevel == nil {
		onLevel = func(float64) {}
	}

	m.mu.Lock()
	m.onLevel = onLevel
	m.mu.Unlock()
}

// Level returns the latest sample in [0,1]. It is 0 while the meter is
// stopped.
func (m *LevelMeter) Level() float64 {
	if m == nil {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Start stops any running session and starts a new one. Stream acquisition
// happens in the background; a failure leaves the level at 0.
func (m *LevelMeter) Start(ctx context.Context) {
	if !m.isConfigured() {
		return
	}
	m.Stop()

	ctx, cancel := context.WithCancel(ctx)
	session := &meterSession{cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	run := panicSafeNamedWorker("level meter", func(ctx context.Context) error {
		return m.sample(ctx, session)
	})
	go func() {
		defer close(session.done)
		defer cancel()
		if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("level meter stopped", "error", err)
		}
	}()
}

// Stop ends the running session and resets the level to 0. It returns once
// the session released its stream. Repeated calls are no-ops.
func (m *LevelMeter) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	session := m.session
	m.session = nil
	m.level = 0
	m.mu.Unlock()

	if session == nil {
		return
	}
	session.cancel()
	<-session.done
}

func (m *LevelMeter) sample(ctx context.Context, session *meterSession) error {
	stream, err := m.capture.RequestStream(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire microphone stream: %w", err)
	}
	defer func() {
		if err := stream.Stop(); err != nil {
			logger.Debug("failed to release microphone stream", "error", err)
		}
	}()

	analyser := audio.NewAnalyser(stream, audio.DefaultFFTSize)
	defer analyser.Close()

	samples := make([]byte, analyser.FrequencyBinCount())
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stream.Done():
			return audio.ErrStreamEnded
		case <-ticker.C:
		}

		analyser.ByteTimeDomainData(samples)
		level := audio.RMS(samples)

		m.mu.Lock()
		if m.session != session {
			m.mu.Unlock()
			return nil
		}
		m.level = level
		onLevel := m.onLevel
		m.mu.Unlock()

		onLevel(level)
	}
}
