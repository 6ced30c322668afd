package audio

import (
	"errors"
	"fmt"
	"sync"
)

// Fanout shares one capture device between any number of streams. The
// device is started when the first stream opens and stopped when the last
// open stream is stopped.
type Fanout struct {
	encoding EncodingInfo

	startDevice func() error
	stopDevice  func() error

	// deviceMu serializes device start and stop. It is never held by Push,
	// so a capture thread can keep pushing while stopDevice waits for it.
	deviceMu sync.Mutex
	running  bool

	mu      sync.Mutex
	streams map[*Stream]struct{}
}

func NewFanout(encoding EncodingInfo, startDevice, stopDevice func() error) *Fanout {
	if startDevice == nil {
		startDevice = func() error { return nil }
	}
	if stopDevice == nil {
		stopDevice = func() error { return nil }
	}

	return &Fanout{
		encoding:    encoding,
		startDevice: startDevice,
		stopDevice:  stopDevice,
		streams:     map[*Stream]struct{}{},
	}
}

// Open returns a new live stream fed by the shared device.
func (f *Fanout) Open() (*Stream, error) {
	f.deviceMu.Lock()
	defer f.deviceMu.Unlock()

	if !f.running {
		if err := f.startDevice(); err != nil {
			return nil, fmt.Errorf("failed to start capture device: %w", err)
		}
		f.running = true
	}

	var stream *Stream
	stream = NewStream(f.encoding, func() error { return f.release(stream) })

	f.mu.Lock()
	f.streams[stream] = struct{}{}
	f.mu.Unlock()
	return stream, nil
}

func (f *Fanout) release(stream *Stream) error {
	f.mu.Lock()
	if _, ok := f.streams[stream]; !ok {
		f.mu.Unlock()
		return nil
	}
	delete(f.streams, stream)
	f.mu.Unlock()

	return f.stopIfIdle()
}

// stopIfIdle stops the device once no stream holds it. A stream opened
// while the stop was pending keeps the device running.
func (f *Fanout) stopIfIdle() error {
	f.deviceMu.Lock()
	defer f.deviceMu.Unlock()

	f.mu.Lock()
	idle := len(f.streams) == 0
	f.mu.Unlock()

	if !idle || !f.running {
		return nil
	}

	f.running = false
	if err := f.stopDevice(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

// Push delivers a captured frame to every open stream.
func (f *Fanout) Push(frame []byte) {
	f.mu.Lock()
	streams := make([]*Stream, 0, len(f.streams))
	for stream := range f.streams {
		streams = append(streams, stream)
	}
	f.mu.Unlock()

	for _, stream := range streams {
		stream.Push(frame)
	}
}

// OpenStreams reports how many streams currently hold the device.
func (f *Fanout) OpenStreams() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.streams)
}

// Close stops every open stream, which in turn stops the device.
func (f *Fanout) Close() error {
	f.mu.Lock()
	streams := make([]*Stream, 0, len(f.streams))
	for stream := range f.streams {
		streams = append(streams, stream)
	}
	f.mu.Unlock()

	var errs error
	for _, stream := range streams {
		errs = errors.Join(errs, stream.Stop())
	}
	return errs
}
