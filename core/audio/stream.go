package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned when the user or the platform refused
	// microphone access.
	ErrPermissionDenied = errors.New("audio capture permission denied")
	// ErrNoDevice is returned when no capture device is available.
	ErrNoDevice = errors.New("no audio capture device available")
	// ErrStreamEnded is returned when operating on a stream whose tracks
	// have all been stopped.
	ErrStreamEnded = errors.New("audio stream ended")
)

// Capture acquires live microphone streams.
type Capture interface {
	RequestStream(ctx context.Context) (*Stream, error)
}

// Stream is a live source of mono audio frames. Frames are delivered to
// every registered listener until all of the stream's tracks are stopped.
type Stream struct {
	id       string
	encoding EncodingInfo
	tracks   []*Track

	mu           sync.RWMutex
	listeners    map[uint64]func(frame []byte)
	nextListener uint64

	liveTracks atomic.Int32
	ended      chan struct{}
}

// NewStream creates a stream with a single audio track. onStop is invoked
// once, when the track is stopped.
func NewStream(encoding EncodingInfo, onStop func() error) *Stream {
	if encoding.IsZero() {
		encoding = GetDefaultEncodingInfo()
	}

	stream := &Stream{
		id:        uuid.NewString(),
		encoding:  encoding,
		listeners: map[uint64]func([]byte){},
		ended:     make(chan struct{}),
	}
	stream.tracks = []*Track{newTrack(stream, onStop)}
	stream.liveTracks.Store(int32(len(stream.tracks)))
	return stream
}

func (s *Stream) ID() string                 { return s.id }
func (s *Stream) EncodingInfo() EncodingInfo { return s.encoding }

// Tracks returns the stream's tracks. The slice must not be modified.
func (s *Stream) Tracks() []*Track { return s.tracks }

// Done is closed once every track of the stream has been stopped.
func (s *Stream) Done() <-chan struct{} { return s.ended }

func (s *Stream) IsLive() bool { return s.liveTracks.Load() > 0 }

// Listen registers onAudio for every frame pushed to the stream and returns
// a function that unregisters it. Listening to an ended stream is a no-op.
func (s *Stream) Listen(onAudio func(frame []byte)) (unlisten func()) {
	if onAudio == nil || !s.IsLive() {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = onAudio
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Push delivers a frame to all listeners. Frames pushed after the stream
// ended are dropped.
func (s *Stream) Push(frame []byte) {
	if !s.IsLive() || len(frame) == 0 {
		return
	}

	s.mu.RLock()
	listeners := make([]func([]byte), 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(frame)
	}
}

// Stop stops every track of the stream.
func (s *Stream) Stop() error {
	var errs error
	for _, track := range s.tracks {
		errs = errors.Join(errs, track.Stop())
	}
	return errs
}

func (s *Stream) trackStopped() {
	if s.liveTracks.Add(-1) == 0 {
		s.mu.Lock()
		clear(s.listeners)
		s.mu.Unlock()
		close(s.ended)
	}
}

// Track is a single stoppable source inside a [Stream].
type Track struct {
	id      string
	stream  *Stream
	onStop  func() error
	stopped atomic.Bool
}

func newTrack(stream *Stream, onStop func() error) *Track {
	return &Track{id: uuid.NewString(), stream: stream, onStop: onStop}
}

func (t *Track) ID() string     { return t.id }
func (t *Track) Kind() string   { return "audio" }
func (t *Track) IsLive() bool   { return !t.stopped.Load() }
func (t *Track) Stream() string { return t.stream.id }

// Stop releases the track. Repeated calls are ignored.
func (t *Track) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if t.onStop != nil {
		err = t.onStop()
	}
	t.stream.trackStopped()
	return err
}
