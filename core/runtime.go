package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// command is a unit of work for the orchestrator loop. Public methods and
// capability callbacks never touch turn state directly, they enqueue a
// command instead.
type command interface {
	kind() string
}

type (
	startTurnCommand   struct{}
	stopTurnCommand    struct{}
	submitTextCommand  struct{ text string }
	setLanguageCommand struct{ language string }
	setVoiceCommand    struct{ voiceName string }
	voicesChanged      struct{}
	flushCommand       struct{ done chan struct{} }
	levelSampled       struct{}

	recognitionStarted struct{ session *transcriptionSession }
	recognitionResult  struct {
		session     *transcriptionSession
		resultIndex int
		results     []speechtotext.Result
	}
	recognitionError struct {
		session *transcriptionSession
		errKind speechtotext.ErrorKind
	}
	recognitionEnded struct{ session *transcriptionSession }

	speechStarted struct{ utteranceID string }
	speechEnded   struct{ utteranceID string }
)

func (startTurnCommand) kind() string   { return "start_turn" }
func (stopTurnCommand) kind() string    { return "stop_turn" }
func (submitTextCommand) kind() string  { return "submit_text" }
func (setLanguageCommand) kind() string { return "set_language" }
func (setVoiceCommand) kind() string    { return "set_voice" }
func (voicesChanged) kind() string      { return "voices_changed" }
func (flushCommand) kind() string       { return "flush" }
func (levelSampled) kind() string       { return "level_sampled" }
func (recognitionStarted) kind() string { return "recognition_started" }
func (recognitionResult) kind() string  { return "recognition_result" }
func (recognitionError) kind() string   { return "recognition_error" }
func (recognitionEnded) kind() string   { return "recognition_ended" }
func (speechStarted) kind() string      { return "speech_started" }
func (speechEnded) kind() string        { return "speech_ended" }

type queuedCommand struct {
	command  command
	queuedAt time.Time
}

// commandRuntime is an unbounded FIFO drained by a single loop goroutine.
// Enqueueing never blocks, so capability callbacks can enqueue from any
// goroutine, including from inside a call made by the loop.
type commandRuntime struct {
	mu      sync.Mutex
	pending []queuedCommand
	notify  chan struct{}

	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

func newCommandRuntime() *commandRuntime {
	return &commandRuntime{
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (runtime *commandRuntime) enqueue(cmd command) bool {
	if runtime == nil || runtime.isClosed() {
		return false
	}

	runtime.mu.Lock()
	runtime.pending = append(runtime.pending, queuedCommand{command: cmd, queuedAt: time.Now()})
	runtime.mu.Unlock()

	select {
	case runtime.notify <- struct{}{}:
	default:
	}
	return true
}

func (runtime *commandRuntime) dequeue() (queuedCommand, bool) {
	runtime.mu.Lock()
	defer runtime.mu.Unlock()

	if len(runtime.pending) == 0 {
		return queuedCommand{}, false
	}

	next := runtime.pending[0]
	runtime.pending[0] = queuedCommand{}
	runtime.pending = runtime.pending[1:]
	return next, true
}

func (runtime *commandRuntime) queuedCommandCount() int {
	runtime.mu.Lock()
	defer runtime.mu.Unlock()
	return len(runtime.pending)
}

func (runtime *commandRuntime) isClosed() bool {
	if runtime == nil {
		return false
	}

	select {
	case <-runtime.closeCh:
		return true
	default:
		return false
	}
}

// start launches the loop. Commands queued before start are processed in
// order once it runs. onExit runs on the loop goroutine after the last
// processed command.
func (runtime *commandRuntime) start(process func(queuedCommand), onExit func()) (started bool) {
	if runtime == nil || runtime.isClosed() {
		return false
	}

	runtime.startOnce.Do(func() {
		if runtime.isClosed() {
			return
		}

		started = true
		runtime.started.Store(true)
		go func() {
			defer close(runtime.done)
			defer onExit()

			for {
				for {
					if runtime.isClosed() {
						return
					}
					queued, ok := runtime.dequeue()
					if !ok {
						break
					}
					process(queued)
				}

				select {
				case <-runtime.closeCh:
					return
				case <-runtime.notify:
				}
			}
		}()
	})

	return started
}

func (runtime *commandRuntime) end() {
	if runtime == nil {
		return
	}

	runtime.endOnce.Do(func() {
		close(runtime.closeCh)
	})
}

func (runtime *commandRuntime) waitUntilEnded() {
	if runtime == nil {
		return
	}

	if runtime.started.Load() {
		<-runtime.done
	}
}

func (o *Orchestrator) processQueuedCommand(queued queuedCommand) {
	ctx, span := tracer.Start(o.baseContext, "process command")
	defer span.End()

	queuedTime := time.Since(queued.queuedAt).Seconds()
	span.AddEvent("taken out of queue", trace.WithAttributes(attribute.Float64("command.queued_time", queuedTime)))
	span.SetAttributes(
		attribute.String("command.kind", queued.command.kind()),
		attribute.Float64("command.queued_time", queuedTime),
	)

	o.handle(ctx, queued.command)

	span.SetAttributes(
		attribute.String("turn.state", o.turnState.String()),
		attribute.Int("command.queued_commands", o.runtime.queuedCommandCount()),
	)
}

// Flush blocks until every command queued before the call has been
// processed. It returns early with an error when the orchestrator closes.
func (o *Orchestrator) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !o.runtime.enqueue(flushCommand{done: done}) {
		return ErrOrchestratorClosed
	}

	select {
	case <-done:
		return nil
	case <-o.runtime.closeCh:
		return ErrOrchestratorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
