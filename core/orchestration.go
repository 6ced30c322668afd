package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"github.com/koscakluka/ema-voiceloop/core/replies"
	"github.com/koscakluka/ema-voiceloop/core/texttospeech"
)

var ErrOrchestratorClosed = errors.New("orchestrator closed")

var _ conversations.ActiveContext = (*Orchestrator)(nil)

// Orchestrator runs the voice turn loop: it listens through a speech
// recognizer, answers committed transcripts with a reply generator and
// speaks the replies.
//
// All turn state is owned by a single loop goroutine fed by a command queue.
// Exported methods enqueue and return immediately; observables can be read
// from any goroutine.
type Orchestrator struct {
	runtime      *commandRuntime
	closeOnce    sync.Once
	teardownOnce sync.Once

	// speechToText is the recognizer facade used to handle optional wiring.
	speechToText speechToText
	// textToSpeech is the synthesizer facade used to handle optional wiring.
	textToSpeech textToSpeech
	levelMeter   *LevelMeter
	replies      ReplyGenerator
	greeting     string

	history *conversations.History

	// Loop-owned state.
	turnState TurnState
	profile   VoiceProfile
	current   *transcriptionSession
	draining  map[*transcriptionSession]struct{}
	catalog   []texttospeech.Voice

	observables observables

	// levelPending coalesces meter samples so at most one level command is
	// queued at a time.
	levelPending atomic.Bool

	emitEvent   eventEmitter
	baseContext context.Context
}

// observables is the published view of the loop-owned state.
type observables struct {
	mu sync.RWMutex

	isListening       bool
	isSpeaking        bool
	partialTranscript string
	profile           VoiceProfile
	availableVoices   []texttospeech.Voice
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		runtime:     newCommandRuntime(),
		levelMeter:  newLevelMeter(nil),
		replies:     replies.NewEngine(),
		greeting:    DefaultGreeting,
		profile:     VoiceProfile{Language: DefaultLanguage},
		draining:    map[*transcriptionSession]struct{}{},
		emitEvent:   noopEventEmitter,
		baseContext: context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.greeting != "" {
		o.history = conversations.NewHistory(conversations.NewAssistantMessage(o.greeting))
	} else {
		o.history = conversations.NewHistory()
	}
	o.observables.profile = o.profile

	return o
}

// Orchestrate starts the loop that processes queued commands. Commands
// queued before the call are processed first, in order.
//
// ctx is the base context for recognition and synthesis; cancelling it
// closes the orchestrator.
//
// Contract: call Orchestrate at most once per orchestrator instance.
func (o *Orchestrator) Orchestrate(ctx context.Context, opts ...OrchestrateOption) {
	if o.runtime.isClosed() {
		logger.Warn("orchestrator already closed, skipping Orchestrate")
		return
	}

	orchestrateOptions := OrchestrateOptions{}
	for _, opt := range opts {
		opt(&orchestrateOptions)
	}

	o.baseContext = ctx
	o.emitEvent = newCallbackEventEmitter(orchestrateOptions)
	o.levelMeter.setCallback(func(float64) {
		if o.levelPending.CompareAndSwap(false, true) {
			if !o.runtime.enqueue(levelSampled{}) {
				o.levelPending.Store(false)
			}
		}
	})

	if notifier, ok := o.textToSpeech.synthesizer.(VoiceCatalogNotifier); ok {
		notifier.OnVoicesChanged(func() { o.runtime.enqueue(voicesChanged{}) })
	}
	o.runtime.enqueue(voicesChanged{})

	if started := o.runtime.start(o.processQueuedCommand, o.teardown); started {
		go func() {
			select {
			case <-ctx.Done():
				o.Close()
			case <-o.runtime.closeCh:
			}
		}()
	}
}

// Close stops listening, metering and speaking and ends the loop. Commands
// still queued are dropped. It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.runtime.end()
		if o.runtime.started.Load() {
			o.runtime.waitUntilEnded()
			return
		}
		o.teardown()
	})
}

func (o *Orchestrator) teardown() {
	o.teardownOnce.Do(func() {
		var errs error
		if o.current != nil {
			errs = errors.Join(errs, o.current.stop())
			o.current = nil
		}
		for session := range o.draining {
			errs = errors.Join(errs, session.stop())
			delete(o.draining, session)
		}

		o.levelMeter.Stop()
		errs = errors.Join(errs, o.textToSpeech.cancel())

		o.observables.mu.Lock()
		o.observables.isListening = false
		o.observables.isSpeaking = false
		o.observables.partialTranscript = ""
		o.observables.mu.Unlock()
		o.turnState = StateIdle

		if errs != nil {
			logger.Warn("failed to tear down orchestrator cleanly", "error", errs)
		}
	})
}

// StartTurn starts listening. It is a no-op while already listening.
func (o *Orchestrator) StartTurn() { o.runtime.enqueue(startTurnCommand{}) }

// StopTurn stops listening. Final results the recognizer still delivers for
// the stopped turn are committed. It is a no-op while idle.
func (o *Orchestrator) StopTurn() { o.runtime.enqueue(stopTurnCommand{}) }

// SubmitText commits typed text the same way a final transcript is
// committed. Blank text is ignored.
func (o *Orchestrator) SubmitText(text string) { o.runtime.enqueue(submitTextCommand{text: text}) }

// SetLanguage selects the language of the next listening turn and of the
// voices offered by AvailableVoices.
func (o *Orchestrator) SetLanguage(language string) {
	o.runtime.enqueue(setLanguageCommand{language: language})
}

// SetVoice selects the voice of the next utterance. An unknown name makes
// the synthesizer pick a default voice for the language.
func (o *Orchestrator) SetVoice(voiceName string) {
	o.runtime.enqueue(setVoiceCommand{voiceName: voiceName})
}

func (o *Orchestrator) handle(ctx context.Context, cmd command) {
	switch c := cmd.(type) {
	case startTurnCommand:
		o.startTurn(ctx)
	case stopTurnCommand:
		o.stopTurn()
	case submitTextCommand:
		o.submitText(ctx, c.text)
	case setLanguageCommand:
		o.setLanguage(c.language)
	case setVoiceCommand:
		o.setVoice(c.voiceName)
	case voicesChanged:
		o.refreshVoices()
	case flushCommand:
		close(c.done)
	case levelSampled:
		o.publishLevel()
	case recognitionStarted:
		logger.Debug("recognition started", "session_id", c.session.id)
	case recognitionResult:
		o.handleRecognitionResult(ctx, c)
	case recognitionError:
		o.handleRecognitionError(ctx, c)
	case recognitionEnded:
		o.handleRecognitionEnded(c)
	case speechStarted:
		o.handleSpeechStarted(c)
	case speechEnded:
		o.handleSpeechEnded(c)
	}
}

// History returns a copy of the conversation, oldest message first.
func (o *Orchestrator) History() []conversations.Message { return o.history.Snapshot() }

func (o *Orchestrator) IsListening() bool {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return o.observables.isListening
}

func (o *Orchestrator) IsSpeaking() bool {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return o.observables.isSpeaking
}

func (o *Orchestrator) PartialTranscript() string {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return o.observables.partialTranscript
}

// Level returns the microphone level in [0,1]; 0 while not listening.
func (o *Orchestrator) Level() float64 { return o.levelMeter.Level() }

func (o *Orchestrator) Language() string {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return o.observables.profile.Language
}

func (o *Orchestrator) VoiceName() string {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return o.observables.profile.VoiceName
}

// AvailableVoices returns the voices matching the selected language, or the
// whole catalog when none match.
func (o *Orchestrator) AvailableVoices() []texttospeech.Voice {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return append([]texttospeech.Voice(nil), o.observables.availableVoices...)
}

// State is Listening while listening, otherwise Speaking while a reply is
// audible, otherwise Idle.
func (o *Orchestrator) State() TurnState {
	o.observables.mu.RLock()
	defer o.observables.mu.RUnlock()
	return publishedState(o.observables.isListening, o.observables.isSpeaking)
}
