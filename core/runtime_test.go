package orchestration

import (
	"sync"
	"testing"
	"time"
)

func TestCommandRuntimePreservesOrder(t *testing.T) {
	runtime := newCommandRuntime()

	for i := range 100 {
		runtime.enqueue(submitTextCommand{text: string(rune('a' + i%26))})
	}

	var mu sync.Mutex
	var processed []string
	done := make(chan struct{})
	runtime.start(func(queued queuedCommand) {
		mu.Lock()
		defer mu.Unlock()
		if submit, ok := queued.command.(submitTextCommand); ok {
			processed = append(processed, submit.text)
		}
		if _, ok := queued.command.(flushCommand); ok {
			close(done)
		}
	}, func() {})
	runtime.enqueue(flushCommand{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for queue to drain")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(processed) != 100 {
		t.Fatalf("expected 100 processed commands, got %d", len(processed))
	}
	for i, text := range processed {
		if expected := string(rune('a' + i%26)); text != expected {
			t.Fatalf("expected %q at %d, got %q", expected, i, text)
		}
	}

	runtime.end()
	runtime.waitUntilEnded()
}

func TestCommandRuntimeRejectsAfterEnd(t *testing.T) {
	runtime := newCommandRuntime()
	exited := make(chan struct{})
	runtime.start(func(queuedCommand) {}, func() { close(exited) })

	runtime.end()
	runtime.end()
	runtime.waitUntilEnded()

	select {
	case <-exited:
	default:
		t.Fatalf("expected exit hook to run before the loop ended")
	}
	if runtime.enqueue(startTurnCommand{}) {
		t.Fatalf("expected enqueue to fail after end")
	}
	if runtime.start(func(queuedCommand) {}, func() {}) {
		t.Fatalf("expected a second start to be ignored")
	}
}
