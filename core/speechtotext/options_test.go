package speechtotext

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewRecognitionOptionsDefaultsToEnglish(t *testing.T) {
	options := NewRecognitionOptions()

	if options.Language != "en-US" {
		t.Fatalf("expected default language en-US, got %q", options.Language)
	}
	if options.Continuous || options.InterimResults {
		t.Fatalf("expected continuous and interim results disabled by default")
	}
}

func TestNewRecognitionOptionsAppliesOptionsInOrder(t *testing.T) {
	var gotIndex int
	var gotKind ErrorKind
	started, ended := false, false

	options := NewRecognitionOptions(
		WithLanguage("fr-FR"),
		WithLanguage("de-DE"),
		WithContinuous(true),
		WithInterimResults(true),
		WithStartCallback(func() { started = true }),
		WithResultCallback(func(resultIndex int, _ []Result) { gotIndex = resultIndex }),
		WithErrorCallback(func(kind ErrorKind) { gotKind = kind }),
		WithEndCallback(func() { ended = true }),
	)

	if options.Language != "de-DE" {
		t.Fatalf("expected last language option to win, got %q", options.Language)
	}
	if !options.Continuous || !options.InterimResults {
		t.Fatalf("expected continuous interim recognition")
	}

	options.StartCallback()
	options.ResultCallback(3, nil)
	options.ErrorCallback(ErrorNetwork)
	options.EndCallback()

	if !started || !ended {
		t.Fatalf("expected start and end callbacks to be wired")
	}
	if gotIndex != 3 {
		t.Fatalf("expected result index 3, got %d", gotIndex)
	}
	if gotKind.String() != "network" {
		t.Fatalf("expected network error kind, got %q", gotKind)
	}
}

func TestErrorKindCanBeRecoveredFromWrappedError(t *testing.T) {
	err := fmt.Errorf("failed to connect: %w", ErrorNetwork)

	var kind ErrorKind
	if !errors.As(err, &kind) || kind != ErrorNetwork {
		t.Fatalf("expected network error kind, got %q", kind)
	}
}
