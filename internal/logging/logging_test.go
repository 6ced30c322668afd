package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesToFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voiceloop.log")

	logger, closer, err := Open(path, "warn")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("visible")
	if err := closer.Close(); err != nil {
		t.Fatalf("expected no error on close, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file, got %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("expected info message to be filtered")
	}
	if !strings.Contains(string(data), `"message":"visible"`) {
		t.Fatalf("expected warn message in log, got %s", data)
	}
}

func TestOpenWithoutPathDiscards(t *testing.T) {
	logger, closer, err := Open("", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger.Error().Msg("dropped")
	if err := closer.Close(); err != nil {
		t.Fatalf("expected no error on close, got %v", err)
	}
}

func TestOpenRejectsUnknownLevel(t *testing.T) {
	if _, _, err := Open("", "loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
