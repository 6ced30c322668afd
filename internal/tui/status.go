package tui

import (
	"fmt"
	"math"
	"strings"

	orchestration "github.com/koscakluka/ema-voiceloop/core"
)

// levelPercent maps a level in [0,1] to a fill of round(level*140) percent,
// clamped to 0..100.
func levelPercent(level float64) int {
	return int(max(0, min(100, math.Round(level*140))))
}

func levelBar(level float64, width int) string {
	width = max(width, 1)
	filled := levelPercent(level) * width / 100
	return levelStyle.Render(strings.Repeat("█", filled)) +
		labelStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3d%%", levelPercent(level))
}

func statusLabel(state orchestration.TurnState) string {
	switch state {
	case orchestration.StateListening:
		return listeningStyle.Render("Listening")
	case orchestration.StateSpeaking:
		return speakingStyle.Render("Speaking")
	default:
		return idleStyle.Render("Idle")
	}
}
