package replies

import (
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
)

var fixedNow = time.Date(2026, time.October, 15, 15, 4, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
}

func TestGenerateFixedReplies(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "tell me a joke please", expected: JokeReply},
		{input: "hello there", expected: GreetingReply},
		{input: "  HEY  ", expected: GreetingReply},
		{input: "what's the weather like", expected: WeatherReply},
		{input: "Who are you?", expected: IdentityReply},
		{input: "what time is it", expected: "It is 03:04 PM."},
		{input: "Check the clock", expected: "It is 03:04 PM."},
		{input: "what's the date", expected: "Today is Thursday, October 15."},
		{input: "purple elephants", expected: "You said: purple elephants"},
		{input: "Purple Elephants", expected: "You said: Purple Elephants"},
	}

	for _, tt := range tests {
		if got := engine.Generate(tt.input, nil); got != tt.expected {
			t.Fatalf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestGenerateFirstMatchWins(t *testing.T) {
	engine := newTestEngine()

	// Matches both the time and the joke rule; time comes first.
	if got := engine.Generate("joke about time", nil); got != "It is 03:04 PM." {
		t.Fatalf("expected time rule to win, got %q", got)
	}
	// Matches both the joke and the greeting rule.
	if got := engine.Generate("hey, joke", nil); got != JokeReply {
		t.Fatalf("expected joke rule to win, got %q", got)
	}
}

func TestGenerateSummarizeWithoutUserMessage(t *testing.T) {
	engine := newTestEngine()
	history := []conversations.Message{conversations.NewAssistantMessage("Hi! How can I help?")}

	if got := engine.Generate("summarize", history); got != NothingToSummarizeReply {
		t.Fatalf("expected nothing-to-summarize reply, got %q", got)
	}
}

func TestGenerateSummarizeTruncatesLatestUserMessage(t *testing.T) {
	engine := newTestEngine()
	long := strings.Repeat("a", 60) + strings.Repeat("b", 140)
	history := []conversations.Message{
		conversations.NewUserMessage("older message"),
		conversations.NewUserMessage(long),
		conversations.NewAssistantMessage("You said: ..."),
	}

	got := engine.Generate("summarise that", history)
	expected := long[:140] + Ellipsis
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestGenerateSummarizeKeepsShortMessage(t *testing.T) {
	engine := newTestEngine()
	history := []conversations.Message{conversations.NewUserMessage("short one")}

	if got := engine.Generate("give me a summary", history); got != "short one" {
		t.Fatalf("expected untruncated message, got %q", got)
	}
}

func TestGenerateIsPureForNonClockRules(t *testing.T) {
	history := []conversations.Message{conversations.NewUserMessage("remember this")}
	before := append([]conversations.Message(nil), history...)

	first := NewEngine(WithClock(func() time.Time { return fixedNow })).Generate("summarize", history)
	second := NewEngine(WithClock(func() time.Time { return fixedNow.Add(72 * time.Hour) })).Generate("summarize", history)

	if first != second {
		t.Fatalf("expected identical replies, got %q and %q", first, second)
	}
	if len(history) != len(before) || history[0] != before[0] {
		t.Fatalf("expected history to be left untouched")
	}
}

func TestWithRulesReplacesDefaults(t *testing.T) {
	engine := NewEngine(WithRules(
		Rule{Name: "broken"},
		Rule{Name: "ping", Match: MatchPattern(`^ping$`), Respond: Fixed("pong")},
	))

	if got := engine.Generate(" PING ", nil); got != "pong" {
		t.Fatalf("expected pong, got %q", got)
	}
	if got := engine.Generate("hello", nil); got != "You said: hello" {
		t.Fatalf("expected echo fallback, got %q", got)
	}
	if len(engine.Rules()) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(engine.Rules()))
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	text := strings.Repeat("é", 141)
	got := Truncate(text, 140)

	if got != strings.Repeat("é", 140)+Ellipsis {
		t.Fatalf("expected 140 characters plus ellipsis, got %d runes", len([]rune(got)))
	}
}
