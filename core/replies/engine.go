// Package replies builds assistant replies from user text with an ordered
// list of pattern rules. The first matching rule wins.
package replies

import (
	"strings"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Engine struct {
	rules    []Rule
	clock    func() time.Time
	location *time.Location
}

type EngineOption func(*Engine)

// WithClock overrides the wall clock used by the time and date rules.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLocation sets the time zone replies are rendered in.
func WithLocation(location *time.Location) EngineOption {
	return func(e *Engine) {
		e.location = location
	}
}

// WithRules replaces the default rules. Rules are evaluated in order.
func WithRules(rules ...Rule) EngineOption {
	return func(e *Engine) {
		e.rules = rules
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		rules:    DefaultRules(),
		clock:    time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(engine)
	}

	engine.rules = append([]Rule(nil), engine.rules...)
	return engine
}

// Generate returns the reply for text. history is the conversation preceding
// text and is only read. Text no rule matches is echoed back.
func (e *Engine) Generate(text string, history []conversations.Message) string {
	request := Request{
		Text:       text,
		Normalized: Normalize(text),
		History:    history,
		Now:        e.clock().In(e.location),
	}

	for _, rule := range e.rules {
		if rule.Match == nil || rule.Respond == nil {
			continue
		}
		if rule.Match(request.Normalized) {
			return rule.Respond(request)
		}
	}
	return EchoReply(text)
}

// Rules returns the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Normalize trims and lowercases text.
func Normalize(text string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(text))
}
