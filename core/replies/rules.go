package replies

import (
	"fmt"
	"regexp"
	"time"

	"github.com/koscakluka/ema-voiceloop/core/conversations"
)

const (
	JokeReply               = "Here's a quick one: Why did the developer go broke? Because they used up all their cache."
	GreetingReply           = "Hello! How can I assist you today?"
	WeatherReply            = "I cannot fetch live weather here, but you can ask me general questions or say “tell me a joke.”"
	IdentityReply           = "I'm a lightweight voice assistant demo running on your machine with pluggable speech recognition and synthesis."
	NothingToSummarizeReply = "There's nothing recent to summarize yet."

	// SummaryLimit is the number of characters kept when summarizing.
	SummaryLimit = 140
	Ellipsis     = "…"

	timeLayout = "03:04 PM"
	dateLayout = "Monday, January 2"
)

// Request is what a rule sees when deciding on and building a reply.
type Request struct {
	// Text is the user's text as entered.
	Text string
	// Normalized is Text trimmed and lowercased. Matchers test against it.
	Normalized string
	// History holds the conversation preceding Text, oldest first.
	History []conversations.Message
	Now     time.Time
}

type Matcher func(normalized string) bool

type Responder func(request Request) string

// Rule pairs a matcher with the responder used when it matches.
type Rule struct {
	Name    string
	Match   Matcher
	Respond Responder
}

// MatchPattern returns a matcher reporting whether the text contains a match
// of the regular expression. It panics if the expression does not compile.
func MatchPattern(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

func MatchAlways() Matcher {
	return func(string) bool { return true }
}

func Fixed(reply string) Responder {
	return func(Request) string { return reply }
}

// DefaultRules returns the built-in rules in evaluation order. The last rule
// always matches.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "time", Match: MatchPattern(`(time|clock)`), Respond: respondTime},
		{Name: "date", Match: MatchPattern(`(date|day)`), Respond: respondDate},
		{Name: "joke", Match: MatchPattern(`joke`), Respond: Fixed(JokeReply)},
		{Name: "greeting", Match: MatchPattern(`(hello|hi|hey)`), Respond: Fixed(GreetingReply)},
		{Name: "weather", Match: MatchPattern(`weather`), Respond: Fixed(WeatherReply)},
		{Name: "identity", Match: MatchPattern(`(who are you|what are you)`), Respond: Fixed(IdentityReply)},
		{Name: "summarize", Match: MatchPattern(`summar(y|ise|ize)`), Respond: respondSummary},
		{Name: "echo", Match: MatchAlways(), Respond: respondEcho},
	}
}

func respondTime(request Request) string {
	return fmt.Sprintf("It is %s.", request.Now.Format(timeLayout))
}

func respondDate(request Request) string {
	return fmt.Sprintf("Today is %s.", request.Now.Format(dateLayout))
}

func respondSummary(request Request) string {
	last, ok := conversations.LastOfRole(request.History, conversations.RoleUser)
	if !ok {
		return NothingToSummarizeReply
	}
	return Truncate(last.Content, SummaryLimit)
}

func respondEcho(request Request) string {
	return EchoReply(request.Text)
}

// EchoReply is the reply given when no other rule matches.
func EchoReply(text string) string {
	return "You said: " + text
}

// Truncate shortens text to limit characters, marking the cut with
// [Ellipsis].
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}
