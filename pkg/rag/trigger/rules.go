package trigger

import (
	"regexp"
	"strings"

	"persuasive-dialogue-be/pkg/store"
)

// MinSubstantialLength is the trimmed length from which a message counts as substantial
const MinSubstantialLength = 5

// minClearQuestionLength is the trimmed length below which a question is never clear
const minClearQuestionLength = 10

var (
	personalOpinionPattern = regexp.MustCompile(`(?i)\b(i think|i believe|i feel|in my opinion|in my view|my view is|personally,? i|i'm (?:convinced|certain|sure)|i am (?:convinced|certain|sure)|i (?:strongly )?(?:agree|disagree))\b`)

	evidenceRequestPattern = regexp.MustCompile(`(?i)\b(evidence|proof|prove|proves|source|sources|citation|citations|cite|data|statistic|statistics|stats|study|studies|research|facts?|figures|numbers|show me)\b`)

	uncertaintyPattern = regexp.MustCompile(`(?i)\b(not sure|unsure|uncertain|i don'?t know|i do not know|don'?t understand|confused|no idea|i wonder|maybe|perhaps|hard to say|can'?t decide)\b`)

	skepticismPattern = regexp.MustCompile(`(?i)\b(really\?|are you sure|is that true|is it true|how do you know|prove it|proof|source\??|citation|i doubt|doubtful|skeptical|sceptical|says who)`)

	researchTermsPattern = regexp.MustCompile(`(?i)\b(statistics?|data|study|studies|research|survey|surveys|percent|percentage|numbers?|experts?|scientists?)\b`)

	interrogativePattern = regexp.MustCompile(`(?i)\b(what|why|how|when|where|who|which)\b`)

	questionOpenerPattern = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|is|are|do|does|did|can|could|should|would|will|was|were|has|have)\b`)
)

// Signals is the pure input of the keyword evaluator
type Signals struct {
	UserMessage         string
	Strategy            store.Strategy
	ClarificationState  *store.ClarificationState
	NeedsFactualSupport bool
}

// Rule is one row of the keyword decision table. Applies selects the rule,
// Outcome gives the verdict once selected.
type Rule struct {
	Name    string
	Applies func(Signals) bool
	Outcome func(Signals) bool
}

func constant(v bool) func(Signals) bool {
	return func(Signals) bool { return v }
}

// Rules is the keyword decision table in precedence order; first match wins.
var Rules = []Rule{
	{
		Name:    "personal-opinion",
		Applies: func(s Signals) bool { return personalOpinionPattern.MatchString(s.UserMessage) },
		Outcome: constant(false),
	},
	{
		Name:    "evidence-request",
		Applies: func(s Signals) bool { return evidenceRequestPattern.MatchString(s.UserMessage) },
		Outcome: constant(true),
	},
	{
		Name:    "uncertainty",
		Applies: func(s Signals) bool { return uncertaintyPattern.MatchString(s.UserMessage) },
		Outcome: constant(true),
	},
	{
		Name:    "clarification-strategy",
		Applies: func(s Signals) bool { return s.Strategy == store.StrategyClarification },
		Outcome: func(s Signals) bool {
			cs := s.ClarificationState
			if cs == nil {
				return false
			}
			if cs.IsAwaitingClarification && !cs.IsReadyForSearch {
				return false
			}
			return cs.IsReadyForSearch
		},
	},
	{
		Name:    "suggestion-strategy",
		Applies: func(s Signals) bool { return s.Strategy == store.StrategySuggestion },
		Outcome: func(s Signals) bool {
			if s.NeedsFactualSupport {
				return true
			}
			// Suggestion is deliberately aggressive about searching
			return IsSubstantial(s.UserMessage)
		},
	},
	{
		Name:    "default",
		Applies: constant(true),
		Outcome: constant(false),
	},
}

// EvaluateKeywords runs the decision table and returns the verdict with the
// name of the rule that produced it.
func EvaluateKeywords(s Signals) (bool, string) {
	for _, r := range Rules {
		if r.Applies(s) {
			return r.Outcome(s), r.Name
		}
	}
	return false, "default"
}

// IsSubstantial reports whether the trimmed message reaches MinSubstantialLength
func IsSubstantial(msg string) bool {
	return len([]rune(strings.TrimSpace(msg))) >= MinSubstantialLength
}

// LooksLikeClearQuestion is true for messages ending in "?" or opening with an
// interrogative or auxiliary verb.
func LooksLikeClearQuestion(msg string) bool {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return false
	}
	return strings.HasSuffix(trimmed, "?") || questionOpenerPattern.MatchString(trimmed)
}

// IsQuestionClear is false below ten characters and true when the message
// carries an interrogative word.
func IsQuestionClear(msg string) bool {
	trimmed := strings.TrimSpace(msg)
	if len([]rune(trimmed)) < minClearQuestionLength {
		return false
	}
	return interrogativePattern.MatchString(trimmed)
}

// NeedsFactualSupport decides whether the turn should be backed by evidence.
func NeedsFactualSupport(msg string, hasRetrievedContext bool) bool {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return false
	}

	isQuestion := LooksLikeClearQuestion(trimmed)

	if !hasRetrievedContext && isQuestion && len([]rune(trimmed)) >= minClearQuestionLength {
		return true
	}

	if skepticismPattern.MatchString(trimmed) {
		return true
	}

	asksAbout := isQuestion || interrogativePattern.MatchString(trimmed)
	return researchTermsPattern.MatchString(trimmed) && asksAbout
}
