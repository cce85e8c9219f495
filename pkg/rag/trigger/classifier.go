package trigger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/pkg/events"
	"persuasive-dialogue-be/pkg/llm"
	"persuasive-dialogue-be/pkg/store"
)

const (
	DefaultMaxTokens = 150
	DefaultTimeout   = 8 * time.Second

	logModule = "Classifier"
)

// Request carries everything the classifier looks at for one turn
type Request struct {
	UserMessage         string
	Topic               string
	Strategy            store.Strategy
	ClarificationState  *store.ClarificationState
	NeedsFactualSupport bool
}

func (r Request) signals() Signals {
	return Signals{
		UserMessage:         r.UserMessage,
		Strategy:            r.Strategy,
		ClarificationState:  r.ClarificationState,
		NeedsFactualSupport: r.NeedsFactualSupport,
	}
}

type Config struct {
	MaxTokens int
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTokens: DefaultMaxTokens,
		Timeout:   DefaultTimeout,
	}
}

// Classifier decides per turn whether evidence retrieval should run. The
// model path is optional; every failure on it degrades to keyword rules.
type Classifier struct {
	llmProvider llm.LLMProvider
	config      Config
	logger      logger.ILogger
	publisher   events.Publisher
}

// NewClassifier builds a classifier. A nil provider means keyword rules only.
func NewClassifier(llmProvider llm.LLMProvider, config Config, log logger.ILogger, publisher events.Publisher) *Classifier {
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Classifier{
		llmProvider: llmProvider,
		config:      config,
		logger:      log,
		publisher:   publisher,
	}
}

// ShouldTrigger never fails: model errors, timeouts and unreadable output
// all resolve through the keyword evaluator.
func (c *Classifier) ShouldTrigger(ctx context.Context, req Request) bool {
	decision, _ := c.resolve(ctx, req)
	return decision
}

func (c *Classifier) resolve(ctx context.Context, req Request) (bool, stage) {
	if c.llmProvider == nil {
		decision, rule := EvaluateKeywords(req.signals())
		c.logger.Debug(logModule, "Keyword decision", map[string]interface{}{
			"rule":     rule,
			"decision": decision,
		})
		return decision, stageKeyword
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	response, err := c.llmProvider.Chat(callCtx, buildMessages(req),
		llm.WithMaxTokens(c.config.MaxTokens),
		llm.WithTemperature(0.0),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return c.degrade(ctx, req, "model call failed", err)
	}

	verdict, st, ok := parseResponse(response)
	if !ok {
		return c.degrade(ctx, req, "model response unreadable", nil)
	}

	c.logger.Info(logModule, "Model decision", map[string]interface{}{
		"stage":    string(st),
		"decision": verdict.ShouldTrigger,
		"reason":   verdict.Reason,
		"strategy": string(req.Strategy),
	})
	return verdict.ShouldTrigger, st
}

func (c *Classifier) degrade(ctx context.Context, req Request, cause string, err error) (bool, stage) {
	decision, rule := EvaluateKeywords(req.signals())

	// A cancelled caller abandons the turn; there is nothing to audit
	if ctx.Err() != nil {
		return decision, stageKeyword
	}

	details := map[string]interface{}{
		"cause":    cause,
		"rule":     rule,
		"decision": decision,
		"strategy": string(req.Strategy),
	}
	if err != nil {
		details["error"] = err.Error()
	}
	c.logger.Warn(logModule, "Classification degraded to keyword rules", details)

	// Publishing must not fail the turn; the event carries the same details
	if pubErr := c.publisher.Publish(context.WithoutCancel(ctx), events.New(events.TypeClassificationDegraded, details)); pubErr != nil {
		c.logger.Warn(logModule, "Failed to publish degradation event", map[string]interface{}{"error": pubErr.Error()})
	}

	return decision, stageKeyword
}

func buildMessages(req Request) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: buildInstructions(req.Strategy)},
		{Role: llm.RoleUser, Content: buildUserBlock(req)},
	}
}

func buildInstructions(strategy store.Strategy) string {
	var prompt strings.Builder

	prompt.WriteString("You decide whether a persuasive assistant should search an evidence database before replying.\n")
	prompt.WriteString("You do NOT answer the user. You only classify.\n\n")

	prompt.WriteString("<trigger_when>\n")
	prompt.WriteString("- The user explicitly asks for evidence, data, statistics, studies or sources\n")
	prompt.WriteString("- The user expresses uncertainty or doubt\n")
	prompt.WriteString("- The assistant's position needs factual support to answer well\n")
	prompt.WriteString("</trigger_when>\n\n")

	prompt.WriteString("<suppress_when>\n")
	prompt.WriteString("- The user states a clear personal opinion that does not call for evidence\n")
	prompt.WriteString("- The message is off-topic, small talk or casual\n")
	prompt.WriteString("</suppress_when>\n\n")

	prompt.WriteString("<strategy_rules>\n")
	switch strategy {
	case store.StrategyClarification:
		prompt.WriteString("Strategy: clarification.\n")
		prompt.WriteString("- Only search once the user's question is clear and specific\n")
		prompt.WriteString("- If the assistant is still waiting for a clarifying answer, search only when the user now asks for evidence or the answer made the request specific\n")
		prompt.WriteString("- Once the conversation is ready for search, prefer searching\n")
	default:
		prompt.WriteString("Strategy: suggestion.\n")
		prompt.WriteString("- Be aggressive: search for any substantive message about the topic\n")
		prompt.WriteString("- Skip only greetings, acknowledgements and very short replies\n")
	}
	prompt.WriteString("</strategy_rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\"shouldTrigger\": true, \"reason\": \"brief explanation\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func buildUserBlock(req Request) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", req.Topic))

	if cs := req.ClarificationState; cs != nil {
		b.WriteString(fmt.Sprintf("Awaiting clarification: %t\n", cs.IsAwaitingClarification))
		b.WriteString(fmt.Sprintf("Ready for search: %t\n", cs.IsReadyForSearch))
	}
	b.WriteString(fmt.Sprintf("Needs factual support: %t\n\n", req.NeedsFactualSupport))

	b.WriteString("<user_message>\n")
	b.WriteString(truncate(req.UserMessage, 1000))
	b.WriteString("\n</user_message>")

	return b.String()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
