package policy

import (
	"context"
	"time"

	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/pkg/events"
	"persuasive-dialogue-be/pkg/rag/evidence"
	"persuasive-dialogue-be/pkg/rag/prompt"
	"persuasive-dialogue-be/pkg/rag/trigger"
	"persuasive-dialogue-be/pkg/store"
)

const logModule = "Policy"

// Classifier decides whether a turn should search for evidence
type Classifier interface {
	ShouldTrigger(ctx context.Context, req trigger.Request) bool
}

// Retriever fetches standpoint-filtered evidence for a session
type Retriever interface {
	Retrieve(ctx context.Context, query string, session *store.SearchSession, topK, snippetSize int) ([]store.Evidence, error)
}

// Decision is the outcome of one turn. Evidence is only set when a search ran
// in this turn; Degraded reports that the search failed and the prompt was
// composed without fresh evidence.
type Decision struct {
	SystemPrompt string            `json:"system_prompt"`
	Evidence     []store.Evidence  `json:"evidence"`
	ActionTaken  store.ActionTaken `json:"action_taken"`
	Degraded     bool              `json:"degraded"`
}

// Policy runs the per-turn decision for both strategies. It holds no session
// state; sessions are passed in and returned as values.
type Policy struct {
	classifier Classifier
	retriever  Retriever
	retrieval  evidence.Config
	logger     logger.ILogger
	publisher  events.Publisher
	now        func() time.Time
}

func NewPolicy(classifier Classifier, retriever Retriever, retrieval evidence.Config, log logger.ILogger, publisher events.Publisher) *Policy {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Policy{
		classifier: classifier,
		retriever:  retriever,
		retrieval:  retrieval,
		logger:     log,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Decide picks the action for the user message and composes the system
// prompt. The session is never modified. A cancelled context returns the
// context error; every other failure degrades into the returned Decision.
func (p *Policy) Decide(ctx context.Context, session *store.SearchSession, userMessage string) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := p.repair(ctx, session)

	action := p.decideAction(ctx, s, userMessage)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision := &Decision{ActionTaken: action}

	if !action.Searched {
		decision.SystemPrompt = prompt.Compose(s.Standpoint, s.Strategy, s.Topic, s.LastRetrievedEvidence)
		p.publishDecided(ctx, s, decision)
		return decision, nil
	}

	fresh, err := p.retriever.Retrieve(ctx, userMessage, s, p.retrieval.TopK, p.retrieval.SnippetSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		details := map[string]interface{}{
			"conversation_id": s.ID.String(),
			"error":           err.Error(),
		}
		p.logger.Error(logModule, "Retrieval failed, using baseline prompt", details)
		p.publish(ctx, events.TypeRetrievalFailed, details)

		decision.ActionTaken.Searched = false
		decision.Degraded = true
		decision.SystemPrompt = prompt.ComposeBaseline(s.Standpoint, s.Strategy, s.Topic)
		p.publishDecided(ctx, s, decision)
		return decision, nil
	}

	decision.Evidence = fresh

	// An empty search keeps the prompt grounded in what the session already has
	promptEvidence := fresh
	if len(promptEvidence) == 0 {
		promptEvidence = s.LastRetrievedEvidence
	}
	decision.SystemPrompt = prompt.Compose(s.Standpoint, s.Strategy, s.Topic, promptEvidence)

	p.publish(ctx, events.TypeSearchTriggered, map[string]interface{}{
		"conversation_id": s.ID.String(),
		"query":           userMessage,
		"evidence_count":  len(fresh),
	})
	p.publishDecided(ctx, s, decision)

	return decision, nil
}

func (p *Policy) decideAction(ctx context.Context, s *store.SearchSession, msg string) store.ActionTaken {
	switch s.Strategy {
	case store.StrategySuggestion:
		return p.decideSuggestion(ctx, s, msg)
	case store.StrategyClarification:
		return p.decideClarification(ctx, s, msg)
	default:
		p.logger.Warn(logModule, "Unknown strategy, no action taken", map[string]interface{}{
			"conversation_id": s.ID.String(),
			"strategy":        string(s.Strategy),
		})
		return store.ActionTaken{}
	}
}

func (p *Policy) decideSuggestion(ctx context.Context, s *store.SearchSession, msg string) store.ActionTaken {
	action := store.ActionTaken{ProvidedSuggestion: true}

	hasContext := s.HasRetrievedContext()
	substantial := trigger.IsSubstantial(msg)

	// First substantial message always grounds the session in evidence
	if !hasContext && substantial {
		p.logger.Debug(logModule, "Bootstrap search", map[string]interface{}{"conversation_id": s.ID.String()})
		action.Searched = true
		return action
	}

	needsSupport := trigger.NeedsFactualSupport(msg, hasContext)
	isQuestion := trigger.LooksLikeClearQuestion(msg)

	action.Searched = p.classifier.ShouldTrigger(ctx, trigger.Request{
		UserMessage:         msg,
		Topic:               s.Topic,
		Strategy:            store.StrategySuggestion,
		NeedsFactualSupport: needsSupport || isQuestion || substantial,
	})
	return action
}

// decideClarification picks the clarification-strategy action from the
// session's clarification state. A fresh session asks. An awaiting session
// searches when the classifier agrees and asks again otherwise. A session
// with no flags set asks on an unclear question and defers to the
// classifier on a clear one. A ready session never asks: when the
// classifier declines, the returned action is all false and the turn is
// answered from the dialogue alone.
func (p *Policy) decideClarification(ctx context.Context, s *store.SearchSession, msg string) store.ActionTaken {
	var action store.ActionTaken
	cs := s.ClarificationState

	classify := func() bool {
		return p.classifier.ShouldTrigger(ctx, trigger.Request{
			UserMessage:         msg,
			Topic:               s.Topic,
			Strategy:            store.StrategyClarification,
			ClarificationState:  cs,
			NeedsFactualSupport: trigger.NeedsFactualSupport(msg, s.HasRetrievedContext()),
		})
	}

	switch {
	case cs == nil:
		action.AskedClarification = true

	case cs.IsReadyForSearch:
		action.Searched = classify()

	case cs.IsAwaitingClarification:
		if classify() {
			action.Searched = true
		} else {
			action.AskedClarification = true
		}

	default:
		if !trigger.IsQuestionClear(msg) {
			action.AskedClarification = true
		} else {
			action.Searched = classify()
		}
	}

	return action
}

// RecordTurn returns the next session snapshot after the assistant replied.
// The input session is left untouched.
func (p *Policy) RecordTurn(session *store.SearchSession, userMessage, assistantText string, action store.ActionTaken, fresh []store.Evidence) *store.SearchSession {
	repaired, _ := store.Repair(session)
	next := repaired.Clone()

	next.DialogueHistory = append(next.DialogueHistory,
		store.UserPrefix+userMessage,
		store.AssistantPrefix+assistantText,
	)

	if len(fresh) > 0 {
		next.LastRetrievedEvidence = append([]store.Evidence(nil), fresh...)
	}

	if next.Strategy == store.StrategyClarification {
		next.ClarificationState = foldClarification(next.ClarificationState, action, assistantText)
	}

	next.Stats.ConversationTurns++
	if action.Searched {
		now := p.now()
		next.Stats.SearchTriggerCount++
		next.Stats.LastSearchQuery = userMessage
		next.Stats.LastSearchTimestamp = &now
	}
	if action.AskedClarification {
		next.Stats.ClarificationQuestionCount++
	}
	if action.ProvidedSuggestion {
		next.Stats.SuggestionCount++
	}

	p.publish(context.Background(), events.TypeTurnRecorded, map[string]interface{}{
		"conversation_id": next.ID.String(),
		"turn":            next.Stats.ConversationTurns,
		"searched":        action.Searched,
		"asked":           action.AskedClarification,
		"suggested":       action.ProvidedSuggestion,
	})

	return next
}

// foldClarification applies the turn's action to a copy of the state.
// Readiness is never cleared once set.
func foldClarification(cs *store.ClarificationState, action store.ActionTaken, assistantText string) *store.ClarificationState {
	next := &store.ClarificationState{}
	if cs != nil {
		next.IsAwaitingClarification = cs.IsAwaitingClarification
		next.IsReadyForSearch = cs.IsReadyForSearch
		next.PendingClarificationQuestions = append([]string(nil), cs.PendingClarificationQuestions...)
	}

	switch {
	case action.Searched:
		next.IsReadyForSearch = true
		next.IsAwaitingClarification = false
		next.PendingClarificationQuestions = nil
	case action.AskedClarification:
		next.IsAwaitingClarification = true
		next.PendingClarificationQuestions = append(next.PendingClarificationQuestions, assistantText)
	}

	return next
}

func (p *Policy) repair(ctx context.Context, session *store.SearchSession) *store.SearchSession {
	s, repairs := store.Repair(session)
	if len(repairs) == 0 {
		return s
	}

	kinds := make([]string, 0, len(repairs))
	for _, r := range repairs {
		kinds = append(kinds, string(r))
	}
	details := map[string]interface{}{
		"conversation_id": s.ID.String(),
		"repairs":         kinds,
	}
	p.logger.Warn(logModule, "Repaired malformed session state", details)
	p.publish(ctx, events.TypeSessionRepaired, details)

	return s
}

func (p *Policy) publishDecided(ctx context.Context, s *store.SearchSession, d *Decision) {
	p.publish(ctx, events.TypeTurnDecided, map[string]interface{}{
		"conversation_id": s.ID.String(),
		"strategy":        string(s.Strategy),
		"searched":        d.ActionTaken.Searched,
		"asked":           d.ActionTaken.AskedClarification,
		"suggested":       d.ActionTaken.ProvidedSuggestion,
		"degraded":        d.Degraded,
	})
}

func (p *Policy) publish(ctx context.Context, eventType string, details map[string]interface{}) {
	if err := p.publisher.Publish(context.WithoutCancel(ctx), events.New(eventType, details)); err != nil {
		p.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
