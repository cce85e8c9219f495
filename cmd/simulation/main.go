package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
)

// Simplified DTOs for the script
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type session struct {
	ID    string `json:"id"`
	Stats struct {
		SearchTriggerCount int `json:"search_trigger_count"`
		ConversationTurns  int `json:"conversation_turns"`
	} `json:"stats"`
	ClarificationState *struct {
		IsAwaitingClarification bool `json:"is_awaiting_clarification"`
		IsReadyForSearch        bool `json:"is_ready_for_search"`
	} `json:"clarification_state"`
}

type action struct {
	Searched           bool `json:"searched"`
	AskedClarification bool `json:"asked_clarification"`
	ProvidedSuggestion bool `json:"provided_suggestion"`
}

type decision struct {
	SystemPrompt string            `json:"system_prompt"`
	Evidence     []json.RawMessage `json:"evidence"`
	ActionTaken  action            `json:"action_taken"`
	Degraded     bool              `json:"degraded"`
}

var scripts = map[string][]string{
	"suggestion": {
		"Should phones be banned in schools?",
		"I think kids need phones for emergencies.",
		"Is there any research on this?",
	},
	"clarification": {
		"phones",
		"What do you mean by distraction exactly?",
		"What does the research say about test scores?",
		"I'm not sure that's true.",
	},
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/dialogue/v1", "dialogue API base URL")
	topic := flag.String("topic", "Smartphone bans in schools", "discussion topic")
	standpoint := flag.String("standpoint", "supporting", "supporting or opposing")
	strategy := flag.String("strategy", "clarification", "suggestion or clarification")
	flag.Parse()

	messages, ok := scripts[*strategy]
	if !ok {
		log.Fatalf("unknown strategy %q", *strategy)
	}

	color.Cyan("=== Persuasive Dialogue Simulation Client ===")

	var created envelope[session]
	err := call(http.MethodPost, *baseURL+"/session", map[string]string{
		"topic":      *topic,
		"standpoint": *standpoint,
		"strategy":   *strategy,
	}, &created)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	color.Green("Session Created: %s", created.Data.ID)
	sessionURL := *baseURL + "/session/" + created.Data.ID

	for _, text := range messages {
		color.Yellow("\nUSER: %s", text)

		start := time.Now()
		var decided envelope[decision]
		if err := call(http.MethodPost, sessionURL+"/decide", map[string]string{"message": text}, &decided); err != nil {
			color.Red("Decide failed: %v", err)
			continue
		}
		d := decided.Data
		fmt.Printf("DECISION (%v): searched=%v asked=%v suggested=%v degraded=%v evidence=%d\n",
			time.Since(start), d.ActionTaken.Searched, d.ActionTaken.AskedClarification,
			d.ActionTaken.ProvidedSuggestion, d.Degraded, len(d.Evidence))

		reply := simulatedReply(d.ActionTaken)
		color.Blue("ASSISTANT: %s", reply)

		var recorded envelope[session]
		err := call(http.MethodPost, sessionURL+"/turn", map[string]interface{}{
			"user_message":   text,
			"assistant_text": reply,
			"action_taken":   d.ActionTaken,
			"evidence":       d.Evidence,
		}, &recorded)
		if err != nil {
			color.Red("Record failed: %v", err)
			continue
		}

		s := recorded.Data
		fmt.Printf("SESSION: turns=%d searches=%d", s.Stats.ConversationTurns, s.Stats.SearchTriggerCount)
		if s.ClarificationState != nil {
			fmt.Printf(" awaiting=%v ready=%v", s.ClarificationState.IsAwaitingClarification, s.ClarificationState.IsReadyForSearch)
		}
		fmt.Println()
	}

	if err := call(http.MethodDelete, sessionURL, nil, &envelope[any]{}); err != nil {
		color.Red("Reset failed: %v", err)
		return
	}
	color.Cyan("\nSession reset.")
}

// simulatedReply stands in for the chat model the caller would run with the prompt
func simulatedReply(a action) string {
	switch {
	case a.AskedClarification:
		return "Could you tell me which part of the topic you would like to focus on?"
	case a.Searched:
		return "Here is what the evidence shows on that point."
	default:
		return "Let me build on what we discussed so far."
	}
}

func call(method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
