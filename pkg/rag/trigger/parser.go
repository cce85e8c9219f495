package trigger

import (
	"encoding/json"
	"regexp"
	"strings"
)

// stage names which link of the fallback chain resolved a decision
type stage string

const (
	stageJSON      stage = "json"
	stageSubstring stage = "substring"
	stageKeyword   stage = "keyword"
)

// Verdict is the structured answer expected from the classification model
type Verdict struct {
	ShouldTrigger bool   `json:"shouldTrigger"`
	Reason        string `json:"reason"`
}

var (
	trueTokenPattern  = regexp.MustCompile(`\btrue\b`)
	falseTokenPattern = regexp.MustCompile(`\bfalse\b`)

	// reasonValuePattern matches the free-text reason, terminated or not
	reasonValuePattern = regexp.MustCompile(`"reason"\s*:\s*"(?:[^"\\]|\\.)*"?`)
)

// parseResponse walks the strict-JSON and substring stages. ok is false when
// neither could decide and the caller must fall back to keyword rules.
func parseResponse(response string) (Verdict, stage, bool) {
	if v, ok := parseJSONVerdict(response); ok {
		return v, stageJSON, true
	}
	if v, ok := parseSubstringVerdict(response); ok {
		return v, stageSubstring, true
	}
	return Verdict{}, stageKeyword, false
}

func parseJSONVerdict(response string) (Verdict, bool) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return Verdict{}, false
	}

	var raw struct {
		ShouldTrigger      *bool  `json:"shouldTrigger"`
		ShouldTriggerSnake *bool  `json:"should_trigger"`
		Reason             string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return Verdict{}, false
	}

	flag := raw.ShouldTrigger
	if flag == nil {
		flag = raw.ShouldTriggerSnake
	}
	if flag == nil {
		return Verdict{}, false
	}

	return Verdict{ShouldTrigger: *flag, Reason: raw.Reason}, true
}

func parseSubstringVerdict(response string) (Verdict, bool) {
	lower := strings.ToLower(response)
	compact := strings.Join(strings.Fields(lower), "")

	for _, key := range []string{`"shouldtrigger":`, `shouldtrigger:`, `"should_trigger":`, `should_trigger:`} {
		if strings.Contains(compact, key+"true") {
			return Verdict{ShouldTrigger: true, Reason: "substring match"}, true
		}
		if strings.Contains(compact, key+"false") {
			return Verdict{ShouldTrigger: false, Reason: "substring match"}, true
		}
	}

	// Bare tokens only count outside the model's explanation
	verdictText := reasonValuePattern.ReplaceAllString(lower, "")
	hasTrue := trueTokenPattern.MatchString(verdictText)
	hasFalse := falseTokenPattern.MatchString(verdictText)
	if hasTrue != hasFalse {
		return Verdict{ShouldTrigger: hasTrue, Reason: "bare token match"}, true
	}

	return Verdict{}, false
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
