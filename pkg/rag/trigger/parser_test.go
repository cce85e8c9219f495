package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		want      bool
		wantStage stage
		wantOK    bool
	}{
		{
			name:      "strict json",
			response:  `{"shouldTrigger": true, "reason": "asks for data"}`,
			want:      true,
			wantStage: stageJSON,
			wantOK:    true,
		},
		{
			name:      "json wrapped in prose and fences",
			response:  "Sure!\n```json\n{\"shouldTrigger\": false, \"reason\": \"opinion\"}\n```",
			want:      false,
			wantStage: stageJSON,
			wantOK:    true,
		},
		{
			name:      "snake case key",
			response:  `{"should_trigger": true}`,
			want:      true,
			wantStage: stageJSON,
			wantOK:    true,
		},
		{
			name:      "broken json with readable key",
			response:  `{"shouldTrigger" : true, "reason": "unterminated`,
			want:      true,
			wantStage: stageSubstring,
			wantOK:    true,
		},
		{
			name:      "json without the flag falls to substring",
			response:  `{"decision": "yes"} so the answer is false`,
			want:      false,
			wantStage: stageSubstring,
			wantOK:    true,
		},
		{
			name:      "bare token",
			response:  "TRUE",
			want:      true,
			wantStage: stageSubstring,
			wantOK:    true,
		},
		{
			name:      "both tokens are ambiguous",
			response:  "could be true or false",
			wantStage: stageKeyword,
			wantOK:    false,
		},
		{
			name:      "nothing useful",
			response:  "I cannot help with that.",
			wantStage: stageKeyword,
			wantOK:    false,
		},
		{
			name:      "reason text is not a verdict",
			response:  `{"shouldTrigger": "no", "reason": "it is not true that the user asks for data"}`,
			wantStage: stageKeyword,
			wantOK:    false,
		},
		{
			name:      "unterminated reason is not a verdict",
			response:  `{"shouldTrigger": maybe, "reason": "true enough`,
			wantStage: stageKeyword,
			wantOK:    false,
		},
		{
			name:      "bare token outside the reason still counts",
			response:  `false {"reason": "it is true they asked"}`,
			want:      false,
			wantStage: stageSubstring,
			wantOK:    true,
		},
		{
			name:      "token inside a word does not count",
			response:  "untrue statement",
			wantStage: stageKeyword,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, st, ok := parseResponse(tt.response)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStage, st)
			if ok {
				assert.Equal(t, tt.want, v.ShouldTrigger)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON(`noise {"a":1} noise`))
	assert.Equal(t, "", extractJSON("no braces"))
	assert.Equal(t, "", extractJSON("} backwards {"))
}
