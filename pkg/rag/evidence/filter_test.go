package evidence

import (
	"testing"

	"persuasive-dialogue-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func tag(s store.Standpoint) *store.Standpoint {
	return &s
}

func TestFilterByScore(t *testing.T) {
	in := []store.Evidence{{Content: "a", Score: 0.9}, {Content: "b", Score: 0.5}}

	got := FilterByScore(in, 0.7)
	assert.Equal(t, []store.Evidence{{Content: "a", Score: 0.9}}, got)
}

func TestFilterByScoreKeepsBoundaryAndOrder(t *testing.T) {
	in := []store.Evidence{
		{Content: "low", Score: 0.1},
		{Content: "edge", Score: 0.7},
		{Content: "top", Score: 0.95},
		{Content: "mid", Score: 0.8},
	}

	got := FilterByScore(in, 0.7)
	assert.Equal(t, []string{"edge", "top", "mid"}, contents(got))

	again := FilterByScore(got, 0.7)
	assert.Equal(t, got, again)
}

func TestFilterByScoreEmpty(t *testing.T) {
	assert.Empty(t, FilterByScore(nil, 0.7))
}

func TestFilterByStandpoint(t *testing.T) {
	in := []store.Evidence{
		{Content: "pro", StandpointTag: tag(store.StandpointSupporting)},
		{Content: "neutral-1"},
		{Content: "con", StandpointTag: tag(store.StandpointOpposing)},
		{Content: "neutral-2"},
	}

	supporting := FilterByStandpoint(in, store.StandpointSupporting)
	opposing := FilterByStandpoint(in, store.StandpointOpposing)

	assert.Equal(t, []string{"pro", "neutral-1", "neutral-2"}, contents(supporting))
	assert.Equal(t, []string{"neutral-1", "con", "neutral-2"}, contents(opposing))

	for _, side := range [][]store.Evidence{supporting, opposing} {
		assert.Contains(t, contents(side), "neutral-1")
		assert.Contains(t, contents(side), "neutral-2")
	}
}

func TestBestScore(t *testing.T) {
	assert.Equal(t, 0.0, BestScore(nil))
	assert.Equal(t, 0.9, BestScore([]store.Evidence{{Score: 0.3}, {Score: 0.9}, {Score: 0.6}}))
}

func contents(in []store.Evidence) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		out = append(out, e.Content)
	}
	return out
}
