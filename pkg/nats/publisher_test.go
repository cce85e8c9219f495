package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"persuasive-dialogue-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "dialogue.turn.decided", Subject(events.TypeTurnDecided))
}

func TestPublisherPublishes(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping NATS publisher test")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = pub.Publish(ctx, events.New(events.TypeTurnRecorded, map[string]interface{}{"turn": 1}))
	assert.NoError(t, err)
}
