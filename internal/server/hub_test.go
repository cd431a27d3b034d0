package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/parlayscope/internal/models"
)

func TestHubReplaysHistoryToLateSubscribers(t *testing.T) {
	hub := NewHub()

	hub.Publish("ext-1", ExtractionEvent{Stage: models.StageLoading, Percent: 0})
	hub.Publish("ext-1", ExtractionEvent{Stage: models.StageExtracting, Percent: 50})

	replay, live := hub.Subscribe("ext-1")
	require.NotNil(t, live)
	require.Len(t, replay, 2)
	assert.Equal(t, models.StageLoading, replay[0].Stage)
	assert.Equal(t, models.StageExtracting, replay[1].Stage)

	hub.Publish("ext-1", ExtractionEvent{Stage: models.StageComplete, Percent: 100})

	event, ok := <-live
	require.True(t, ok)
	assert.Equal(t, models.StageComplete, event.Stage)

	_, ok = <-live
	assert.False(t, ok, "channel closes after the terminal event")
}

func TestHubClosedStreamReturnsFullHistory(t *testing.T) {
	hub := NewHub()

	hub.Publish("ext-2", ExtractionEvent{Stage: models.StageLoading})
	hub.Publish("ext-2", ExtractionEvent{Stage: models.StageError, Message: "decode failed"})

	replay, live := hub.Subscribe("ext-2")
	assert.Nil(t, live, "no live channel once the stream is terminal")
	require.Len(t, replay, 2)
	assert.Equal(t, models.StageError, replay[1].Stage)
}

func TestHubIgnoresPublishAfterTerminal(t *testing.T) {
	hub := NewHub()

	hub.Publish("ext-3", ExtractionEvent{Stage: models.StageError})
	hub.Publish("ext-3", ExtractionEvent{Stage: models.StageExtracting})

	replay, _ := hub.Subscribe("ext-3")
	assert.Len(t, replay, 1)
}

func TestHubStreamsAreIsolated(t *testing.T) {
	hub := NewHub()

	hub.Publish("ext-a", ExtractionEvent{Stage: models.StageLoading})
	replay, live := hub.Subscribe("ext-b")
	if live != nil {
		defer hub.Unsubscribe("ext-b", live)
	}
	assert.Empty(t, replay)
}

func TestHubForgetDropsHistory(t *testing.T) {
	hub := NewHub()

	hub.Publish("ext-4", ExtractionEvent{Stage: models.StageComplete, Percent: 100})
	hub.Forget("ext-4")

	replay, live := hub.Subscribe("ext-4")
	assert.Empty(t, replay)
	if live != nil {
		hub.Unsubscribe("ext-4", live)
	}
}
