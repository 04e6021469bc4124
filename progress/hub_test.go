package progress

import (
	"testing"

	"ytdownloader/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversByRequestID(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a := hub.Subscribe("a")
	b := hub.Subscribe("b")

	hub.Publish(models.Progress{RequestID: "a", Status: "downloading", Percent: 10})

	require.Len(t, a.Channel, 1)
	assert.Equal(t, 10, (<-a.Channel).Percent)
	assert.Empty(t, b.Channel)
}

func TestHubIgnoresAnonymousProgress(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := hub.Subscribe("")
	hub.Publish(models.Progress{Status: "downloading"})
	assert.Empty(t, c.Channel)
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c := hub.Subscribe("x")
	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(models.Progress{RequestID: "x", Percent: i})
	}
	assert.Len(t, c.Channel, subscriberBuffer)
}

func TestHubUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c1 := hub.Subscribe("x")
	c2 := hub.Subscribe("x")
	require.Equal(t, 2, hub.Subscribers("x"))

	hub.Unsubscribe("x", c1)
	assert.Equal(t, 1, hub.Subscribers("x"))
	_, open := <-c1.Channel
	assert.False(t, open)

	// A second unsubscribe must not close the channel twice.
	hub.Unsubscribe("x", c1)
	hub.Unsubscribe("x", c2)
	assert.Zero(t, hub.Subscribers("x"))

	hub.Publish(models.Progress{RequestID: "x"})
}
