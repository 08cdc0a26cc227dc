package events

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MINDBRIDGE_BACK-END/internal/config"
)

func TestNewWithoutURLIsNoop(t *testing.T) {
	p := New(config.NATSConfig{})

	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(Event{Subject: SubjectChatMessage}))
	p.Close()
}

func TestNATSPublisher_PublishesJSON(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}
	cfg := config.NATSConfig{URL: url, Name: "mindbridge-test", ReconnectWait: time.Second, MaxReconnects: 0}

	pub, err := NewNATSPublisher(cfg)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	defer pub.Close()

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(SubjectRequestCreated, ch)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	require.NoError(t, pub.Publish(Event{Subject: SubjectRequestCreated, ActorID: "a", TargetID: "b"}))

	select {
	case msg := <-ch:
		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "a", got.ActorID)
		assert.Equal(t, "b", got.TargetID)
		assert.False(t, got.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}
