package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSubscriber struct {
	ch chan *message.Message
}

func (s chanSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return s.ch, nil
}

func (s chanSubscriber) Close() error { return nil }

func eventMessage(t *testing.T, event *SessionEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return message.NewMessage(event.ID, payload)
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("message was not %s", what)
	}
}

func TestConsumeSessionEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := chanSubscriber{ch: make(chan *message.Message, 3)}
	handled := make(chan *SessionEvent, 3)

	done := make(chan error, 1)
	go func() {
		done <- ConsumeSessionEvents(ctx, sub, "exam-sessions", nil, func(_ context.Context, event *SessionEvent, data json.RawMessage) error {
			if event.SessionID == "sess-bad" {
				return errors.New("handler failed")
			}
			handled <- event
			return nil
		})
	}()

	garbage := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	ok := eventMessage(t, NewSessionEvent(EventSessionTimeUp, "sess-1", SessionTimeUpEvent{}))
	failing := eventMessage(t, NewSessionEvent(EventSessionAbandoned, "sess-bad", nil))

	sub.ch <- garbage
	sub.ch <- ok
	sub.ch <- failing

	waitFor(t, garbage.Acked(), "acked")
	waitFor(t, ok.Acked(), "acked")
	waitFor(t, failing.Nacked(), "nacked")

	got := <-handled
	assert.Equal(t, EventSessionTimeUp, got.Type)
	assert.Equal(t, "sess-1", got.SessionID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
