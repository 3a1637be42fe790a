package chat_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalBusDeliveryOrder(t *testing.T) {
	bus := chat.NewLocalBus()
	defer bus.Close()

	var got []string
	cancel, err := bus.Subscribe("42", func(event chat.Event) {
		var s string
		require.NoError(t, json.Unmarshal(event.Payload, &s))
		got = append(got, s)
	})
	require.NoError(t, err)
	defer cancel()

	for _, s := range []string{"a", "b", "c"} {
		event, err := chat.NewEvent("new-message", s)
		require.NoError(t, err)
		require.NoError(t, bus.Publish("42", event))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestLocalBusRoomIsolationAndCancel(t *testing.T) {
	bus := chat.NewLocalBus()
	defer bus.Close()

	var count42, count43 int
	cancel42, err := bus.Subscribe("42", func(chat.Event) { count42++ })
	require.NoError(t, err)
	_, err = bus.Subscribe("43", func(chat.Event) { count43++ })
	require.NoError(t, err)

	event, err := chat.NewEvent("user-joined", nil)
	require.NoError(t, err)

	require.NoError(t, bus.Publish("42", event))
	assert.Equal(t, 1, count42)
	assert.Equal(t, 0, count43)

	cancel42()
	require.NoError(t, bus.Publish("42", event))
	assert.Equal(t, 1, count42)
}

func TestLocalBusPublishAfterClose(t *testing.T) {
	bus := chat.NewLocalBus()
	called := false
	_, err := bus.Subscribe("42", func(chat.Event) { called = true })
	require.NoError(t, err)

	bus.Close()
	event, err := chat.NewEvent("user-left", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish("42", event))
	assert.False(t, called)
}

func setupRedisBus(t *testing.T) *chat.RedisBus {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	bus := chat.NewRedisBus(client, zap.NewNop())
	t.Cleanup(bus.Close)
	return bus
}

func TestRedisBusRoundTrip(t *testing.T) {
	bus := setupRedisBus(t)

	received := make(chan chat.Event, 4)
	cancel, err := bus.Subscribe("42", func(event chat.Event) { received <- event })
	require.NoError(t, err)
	defer cancel()

	// The receiver goroutine needs its SUBSCRIBE on the wire before the
	// publish, or the event is lost.
	time.Sleep(50 * time.Millisecond)

	sent, err := chat.NewEvent("new-message", map[string]string{"content": "hello"})
	require.NoError(t, err)
	sent.ExcludeUserID = 7
	require.NoError(t, bus.Publish("42", sent))

	select {
	case event := <-received:
		assert.Equal(t, "new-message", event.Name)
		assert.EqualValues(t, 7, event.ExcludeUserID)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "hello", payload["content"])
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestRedisBusChannelIsolation(t *testing.T) {
	bus := setupRedisBus(t)

	received := make(chan chat.Event, 4)
	cancel, err := bus.Subscribe("43", func(event chat.Event) { received <- event })
	require.NoError(t, err)
	defer cancel()
	time.Sleep(50 * time.Millisecond)

	event, err := chat.NewEvent("user-typing", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish("42", event))

	select {
	case got := <-received:
		t.Fatalf("unexpected event on other room: %s", got.Name)
	case <-time.After(300 * time.Millisecond):
	}
}
