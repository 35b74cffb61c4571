package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c Client) Event {
	t.Helper()
	select {
	case msg, ok := <-c:
		require.True(t, ok, "client closed")
		event, err := Decode(msg)
		require.NoError(t, err)
		return event
	default:
		t.Fatal("expected a pending event")
	}
	return Event{}
}

func requireEmpty(t *testing.T, c Client) {
	t.Helper()
	select {
	case msg := <-c:
		t.Fatalf("unexpected event %s", msg)
	default:
	}
}

func TestBroadcast_SkipsOwnOrigin(t *testing.T) {
	h := NewHub()
	writer := h.Subscribe("matches", "tab-a")
	reader := h.Subscribe("matches", "tab-b")

	err := h.Broadcast("tab-a", Event{Type: EventChanged, Key: "matches", Version: 1, Payload: json.RawMessage(`[]`)})

	require.NoError(t, err)
	requireEmpty(t, writer)
	require.Equal(t, int64(1), receive(t, reader).Version)
}

func TestBroadcast_EmptyOriginReachesEveryone(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("challenges", "tab-a")
	b := h.Subscribe("challenges", "tab-b")

	require.NoError(t, h.Broadcast("", Event{Type: EventChanged, Key: "challenges", Version: 3}))

	require.Equal(t, int64(3), receive(t, a).Version)
	require.Equal(t, int64(3), receive(t, b).Version)
}

func TestBroadcast_OnlyMatchingKey(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("challenges", "tab-a")

	require.NoError(t, h.Broadcast("", Event{Type: EventChanged, Key: "matches", Version: 1}))

	requireEmpty(t, c)
}

func TestBroadcast_SlowClientGetsLatest(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("matches", "tab-b")

	for v := int64(1); v <= 5; v++ {
		require.NoError(t, h.Broadcast("tab-a", Event{Type: EventChanged, Key: "matches", Version: v}))
	}

	require.Equal(t, int64(5), receive(t, c).Version)
	requireEmpty(t, c)
}

func TestUnsubscribe_ClosesClient(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("matches", "tab-a")
	require.Equal(t, 1, h.Subscribers("matches"))

	h.Unsubscribe("matches", c)
	h.Unsubscribe("matches", c)

	_, ok := <-c
	require.False(t, ok)
	require.Equal(t, 0, h.Subscribers("matches"))
}

func TestBroadcast_OlderVersionNeverReplacesNewer(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("matches", "tab-b")

	// Two writers finished v3 and v2 in that order.
	require.NoError(t, h.Broadcast("tab-a", Event{Type: EventChanged, Key: "matches", Version: 3}))
	require.NoError(t, h.Broadcast("tab-c", Event{Type: EventChanged, Key: "matches", Version: 2}))

	require.Equal(t, int64(3), receive(t, c).Version)

	require.NoError(t, h.Broadcast("tab-c", Event{Type: EventChanged, Key: "matches", Version: 3}))
	requireEmpty(t, c)
}

func TestBroadcast_OwnWritesDoNotAdvanceVersion(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("matches", "tab-a")

	require.NoError(t, h.Broadcast("tab-a", Event{Type: EventChanged, Key: "matches", Version: 5}))
	requireEmpty(t, c)

	require.NoError(t, h.Broadcast("tab-b", Event{Type: EventChanged, Key: "matches", Version: 4}))
	require.Equal(t, int64(4), receive(t, c).Version)
}

func TestRewind_AcceptsRestartedVersions(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("matches", "tab-b")
	require.NoError(t, h.Broadcast("", Event{Type: EventChanged, Key: "matches", Version: 7}))
	receive(t, c)

	h.Rewind()

	require.NoError(t, h.Broadcast("", Event{Type: EventChanged, Key: "matches", Version: 2}))
	require.Equal(t, int64(2), receive(t, c).Version)
}
