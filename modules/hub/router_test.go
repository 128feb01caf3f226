package hub

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_PublishFansOutExceptSender(t *testing.T) {
	registry := NewRegistry()
	membership := NewMembership()
	router := NewRouter(registry, membership, testLogger())

	sender := make(chan []byte, 1)
	recipientA := make(chan []byte, 1)
	recipientB := make(chan []byte, 1)
	registry.Register("sender", sender)
	registry.Register("a", recipientA)
	registry.Register("b", recipientB)
	membership.Join("general", "sender")
	membership.Join("general", "a")
	membership.Join("general", "b")

	frame := []byte(`{"type":"new_message"}`)
	router.Publish("general", "sender", frame)

	require.Len(t, recipientA, 1)
	require.Len(t, recipientB, 1)
	assert.Equal(t, frame, <-recipientA)
	assert.Equal(t, frame, <-recipientB)
	assert.Empty(t, sender, "sender must not receive its own frame")
}

func TestRouter_PublishEmptyRoomIsNoop(t *testing.T) {
	registry := NewRegistry()
	membership := NewMembership()
	router := NewRouter(registry, membership, testLogger())

	router.Publish("nowhere", "sender", []byte(`{}`))
}

func TestRouter_PublishSkipsDisconnectedMember(t *testing.T) {
	registry := NewRegistry()
	membership := NewMembership()
	router := NewRouter(registry, membership, testLogger())

	// "ghost" is still in the room but its session is already gone.
	membership.Join("general", "ghost")
	live := make(chan []byte, 1)
	registry.Register("live", live)
	membership.Join("general", "live")

	router.Publish("general", "", []byte(`{}`))

	assert.Len(t, live, 1)
}

func TestRouter_PublishDropsOnFullBuffer(t *testing.T) {
	registry := NewRegistry()
	membership := NewMembership()
	router := NewRouter(registry, membership, testLogger())

	slow := make(chan []byte, 1)
	slow <- []byte("backlog")
	fast := make(chan []byte, 1)
	registry.Register("slow", slow)
	registry.Register("fast", fast)
	membership.Join("general", "slow")
	membership.Join("general", "fast")

	frame := []byte(`{"type":"new_message"}`)
	router.Publish("general", "", frame)

	// The slow recipient loses this frame; the fast one still gets it.
	assert.Equal(t, []byte("backlog"), <-slow)
	assert.Empty(t, slow)
	require.Len(t, fast, 1)
	assert.Equal(t, frame, <-fast)
}

func TestRouter_PublishOnlyTargetsRoomMembers(t *testing.T) {
	registry := NewRegistry()
	membership := NewMembership()
	router := NewRouter(registry, membership, testLogger())

	inside := make(chan []byte, 1)
	outside := make(chan []byte, 1)
	registry.Register("inside", inside)
	registry.Register("outside", outside)
	membership.Join("general", "inside")
	membership.Join("random", "outside")

	router.Publish("general", "", []byte(`{}`))

	assert.Len(t, inside, 1)
	assert.Empty(t, outside)
}
