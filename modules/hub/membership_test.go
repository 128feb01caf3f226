package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMembership_JoinAndMembersOf(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	membership.Join("general", "user-2")

	assert.ElementsMatch(t, []string{"user-1", "user-2"}, membership.MembersOf("general"))
	assert.Equal(t, 1, membership.RoomCount())
}

func TestMembership_JoinIdempotent(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	membership.Join("general", "user-1")
	membership.Join("general", "user-1")

	assert.Equal(t, []string{"user-1"}, membership.MembersOf("general"))
}

func TestMembership_MembersOfUnknownRoom(t *testing.T) {
	membership := NewMembership()

	assert.Empty(t, membership.MembersOf("nowhere"))
}

func TestMembership_Leave(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	membership.Join("general", "user-2")
	membership.Leave("general", "user-1")

	assert.Equal(t, []string{"user-2"}, membership.MembersOf("general"))
}

func TestMembership_LeaveAbsentIsNoop(t *testing.T) {
	membership := NewMembership()

	membership.Leave("nowhere", "nobody")

	membership.Join("general", "user-1")
	membership.Leave("general", "nobody")
	assert.Equal(t, []string{"user-1"}, membership.MembersOf("general"))
}

func TestMembership_LeaveAllScrubsEveryRoom(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	membership.Join("random", "user-1")
	membership.Join("random", "user-2")

	membership.LeaveAll("user-1")

	assert.Empty(t, membership.MembersOf("general"))
	assert.Equal(t, []string{"user-2"}, membership.MembersOf("random"))
}

func TestMembership_EmptyRoomEntryRetained(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	membership.Leave("general", "user-1")

	// The room entry stays around once created, just with nobody in it.
	assert.Equal(t, 1, membership.RoomCount())
	assert.Empty(t, membership.MembersOf("general"))
}

func TestMembership_SnapshotIsDetached(t *testing.T) {
	membership := NewMembership()

	membership.Join("general", "user-1")
	snapshot := membership.MembersOf("general")
	membership.Join("general", "user-2")

	assert.Equal(t, []string{"user-1"}, snapshot)
}
