package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }

func TestMatchSlotsAndOccupancy(t *testing.T) {
	m := &Match{ID: "m1", Player: stringPtr("alice")}
	assert.Equal(t, 1, m.OccupiedSlots())
	assert.True(t, m.HasOpponent())
	assert.False(t, m.IsFull())
	assert.True(t, m.Occupies("alice"))
	assert.False(t, m.Occupies("bob"))

	m.Guest = stringPtr("bob")
	assert.Equal(t, 2, m.OccupiedSlots())
	assert.True(t, m.IsFull())

	// An empty-string slot counts as empty, not occupied.
	empty := &Match{ID: "m2", Player: stringPtr("")}
	assert.Equal(t, 0, empty.OccupiedSlots())
	assert.False(t, empty.HasOpponent())
}

func TestMatchSides(t *testing.T) {
	hosted := &Match{Player: stringPtr("alice"), Guest: stringPtr("bob")}
	side1, side2 := hosted.Sides()
	assert.Equal(t, RegisteredSlot("alice"), side1)
	assert.Equal(t, GuestSlot("bob"), side2)

	// Legacy guest-only seating: both sides live in the guest slots.
	legacy := &Match{Guest: stringPtr("carol"), Guest2: stringPtr("dave")}
	side1, side2 = legacy.Sides()
	assert.Equal(t, GuestSlot("carol"), side1)
	assert.Equal(t, GuestSlot("dave"), side2)
}

func TestMatchWinner(t *testing.T) {
	m := &Match{Player: stringPtr("alice"), Guest: stringPtr("bob"), Score1: 5, Score2: 3}
	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, "alice", winner.Value)

	m.Score1, m.Score2 = 2, 7
	winner, ok = m.Winner()
	require.True(t, ok)
	assert.Equal(t, "bob", winner.Value)

	m.Score1, m.Score2 = 4, 4
	_, ok = m.Winner()
	assert.False(t, ok, "a tie has no winner")

	// The winning side must actually be seated.
	half := &Match{Player: stringPtr("alice"), Score1: 0, Score2: 3}
	_, ok = half.Winner()
	assert.False(t, ok)
}

func TestSlotIsEmpty(t *testing.T) {
	assert.True(t, EmptySlot().IsEmpty())
	assert.True(t, Slot{Kind: SlotGuest}.IsEmpty())
	assert.False(t, RegisteredSlot("alice").IsEmpty())
	assert.False(t, GuestSlot("bob").IsEmpty())
}
