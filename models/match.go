package models

import "time"

type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
)

// Match is a single game between two opponents. Player holds the primary
// slot (a registered participant uuid), Guest and Guest2 the secondary
// slots. A bracket placeholder starts with all three slots empty; the
// advancement coordinator fills them as feeder matches complete. Version
// backs the optimistic check that serializes all writes per match: slot
// fills, score updates and the finish.
type Match struct {
	ID           string      `json:"id"`
	TournamentID *string     `json:"tournament_id,omitempty"`
	Round        int         `json:"round"`
	Player       *string     `json:"player,omitempty"`
	Guest        *string     `json:"guest,omitempty"`
	Guest2       *string     `json:"guest2,omitempty"`
	Score1       int         `json:"score1"`
	Score2       int         `json:"score2"`
	Status       MatchStatus `json:"status"`
	Finished     bool        `json:"finished"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      *time.Time  `json:"end_time,omitempty"`
	Version      int         `json:"-"`
}

// Slots returns the opponent positions in fill order.
func (m *Match) Slots() [3]Slot {
	var slots [3]Slot
	if m.Player != nil && *m.Player != "" {
		slots[0] = RegisteredSlot(*m.Player)
	} else {
		slots[0] = EmptySlot()
	}
	if m.Guest != nil && *m.Guest != "" {
		slots[1] = GuestSlot(*m.Guest)
	} else {
		slots[1] = EmptySlot()
	}
	if m.Guest2 != nil && *m.Guest2 != "" {
		slots[2] = GuestSlot(*m.Guest2)
	} else {
		slots[2] = EmptySlot()
	}
	return slots
}

// OccupiedSlots counts the filled opponent positions. A match opposes
// exactly two sides, so two filled positions mean the match is full.
func (m *Match) OccupiedSlots() int {
	count := 0
	for _, s := range m.Slots() {
		if !s.IsEmpty() {
			count++
		}
	}
	return count
}

func (m *Match) IsFull() bool {
	return m.OccupiedSlots() >= 2
}

// Occupies reports whether the given identity already holds one of the slots.
func (m *Match) Occupies(identity string) bool {
	for _, s := range m.Slots() {
		if !s.IsEmpty() && s.Value == identity {
			return true
		}
	}
	return false
}

// HasOpponent reports whether at least one slot is filled.
func (m *Match) HasOpponent() bool {
	return m.OccupiedSlots() > 0
}

// Sides returns the two opposing slots: the primary side (player, or guest
// in the legacy no-host case) and the secondary side. Score1 belongs to the
// first side, Score2 to the second.
func (m *Match) Sides() (Slot, Slot) {
	slots := m.Slots()
	if !slots[0].IsEmpty() {
		return slots[0], slots[1]
	}
	return slots[1], slots[2]
}

// Winner resolves the winning side by score. The second return is false
// when the scores are equal, which the model does not allow as a final
// result, or when the winning side is empty.
func (m *Match) Winner() (Slot, bool) {
	if m.Score1 == m.Score2 {
		return Slot{}, false
	}
	side1, side2 := m.Sides()
	if m.Score1 > m.Score2 {
		return side1, !side1.IsEmpty()
	}
	return side2, !side2.IsEmpty()
}
