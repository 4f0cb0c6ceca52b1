package models

// SlotKind distinguishes the three states an opponent position can be in.
type SlotKind string

const (
	SlotEmpty      SlotKind = "empty"
	SlotRegistered SlotKind = "registered"
	SlotGuest      SlotKind = "guest"
)

// Slot is one opponent position of a match: empty, a registered participant
// (value is the participant uuid), or a named guest (value is the display name).
type Slot struct {
	Kind  SlotKind `json:"kind"`
	Value string   `json:"value,omitempty"`
}

func EmptySlot() Slot {
	return Slot{Kind: SlotEmpty}
}

func RegisteredSlot(participantID string) Slot {
	return Slot{Kind: SlotRegistered, Value: participantID}
}

func GuestSlot(name string) Slot {
	return Slot{Kind: SlotGuest, Value: name}
}

func (s Slot) IsEmpty() bool {
	return s.Kind == SlotEmpty || s.Value == ""
}
