package brackets

import "log"

// SlotAssignment is the resolved seating of a round-1 pairing.
type SlotAssignment struct {
	Player *string
	Guest  *string
	Guest2 *string
}

// ResolveSlots seats a round-1 pairing. The host always takes the primary
// slot with the opponent as first guest. A pairing without the host seats
// both participants in the guest slots with the primary left empty; that
// shape predates hosted tournaments and is kept for compatibility.
func ResolveSlots(a, b, host string) SlotAssignment {
	if host != "" && a == host {
		return SlotAssignment{Player: &a, Guest: &b}
	}
	if host != "" && b == host {
		return SlotAssignment{Player: &b, Guest: &a}
	}
	log.Printf("slot resolver: pairing %q vs %q without host, using legacy guest-only match", a, b)
	return SlotAssignment{Guest: &a, Guest2: &b}
}
