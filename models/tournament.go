package models

import "time"

// BracketEntry is one element of a tournament's bracket map: a persisted
// match together with its bracket coordinates. Order is the 1-based position
// of the match within the full power-of-two round, counting bye positions,
// so the destination of a winner stays computable after byes removed rows.
type BracketEntry struct {
	MatchID string `json:"match_id"`
	Round   int    `json:"round"`
	Order   int    `json:"order"`
}

// Tournament is a single-elimination tournament. Players is the ordered
// seed list (host included); Bracket lists every persisted match in
// creation order.
type Tournament struct {
	ID        string         `json:"id"`
	Host      string         `json:"host"`
	Players   []string       `json:"players"`
	Bracket   []BracketEntry `json:"bracket"`
	Winner    *string        `json:"winner,omitempty"`
	Finished  bool           `json:"finished"`
	CreatedAt time.Time      `json:"created_at"`
}

// EntryFor finds the bracket entry of the given match.
func (t *Tournament) EntryFor(matchID string) (BracketEntry, bool) {
	for _, e := range t.Bracket {
		if e.MatchID == matchID {
			return e, true
		}
	}
	return BracketEntry{}, false
}

// Rounds returns the highest round number present in the bracket map.
func (t *Tournament) Rounds() int {
	max := 0
	for _, e := range t.Bracket {
		if e.Round > max {
			max = e.Round
		}
	}
	return max
}

// NextEntry resolves where the winner of the given match advances to. The
// immediate destination is order ceil(k/2) in the next round; when that
// position was a bye pass-through and has no persisted match, the search
// cascades one round further. The second return is false for the final
// match, whose completion finishes the tournament.
func (t *Tournament) NextEntry(from BracketEntry) (BracketEntry, bool) {
	round, order := from.Round, from.Order
	for round < t.Rounds() {
		round++
		order = (order + 1) / 2
		for _, e := range t.Bracket {
			if e.Round == round && e.Order == order {
				return e, true
			}
		}
	}
	return BracketEntry{}, false
}
