package brackets

import (
	"math"

	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/google/uuid"
)

// node is one position of a bracket layer while the tree is being built.
// Exactly one of the fields is meaningful: a participant known at build
// time, the UID of the match whose winner feeds the position, or a bye.
type node struct {
	player *string
	source string
	bye    bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the full single-elimination tree for the seed
// list. Participants are padded to the next power of two with byes; a bye
// produces no match row, its participant is carried forward and pre-filled
// into the destination match. Every persisted match eliminates exactly one
// participant, so N participants always yield N-1 matches.
func (g *SingleEliminationGenerator) GenerateBracket(params GenerateParams) ([]*BracketMatch, []models.BracketEntry, error) {
	players := params.Players
	n := len(players)
	if n < 2 {
		return nil, nil, ErrInvalidBracket
	}
	if params.Host != "" && !containsPlayer(players, params.Host) {
		return nil, nil, ErrInvalidBracket
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	size := 1 << uint(numRounds)

	nodes := make([]node, size)
	for i := range nodes {
		if i < n {
			p := players[i]
			nodes[i] = node{player: &p}
		} else {
			nodes[i] = node{bye: true}
		}
	}

	matches := make([]*BracketMatch, 0, n-1)
	entries := make([]models.BracketEntry, 0, n-1)

	for r := 1; r <= numRounds; r++ {
		next := make([]node, 0, len(nodes)/2)
		order := 0

		for i := 0; i < len(nodes); i += 2 {
			order++
			a, b := nodes[i], nodes[i+1]

			switch {
			case a.bye && b.bye:
				next = append(next, node{bye: true})
			case b.bye && a.player != nil:
				next = append(next, node{player: a.player})
			case b.bye:
				next = append(next, a)
			case a.bye && b.player != nil:
				next = append(next, node{player: b.player})
			case a.bye:
				next = append(next, b)
			default:
				bm := &BracketMatch{UID: uuid.NewString(), Round: r, OrderInRound: order}
				if r == 1 {
					assign := ResolveSlots(*a.player, *b.player, params.Host)
					bm.Player, bm.Guest, bm.Guest2 = assign.Player, assign.Guest, assign.Guest2
				} else {
					if a.player != nil {
						bm.fillFirstEmpty(*a.player)
					}
					if b.player != nil {
						bm.fillFirstEmpty(*b.player)
					}
				}
				matches = append(matches, bm)
				entries = append(entries, models.BracketEntry{MatchID: bm.UID, Round: r, Order: order})
				next = append(next, node{source: bm.UID})
			}
		}

		nodes = next
	}

	return matches, entries, nil
}

// fillFirstEmpty mirrors the runtime slot-fill order so build-time
// pre-fills and coordinator fills end up in the same positions.
func (bm *BracketMatch) fillFirstEmpty(identity string) {
	switch {
	case bm.Player == nil:
		bm.Player = &identity
	case bm.Guest == nil:
		bm.Guest = &identity
	case bm.Guest2 == nil:
		bm.Guest2 = &identity
	}
}

func containsPlayer(players []string, id string) bool {
	for _, p := range players {
		if p == id {
			return true
		}
	}
	return false
}
