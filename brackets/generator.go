package brackets

import (
	"errors"

	"github.com/EricBrvs/ft-transcendance/models"
)

var ErrInvalidBracket = errors.New("invalid bracket: need at least 2 participants and the host must be seeded")

// GenerateParams carries the inputs of a bracket build: the ordered seed
// list and the hosting participant (empty for the legacy host-less case).
type GenerateParams struct {
	Host    string
	Players []string
}

// BracketMatch is a match descriptor produced by a generator. Slot fields
// already carry participants known at build time: round-1 opponents and
// bye advances pre-filled into their destination round.
type BracketMatch struct {
	UID          string
	Round        int
	OrderInRound int

	Player *string
	Guest  *string
	Guest2 *string
}

type BracketGenerator interface {
	GenerateBracket(params GenerateParams) ([]*BracketMatch, []models.BracketEntry, error)

	GetName() string
}
