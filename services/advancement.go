package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/EricBrvs/ft-transcendance/brackets"
	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/EricBrvs/ft-transcendance/repositories"
)

// Notifier pushes bracket events to live subscribers of a tournament room.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// BracketArchiver persists a finished tournament's final bracket outside
// the database. Failures are logged, never surfaced: archiving must not
// undo a completed tournament.
type BracketArchiver interface {
	ArchiveTournament(ctx context.Context, tournament *models.Tournament, matches []*models.Match) error
}

// AdvancementCoordinator propagates a completed match's winner into the
// next round and detects tournament completion. Propagation is one-shot
// and deterministic: a completion triggers at most one downstream slot
// fill and, at most once per tournament, the final result.
type AdvancementCoordinator struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	notifier       Notifier
	archiver       BracketArchiver
}

func NewAdvancementCoordinator(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	notifier Notifier,
	archiver BracketArchiver,
) *AdvancementCoordinator {
	return &AdvancementCoordinator{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		archiver:       archiver,
	}
}

// OnMatchCompleted is invoked by the match lifecycle every time a match
// transitions to completed. Standalone matches advance nothing.
func (c *AdvancementCoordinator) OnMatchCompleted(ctx context.Context, match *models.Match) error {
	if match.TournamentID == nil {
		return nil
	}

	winner, ok := match.Winner()
	if !ok {
		return ErrMatchNotCompletable
	}

	tournament, err := c.tournamentRepo.GetByID(ctx, *match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %s for advancement: %w", *match.TournamentID, err)
	}

	entry, ok := tournament.EntryFor(match.ID)
	if !ok {
		log.Printf("advancement: match %s not in bracket map of tournament %s, nothing to advance", match.ID, tournament.ID)
		return nil
	}

	next, hasNext := tournament.NextEntry(entry)
	if hasNext {
		filled, err := fillSlot(ctx, c.matchRepo, next.MatchID, winner)
		if err != nil {
			return fmt.Errorf("failed to advance winner of match %s into match %s: %w", match.ID, next.MatchID, err)
		}
		log.Printf("advancement: winner %q of match %s (round %d) moved into match %s (round %d)",
			winner.Value, match.ID, entry.Round, next.MatchID, next.Round)
		c.notify(tournament.ID, brackets.EventMatchUpdated, match)
		c.notify(tournament.ID, brackets.EventBracketUpdated, filled)
		return nil
	}

	// Final match: record the champion and close the tournament.
	err = c.tournamentRepo.SetWinnerAndFinish(ctx, tournament.ID, winner.Value)
	if errors.Is(err, repositories.ErrTournamentAlreadyFinished) {
		log.Printf("advancement: tournament %s already finished, skipping completion", tournament.ID)
		return nil
	}
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to finish tournament %s: %w", tournament.ID, err)
	}

	winnerValue := winner.Value
	tournament.Winner = &winnerValue
	tournament.Finished = true
	log.Printf("advancement: tournament %s completed, winner %q", tournament.ID, winnerValue)

	c.notify(tournament.ID, brackets.EventMatchUpdated, match)
	c.notify(tournament.ID, brackets.EventTournamentCompleted, tournament)
	c.archive(ctx, tournament)
	return nil
}

func (c *AdvancementCoordinator) notify(tournamentID, eventType string, payload interface{}) {
	if c.notifier == nil {
		return
	}
	c.notifier.BroadcastToRoom(tournamentID, brackets.WebSocketMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  tournamentID,
	})
}

func (c *AdvancementCoordinator) archive(ctx context.Context, tournament *models.Tournament) {
	if c.archiver == nil {
		return
	}
	matches, err := c.matchRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		log.Printf("archive: failed to list matches of tournament %s: %v", tournament.ID, err)
		return
	}
	if err := c.archiver.ArchiveTournament(ctx, tournament, matches); err != nil {
		log.Printf("archive: failed to archive tournament %s: %v", tournament.ID, err)
	}
}
