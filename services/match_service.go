package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/EricBrvs/ft-transcendance/repositories"
	"github.com/google/uuid"
)

// matchWriteAttempts bounds the optimistic retry loops that serialize
// concurrent writes (slot fills, score updates, finishes) on the same match.
const matchWriteAttempts = 3

// CreateMatchParams describes a standalone match creation. At least one
// opponent must be identified.
type CreateMatchParams struct {
	Player       *string
	Guest        *string
	Guest2       *string
	TournamentID *string
	StartTime    *time.Time
}

// UpdateMatchParams enumerates the fields a match update may set. This is
// the full set of mutable fields; anything else on a match only changes
// through bracket creation or the advancement coordinator.
type UpdateMatchParams struct {
	Guest    *string
	Score1   *int
	Score2   *int
	Finished *bool
	EndTime  *time.Time
}

func (p UpdateMatchParams) isEmpty() bool {
	return p.Guest == nil && p.Score1 == nil && p.Score2 == nil && p.Finished == nil && p.EndTime == nil
}

type MatchService interface {
	CreateMatch(ctx context.Context, params CreateMatchParams) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context) ([]*models.Match, error)
	ListMatchesByParticipant(ctx context.Context, participantID string) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, id string, params UpdateMatchParams) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	advancer  *AdvancementCoordinator
}

func NewMatchService(matchRepo repositories.MatchRepository, advancer *AdvancementCoordinator) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		advancer:  advancer,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, params CreateMatchParams) (*models.Match, error) {
	match := &models.Match{
		ID:           uuid.NewString(),
		TournamentID: params.TournamentID,
		Round:        1,
		Player:       params.Player,
		Guest:        params.Guest,
		Guest2:       params.Guest2,
		Status:       models.StatusScheduled,
		StartTime:    time.Now().UTC(),
	}
	if params.StartTime != nil {
		match.StartTime = *params.StartTime
	}
	if !match.HasOpponent() {
		return nil, ErrMatchInvalid
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateMatchError(err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context) ([]*models.Match, error) {
	return s.matchRepo.List(ctx)
}

func (s *matchService) ListMatchesByParticipant(ctx context.Context, participantID string) ([]*models.Match, error) {
	return s.matchRepo.ListByParticipant(ctx, participantID)
}

// UpdateMatch applies a guest slot fill, a score update, or the finish
// signal, in that order. Finishing triggers the advancement coordinator.
func (s *matchService) UpdateMatch(ctx context.Context, id string, params UpdateMatchParams) (*models.Match, error) {
	if params.isEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if params.Guest != nil {
		if _, err := fillSlot(ctx, s.matchRepo, id, models.GuestSlot(*params.Guest)); err != nil {
			return nil, err
		}
	}

	if params.Finished != nil && *params.Finished {
		if err := s.finishMatch(ctx, id, params); err != nil {
			return nil, err
		}
	} else if params.Score1 != nil || params.Score2 != nil {
		if err := s.updateScore(ctx, id, params); err != nil {
			return nil, err
		}
	}

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateMatchError(err)
	}
	return match, nil
}

func (s *matchService) updateScore(ctx context.Context, id string, params UpdateMatchParams) error {
	for attempt := 0; attempt < matchWriteAttempts; attempt++ {
		match, err := s.matchRepo.GetByID(ctx, id)
		if err != nil {
			return translateMatchError(err)
		}
		if match.Finished {
			return ErrMatchAlreadyFinished
		}

		score1, score2 := effectiveScores(match, params)
		status := match.Status
		if status == models.StatusScheduled && (score1 > 0 || score2 > 0 || match.IsFull()) {
			status = models.StatusInProgress
		}

		err = s.matchRepo.UpdateScore(ctx, id, params.Score1, params.Score2, status, match.Version)
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			continue
		}
		if err != nil {
			return translateMatchError(err)
		}
		return nil
	}
	return ErrUpdateConflict
}

// finishMatch freezes the match with its final result. The versioned write
// validates the read the winner was resolved from, so a slot fill landing
// between read and write forces a re-read instead of freezing a row whose
// sides no longer match the resolved winner.
func (s *matchService) finishMatch(ctx context.Context, id string, params UpdateMatchParams) error {
	for attempt := 0; attempt < matchWriteAttempts; attempt++ {
		match, err := s.matchRepo.GetByID(ctx, id)
		if err != nil {
			return translateMatchError(err)
		}
		if match.Finished {
			return ErrMatchAlreadyFinished
		}

		score1, score2 := effectiveScores(match, params)
		completed := *match
		completed.Score1, completed.Score2 = score1, score2
		if _, ok := completed.Winner(); !ok {
			return ErrMatchNotCompletable
		}

		endTime := time.Now().UTC()
		if params.EndTime != nil {
			endTime = *params.EndTime
		}

		err = s.matchRepo.Finish(ctx, id, score1, score2, endTime, match.Version)
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			continue
		}
		if err != nil {
			return translateMatchError(err)
		}

		completed.Finished = true
		completed.Status = models.StatusCompleted
		completed.EndTime = &endTime

		if s.advancer != nil {
			if err := s.advancer.OnMatchCompleted(ctx, &completed); err != nil {
				return fmt.Errorf("match %s finished, but winner advancement failed: %w", id, err)
			}
		}
		return nil
	}
	return ErrUpdateConflict
}

func effectiveScores(match *models.Match, params UpdateMatchParams) (int, int) {
	score1, score2 := match.Score1, match.Score2
	if params.Score1 != nil {
		score1 = *params.Score1
	}
	if params.Score2 != nil {
		score2 = *params.Score2
	}
	return score1, score2
}

// fillSlot occupies the first empty slot of a match with the given
// occupant, serialized per match through the repository's version check.
// Re-submitting an occupant already seated is a no-op; submitting anyone
// else once two slots are taken is a conflict, never an overwrite.
func fillSlot(ctx context.Context, repo repositories.MatchRepository, matchID string, slot models.Slot) (*models.Match, error) {
	if slot.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	for attempt := 0; attempt < matchWriteAttempts; attempt++ {
		match, err := repo.GetByID(ctx, matchID)
		if err != nil {
			return nil, translateMatchError(err)
		}
		if match.Finished {
			return nil, ErrMatchAlreadyFinished
		}
		if match.Occupies(slot.Value) {
			return match, nil
		}
		if match.IsFull() {
			return nil, ErrMatchSlotsFull
		}

		occupySlot(match, slot)
		if match.IsFull() {
			match.Status = models.StatusInProgress
		}

		err = repo.UpdateSlots(ctx, match)
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			continue
		}
		if err != nil {
			return nil, translateMatchError(err)
		}
		return match, nil
	}
	return nil, ErrUpdateConflict
}

func occupySlot(match *models.Match, slot models.Slot) {
	value := slot.Value
	switch {
	case match.Player == nil || *match.Player == "":
		match.Player = &value
	case match.Guest == nil || *match.Guest == "":
		match.Guest = &value
	default:
		match.Guest2 = &value
	}
}

func translateMatchError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchAlreadyFinished):
		return ErrMatchAlreadyFinished
	case errors.Is(err, repositories.ErrMatchVersionConflict):
		return ErrUpdateConflict
	default:
		return err
	}
}
