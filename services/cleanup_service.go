package services

import (
	"context"
	"fmt"
	"log"

	"github.com/EricBrvs/ft-transcendance/repositories"
)

// CleanupService is the account-deletion collaborator's entry point: when
// an account is removed, every match the participant occupies and every
// tournament it hosts must disappear with it.
type CleanupService interface {
	CascadeDeleteParticipant(ctx context.Context, participantID string) (int64, error)
}

// ArchiveRemover deletes a tournament's archived bracket from object
// storage. Removal failures are logged, never surfaced: the database
// delete stands either way.
type ArchiveRemover interface {
	RemoveTournament(ctx context.Context, tournamentID string) error
}

type cleanupService struct {
	transactor     repositories.Transactor
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	archives       ArchiveRemover
}

func NewCleanupService(
	transactor repositories.Transactor,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	archives ArchiveRemover,
) CleanupService {
	return &cleanupService{
		transactor:     transactor,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		archives:       archives,
	}
}

// CascadeDeleteParticipant removes all records referencing the participant
// in one transaction and returns the total rows deleted; archived brackets
// of the hosted tournaments go with them. Idempotent: a repeated call finds
// nothing and reports zero.
func (s *cleanupService) CascadeDeleteParticipant(ctx context.Context, participantID string) (int64, error) {
	hosted, err := s.tournamentRepo.ListByHost(ctx, participantID)
	if err != nil {
		return 0, fmt.Errorf("cascade delete for participant %s failed: %w", participantID, err)
	}

	var total int64
	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		n, err := s.matchRepo.DeleteByHostedTournaments(ctx, exec, participantID)
		if err != nil {
			return err
		}
		total += n

		n, err = s.matchRepo.DeleteByParticipant(ctx, exec, participantID)
		if err != nil {
			return err
		}
		total += n

		n, err = s.tournamentRepo.DeleteByHost(ctx, exec, participantID)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cascade delete for participant %s failed: %w", participantID, err)
	}

	if s.archives != nil {
		for _, t := range hosted {
			if err := s.archives.RemoveTournament(ctx, t.ID); err != nil {
				log.Printf("cascade delete: failed to remove archive of tournament %s: %v", t.ID, err)
			}
		}
	}

	if total > 0 {
		log.Printf("cascade delete: removed %d records referencing participant %s", total, participantID)
	}
	return total, nil
}
