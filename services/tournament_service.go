package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/EricBrvs/ft-transcendance/brackets"
	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/EricBrvs/ft-transcendance/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UpdateTournamentParams enumerates the administratively mutable fields.
type UpdateTournamentParams struct {
	Winner   *string
	Finished *bool
}

func (p UpdateTournamentParams) isEmpty() bool {
	return p.Winner == nil && p.Finished == nil
}

// TournamentDetail is a tournament together with its decoded bracket
// matches, as returned by single-tournament reads.
type TournamentDetail struct {
	*models.Tournament
	Matches []*models.Match `json:"matches"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, host string, players []string) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*TournamentDetail, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	ListTournamentsByHost(ctx context.Context, host string) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id string, params UpdateTournamentParams) (*models.Tournament, error)
}

type tournamentService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.BracketGenerator
}

func NewTournamentService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
) TournamentService {
	return &tournamentService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		generator:      generator,
	}
}

// CreateTournament builds the full single-elimination bracket and persists
// the tournament with every match row in one transaction. A failure on any
// row rolls the whole bracket back; no match ever references a tournament
// that was not created.
func (s *tournamentService) CreateTournament(ctx context.Context, host string, players []string) (*models.Tournament, error) {
	descriptors, entries, err := s.generator.GenerateBracket(brackets.GenerateParams{
		Host:    host,
		Players: players,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidBracket) {
			return nil, ErrInvalidBracket
		}
		return nil, fmt.Errorf("failed to generate bracket: %w", err)
	}

	tournament := &models.Tournament{
		ID:      uuid.NewString(),
		Host:    host,
		Players: players,
		Bracket: entries,
	}
	startTime := time.Now().UTC()

	err = s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return fmt.Errorf("failed to create tournament record: %w", err)
		}
		for _, d := range descriptors {
			match := &models.Match{
				ID:           d.UID,
				TournamentID: &tournament.ID,
				Round:        d.Round,
				Player:       d.Player,
				Guest:        d.Guest,
				Guest2:       d.Guest2,
				Status:       models.StatusScheduled,
				StartTime:    startTime,
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return fmt.Errorf("failed to create bracket match %s (round %d): %w", d.UID, d.Round, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("tournament %s created: host %q, %d players, %d matches over %d rounds",
		tournament.ID, host, len(players), len(entries), tournament.Rounds())
	return tournament, nil
}

// GetTournament loads the tournament record and its matches in parallel.
func (s *tournamentService) GetTournament(ctx context.Context, id string) (*TournamentDetail, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}

	return &TournamentDetail{Tournament: tournament, Matches: matches}, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) ListTournamentsByHost(ctx context.Context, host string) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListByHost(ctx, host)
}

// UpdateTournament is the administrative override of winner and finished.
func (s *tournamentService) UpdateTournament(ctx context.Context, id string, params UpdateTournamentParams) (*models.Tournament, error) {
	if params.isEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if err := s.tournamentRepo.UpdateResult(ctx, id, params.Winner, params.Finished); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}
