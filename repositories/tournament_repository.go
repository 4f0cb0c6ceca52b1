package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EricBrvs/ft-transcendance/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentAlreadyFinished = errors.New("tournament is already finished")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	ListByHost(ctx context.Context, host string) ([]*models.Tournament, error)
	UpdateResult(ctx context.Context, id string, winner *string, finished *bool) error
	SetWinnerAndFinish(ctx context.Context, id string, winner string) error
	DeleteByHost(ctx context.Context, exec SQLExecutor, host string) (int64, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)

	playersJSON, err := json.Marshal(t.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players list: %w", err)
	}
	bracketJSON, err := json.Marshal(t.Bracket)
	if err != nil {
		return fmt.Errorf("failed to encode bracket map: %w", err)
	}

	query := `
		INSERT INTO tournaments (id, host, players, bracket, winner, finished)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return executor.QueryRowContext(ctx, query,
		t.ID, t.Host, playersJSON, bracketJSON, t.Winner, t.Finished,
	).Scan(&t.CreatedAt)
}

const tournamentColumns = `id, host, players, bracket, winner, finished, created_at`

func scanTournament(scanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	var playersJSON, bracketJSON []byte
	err := scanner.Scan(&t.ID, &t.Host, &playersJSON, &bracketJSON, &t.Winner, &t.Finished, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(playersJSON, &t.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players list of tournament %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(bracketJSON, &t.Bracket); err != nil {
		return nil, fmt.Errorf("failed to decode bracket map of tournament %s: %w", t.ID, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	var tournament *models.Tournament
	err := withRetry(ctx, func(ctx context.Context) error {
		var scanErr error
		tournament, scanErr = scanTournament(r.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`
	return r.queryTournaments(ctx, query)
}

func (r *postgresTournamentRepository) ListByHost(ctx context.Context, host string) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE host = $1 ORDER BY created_at DESC`
	return r.queryTournaments(ctx, query, host)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	var tournaments []*models.Tournament
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		tournaments = make([]*models.Tournament, 0)
		for rows.Next() {
			t, scanErr := scanTournament(rows)
			if scanErr != nil {
				return fmt.Errorf("failed to scan tournament row: %w", scanErr)
			}
			tournaments = append(tournaments, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	return tournaments, nil
}

// UpdateResult is the administrative override of winner and finished.
func (r *postgresTournamentRepository) UpdateResult(ctx context.Context, id string, winner *string, finished *bool) error {
	query := `
		UPDATE tournaments
		SET winner = COALESCE($2, winner), finished = COALESCE($3, finished)
		WHERE id = $1`

	return withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, id, winner, finished)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrTournamentNotFound)
	})
}

// SetWinnerAndFinish completes a tournament exactly once. A second call
// reports ErrTournamentAlreadyFinished instead of overwriting the result.
func (r *postgresTournamentRepository) SetWinnerAndFinish(ctx context.Context, id string, winner string) error {
	query := `
		UPDATE tournaments
		SET winner = $2, finished = TRUE
		WHERE id = $1 AND finished = FALSE`

	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, id, winner)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrTournamentNotFound)
	})
	if errors.Is(err, ErrTournamentNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return ErrTournamentAlreadyFinished
		}
		return ErrTournamentNotFound
	}
	return err
}

func (r *postgresTournamentRepository) DeleteByHost(ctx context.Context, exec SQLExecutor, host string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE host = $1`
	result, err := executor.ExecContext(ctx, query, host)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tournaments hosted by %s: %w", host, err)
	}
	return result.RowsAffected()
}
