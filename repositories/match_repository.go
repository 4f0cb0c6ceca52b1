package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchVersionConflict   = errors.New("match was modified concurrently")
	ErrMatchAlreadyFinished   = errors.New("match is already finished")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	UpdateSlots(ctx context.Context, match *models.Match) error
	UpdateScore(ctx context.Context, id string, score1, score2 *int, status models.MatchStatus, version int) error
	Finish(ctx context.Context, id string, score1, score2 int, endTime time.Time, version int) error
	DeleteByParticipant(ctx context.Context, exec SQLExecutor, participantID string) (int64, error)
	DeleteByHostedTournaments(ctx context.Context, exec SQLExecutor, host string) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, round, player, guest, guest2, score1, score2, status, finished, start_time, end_time, version`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(id, tournament_id, round, player, guest, guest2, score1, score2, status, finished, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := executor.ExecContext(ctx, query,
		match.ID,
		match.TournamentID,
		match.Round,
		match.Player,
		match.Guest,
		match.Guest2,
		match.Score1,
		match.Score2,
		match.Status,
		match.Finished,
		match.StartTime,
		match.EndTime,
	)
	return r.handleMatchError(err)
}

func scanMatch(scanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	err := scanner.Scan(
		&match.ID,
		&match.TournamentID,
		&match.Round,
		&match.Player,
		&match.Guest,
		&match.Guest2,
		&match.Score1,
		&match.Score2,
		&match.Status,
		&match.Finished,
		&match.StartTime,
		&match.EndTime,
		&match.Version,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	var match *models.Match
	err := withRetry(ctx, func(ctx context.Context) error {
		var scanErr error
		match, scanErr = scanMatch(r.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY start_time DESC`
	return r.queryMatches(ctx, query)
}

func (r *postgresMatchRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE player = $1 OR guest = $1 OR guest2 = $1
		ORDER BY start_time DESC`
	return r.queryMatches(ctx, query, participantID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, start_time ASC, id ASC`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	var matches []*models.Match
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		matches = make([]*models.Match, 0)
		for rows.Next() {
			match, scanErr := scanMatch(rows)
			if scanErr != nil {
				return fmt.Errorf("failed to scan match row: %w", scanErr)
			}
			matches = append(matches, match)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	return matches, nil
}

// UpdateSlots writes the opponent slots of an unfinished match, guarded by
// an optimistic version check. ErrMatchVersionConflict tells the caller to
// re-read and retry; the version on the passed match is refreshed on success.
func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET player = $2, guest = $3, guest2 = $4, status = $5, version = version + 1
		WHERE id = $1 AND version = $6 AND finished = FALSE`

	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query,
			match.ID, match.Player, match.Guest, match.Guest2, match.Status, match.Version)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrMatchVersionConflict)
	})
	if err != nil {
		return err
	}
	match.Version++
	return nil
}

// UpdateScore writes the scores of an unfinished match, guarded by the same
// optimistic version check as UpdateSlots so a concurrent slot fill cannot
// slip between the caller's read and this write.
func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id string, score1, score2 *int, status models.MatchStatus, version int) error {
	query := `
		UPDATE matches
		SET score1 = COALESCE($2, score1), score2 = COALESCE($3, score2), status = $4, version = version + 1
		WHERE id = $1 AND version = $5 AND finished = FALSE`

	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, id, score1, score2, status, version)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrMatchVersionConflict)
	})
	if errors.Is(err, ErrMatchVersionConflict) {
		return r.classifyMissingUpdate(ctx, id, ErrMatchVersionConflict)
	}
	return err
}

// Finish completes a match with its final result. The version predicate
// validates the read the winner was resolved from; the finished guard makes
// completion one-shot: a completed match's scores and end time never change.
func (r *postgresMatchRepository) Finish(ctx context.Context, id string, score1, score2 int, endTime time.Time, version int) error {
	query := `
		UPDATE matches
		SET score1 = $2, score2 = $3, status = $4, finished = TRUE, end_time = $5, version = version + 1
		WHERE id = $1 AND version = $6 AND finished = FALSE`

	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, id, score1, score2, models.StatusCompleted, endTime, version)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrMatchVersionConflict)
	})
	if errors.Is(err, ErrMatchVersionConflict) {
		return r.classifyMissingUpdate(ctx, id, ErrMatchVersionConflict)
	}
	return err
}

// classifyMissingUpdate distinguishes "row gone" and "row frozen" from a
// plain version conflict after a guarded update touched nothing.
func (r *postgresMatchRepository) classifyMissingUpdate(ctx context.Context, id string, fallback error) error {
	match, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if match.Finished {
		return ErrMatchAlreadyFinished
	}
	return fallback
}

func (r *postgresMatchRepository) DeleteByParticipant(ctx context.Context, exec SQLExecutor, participantID string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE player = $1 OR guest = $1 OR guest2 = $1`
	result, err := executor.ExecContext(ctx, query, participantID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of participant %s: %w", participantID, err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) DeleteByHostedTournaments(ctx context.Context, exec SQLExecutor, host string) (int64, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE tournament_id IN (SELECT id FROM tournaments WHERE host = $1)`
	result, err := executor.ExecContext(ctx, query, host)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of tournaments hosted by %s: %w", host, err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Constraint == "matches_tournament_id_fkey" {
			return ErrMatchTournamentInvalid
		}
	}
	return err
}
