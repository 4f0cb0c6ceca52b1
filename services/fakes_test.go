package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/EricBrvs/ft-transcendance/brackets"
	"github.com/EricBrvs/ft-transcendance/models"
	"github.com/EricBrvs/ft-transcendance/repositories"
)

var errInjectedCreateFailure = errors.New("injected create failure")

// fakeStore is the shared in-memory backing of the fake repositories. The
// fake transactor snapshots and restores it to give transactional tests
// real rollback behavior without a database.
type fakeStore struct {
	mu          sync.Mutex
	matches     map[string]models.Match
	tournaments map[string]models.Tournament
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:     make(map[string]models.Match),
		tournaments: make(map[string]models.Tournament),
	}
}

func (s *fakeStore) snapshot() (map[string]models.Match, map[string]models.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make(map[string]models.Match, len(s.matches))
	for k, v := range s.matches {
		matches[k] = v
	}
	tournaments := make(map[string]models.Tournament, len(s.tournaments))
	for k, v := range s.tournaments {
		tournaments[k] = v
	}
	return matches, tournaments
}

func (s *fakeStore) restore(matches map[string]models.Match, tournaments map[string]models.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = matches
	s.tournaments = tournaments
}

type fakeTransactor struct {
	store *fakeStore
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	matches, tournaments := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(matches, tournaments)
		return err
	}
	return nil
}

type fakeMatchRepo struct {
	store *fakeStore

	// failCreateAt fails the n-th Create call (1-based); zero disables.
	failCreateAt int
	creates      int
	// conflicts injects that many version conflicts into UpdateSlots
	// before letting a write through.
	conflicts int
	// one-shot hooks running just before the guarded writes, for staging
	// a concurrent mutation in the read-to-write window.
	beforeUpdateScore func()
	beforeFinish      func()
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.creates++
	if r.failCreateAt > 0 && r.creates >= r.failCreateAt {
		return errInjectedCreateFailure
	}
	r.store.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := match
	return &copied, nil
}

func (r *fakeMatchRepo) List(ctx context.Context) ([]*models.Match, error) {
	return r.collect(func(m models.Match) bool { return true })
}

func (r *fakeMatchRepo) ListByParticipant(ctx context.Context, participantID string) ([]*models.Match, error) {
	return r.collect(func(m models.Match) bool {
		return m.Occupies(participantID)
	})
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	return r.collect(func(m models.Match) bool {
		return m.TournamentID != nil && *m.TournamentID == tournamentID
	})
}

func (r *fakeMatchRepo) collect(keep func(models.Match) bool) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matches := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if keep(m) {
			copied := m
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) UpdateSlots(ctx context.Context, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return repositories.ErrMatchVersionConflict
	}
	stored, ok := r.store.matches[match.ID]
	if !ok || stored.Finished || stored.Version != match.Version {
		return repositories.ErrMatchVersionConflict
	}
	stored.Player = match.Player
	stored.Guest = match.Guest
	stored.Guest2 = match.Guest2
	stored.Status = match.Status
	stored.Version++
	r.store.matches[match.ID] = stored
	match.Version++
	return nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, id string, score1, score2 *int, status models.MatchStatus, version int) error {
	if r.beforeUpdateScore != nil {
		hook := r.beforeUpdateScore
		r.beforeUpdateScore = nil
		hook()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if stored.Finished {
		return repositories.ErrMatchAlreadyFinished
	}
	if stored.Version != version {
		return repositories.ErrMatchVersionConflict
	}
	if score1 != nil {
		stored.Score1 = *score1
	}
	if score2 != nil {
		stored.Score2 = *score2
	}
	stored.Status = status
	stored.Version++
	r.store.matches[id] = stored
	return nil
}

func (r *fakeMatchRepo) Finish(ctx context.Context, id string, score1, score2 int, endTime time.Time, version int) error {
	if r.beforeFinish != nil {
		hook := r.beforeFinish
		r.beforeFinish = nil
		hook()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if stored.Finished {
		return repositories.ErrMatchAlreadyFinished
	}
	if stored.Version != version {
		return repositories.ErrMatchVersionConflict
	}
	stored.Score1 = score1
	stored.Score2 = score2
	stored.Status = models.StatusCompleted
	stored.Finished = true
	stored.EndTime = &endTime
	stored.Version++
	r.store.matches[id] = stored
	return nil
}

func (r *fakeMatchRepo) DeleteByParticipant(ctx context.Context, exec repositories.SQLExecutor, participantID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for id, m := range r.store.matches {
		if m.Occupies(participantID) {
			delete(r.store.matches, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeMatchRepo) DeleteByHostedTournaments(ctx context.Context, exec repositories.SQLExecutor, host string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	hosted := make(map[string]bool)
	for id, t := range r.store.tournaments {
		if t.Host == host {
			hosted[id] = true
		}
	}
	var n int64
	for id, m := range r.store.matches {
		if m.TournamentID != nil && hosted[*m.TournamentID] {
			delete(r.store.matches, id)
			n++
		}
	}
	return n, nil
}

type fakeTournamentRepo struct {
	store *fakeStore
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tournament.CreatedAt = time.Now().UTC()
	r.store.tournaments[tournament.ID] = *tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tournament, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := tournament
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	return r.collect(func(t models.Tournament) bool { return true })
}

func (r *fakeTournamentRepo) ListByHost(ctx context.Context, host string) ([]*models.Tournament, error) {
	return r.collect(func(t models.Tournament) bool { return t.Host == host })
}

func (r *fakeTournamentRepo) collect(keep func(models.Tournament) bool) ([]*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tournaments := make([]*models.Tournament, 0)
	for _, t := range r.store.tournaments {
		if keep(t) {
			copied := t
			tournaments = append(tournaments, &copied)
		}
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].ID < tournaments[j].ID })
	return tournaments, nil
}

func (r *fakeTournamentRepo) UpdateResult(ctx context.Context, id string, winner *string, finished *bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if winner != nil {
		w := *winner
		stored.Winner = &w
	}
	if finished != nil {
		stored.Finished = *finished
	}
	r.store.tournaments[id] = stored
	return nil
}

func (r *fakeTournamentRepo) SetWinnerAndFinish(ctx context.Context, id string, winner string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if stored.Finished {
		return repositories.ErrTournamentAlreadyFinished
	}
	stored.Winner = &winner
	stored.Finished = true
	r.store.tournaments[id] = stored
	return nil
}

func (r *fakeTournamentRepo) DeleteByHost(ctx context.Context, exec repositories.SQLExecutor, host string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for id, t := range r.store.tournaments {
		if t.Host == host {
			delete(r.store.tournaments, id)
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []brackets.WebSocketMessage
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		n.events = append(n.events, msg)
	}
}

func (n *recordingNotifier) eventTypes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

type recordingArchiver struct {
	mu          sync.Mutex
	calls       int
	lastMatches int
	removed     []string
	err         error
}

func (a *recordingArchiver) ArchiveTournament(ctx context.Context, tournament *models.Tournament, matches []*models.Match) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.lastMatches = len(matches)
	return a.err
}

func (a *recordingArchiver) RemoveTournament(ctx context.Context, tournamentID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = append(a.removed, tournamentID)
	return a.err
}

// fixture wires a full service stack over the in-memory store.
type fixture struct {
	store          *fakeStore
	matchRepo      *fakeMatchRepo
	tournamentRepo *fakeTournamentRepo
	notifier       *recordingNotifier
	archiver       *recordingArchiver
	matches        MatchService
	tournaments    TournamentService
	cleanup        CleanupService
}

func newFixture() *fixture {
	store := newFakeStore()
	matchRepo := &fakeMatchRepo{store: store}
	tournamentRepo := &fakeTournamentRepo{store: store}
	transactor := &fakeTransactor{store: store}
	notifier := &recordingNotifier{}
	archiver := &recordingArchiver{}

	advancer := NewAdvancementCoordinator(matchRepo, tournamentRepo, notifier, archiver)
	return &fixture{
		store:          store,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		archiver:       archiver,
		matches:        NewMatchService(matchRepo, advancer),
		tournaments:    NewTournamentService(transactor, tournamentRepo, matchRepo, brackets.NewSingleEliminationGenerator()),
		cleanup:        NewCleanupService(transactor, matchRepo, tournamentRepo, archiver),
	}
}

func intPtr(n int) *int          { return &n }
func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
