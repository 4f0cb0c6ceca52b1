package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/EricBrvs/ft-transcendance/middleware"
	"github.com/EricBrvs/ft-transcendance/services"
	"github.com/go-chi/chi/v5"
)

var errMissingParticipant = errors.New("missing participantID parameter")

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type createMatchRequest struct {
	Guest        *string    `json:"guest"`
	Guest2       *string    `json:"guest2"`
	TournamentID *string    `json:"tournament_id"`
	StartTime    *time.Time `json:"start_time"`
}

// CreateMatchHandler creates a standalone match. The authenticated caller
// takes the primary slot; guest names come from the body.
func (h *MatchHandler) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	params := services.CreateMatchParams{
		Guest:        req.Guest,
		Guest2:       req.Guest2,
		TournamentID: req.TournamentID,
		StartTime:    req.StartTime,
	}
	if callerID, ok := middleware.CallerID(r.Context()); ok {
		params.Player = &callerID
	}

	match, err := h.matchService.CreateMatch(r.Context(), params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateMatchRequest struct {
	Guest    *string    `json:"guest"`
	Score1   *int       `json:"score1"`
	Score2   *int       `json:"score2"`
	Finished *bool      `json:"finished"`
	EndTime  *time.Time `json:"end_time"`
}

func (h *MatchHandler) UpdateMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updateMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), matchID, services.UpdateMatchParams{
		Guest:    req.Guest,
		Score1:   req.Score1,
		Score2:   req.Score2,
		Finished: req.Finished,
		EndTime:  req.EndTime,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListMatches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatchesByParticipantHandler(w http.ResponseWriter, r *http.Request) {
	// A participant can be a registered uuid or a guest display name, so no
	// uuid validation here.
	participantID := chi.URLParam(r, "participantID")
	if participantID == "" {
		badRequestResponse(w, r, errMissingParticipant)
		return
	}

	matches, err := h.matchService.ListMatchesByParticipant(r.Context(), participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
