package routes

import (
	"net/http"

	"github.com/EricBrvs/ft-transcendance/handlers"
	"github.com/EricBrvs/ft-transcendance/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	JWTSecret       []byte
	InternalKeyHash string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	internalHandler *handlers.InternalHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Internal-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health probe, kept identical to the historical gateway contract.
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"game":"OK"}`))
	})

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Route("/match", func(r chi.Router) {
		r.Get("/", matchHandler.ListMatchesHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
		r.Get("/participant/{participantID}", matchHandler.ListMatchesByParticipantHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", matchHandler.CreateMatchHandler)
			r.Put("/{matchID}", matchHandler.UpdateMatchHandler)
		})
	})

	router.Route("/tournament", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListTournamentsHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetTournamentHandler)
		r.Get("/host/{hostID}", tournamentHandler.ListTournamentsByHostHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", tournamentHandler.CreateTournamentHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateTournamentHandler)
		})
	})

	router.Route("/internal", func(r chi.Router) {
		r.Use(middleware.RequireInternalKey(opts.InternalKeyHash))
		r.Delete("/participant/{participantID}", internalHandler.CascadeDeleteParticipantHandler)
	})

	router.Get("/ws/tournament/{tournamentID}", webSocketHandler.ServeTournamentRoom)
}
