package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/seasons/{seasonID}", handler.GetSeason)
	mux.HandleFunc("POST /v1/blinds/preview", handler.PreviewSchedule)

	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/clock", handler.GetClock)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/busts", handler.ListBusts)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/eliminations", handler.ListEliminations)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/tables", handler.ListTables)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/results", handler.GetResults)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/live", handler.Live)
}

func registerDirectorRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	director := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, RequireDirector(handler.tournaments, h))
	}

	mux.Handle("POST /v1/tournaments", director(handler.CreateTournament))
	mux.Handle("POST /v1/tournaments/{tournamentID}/registration", director(handler.OpenRegistration))
	mux.Handle("POST /v1/tournaments/{tournamentID}/players", director(handler.EnrollPlayer))
	mux.Handle("POST /v1/tournaments/{tournamentID}/start", director(handler.StartTournament))
	mux.Handle("POST /v1/tournaments/{tournamentID}/cancel", director(handler.CancelTournament))
	mux.Handle("POST /v1/tournaments/{tournamentID}/timer/{action}", director(handler.TimerAction))
	mux.Handle("POST /v1/tournaments/{tournamentID}/busts", director(handler.RecordBust))
	mux.Handle("POST /v1/tournaments/{tournamentID}/busts/{bustID}/recave", director(handler.ApplyRecave))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}/busts/{bustID}/recave", director(handler.CancelRecave))
	mux.Handle("POST /v1/tournaments/{tournamentID}/eliminations", director(handler.RecordElimination))
	mux.Handle("POST /v1/tournaments/{tournamentID}/tables", director(handler.GenerateTables))
	mux.Handle("POST /v1/tournaments/{tournamentID}/tables/rebalance", director(handler.RebalanceTables))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/seasons", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.CreateSeason))))
}
