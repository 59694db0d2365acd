package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, manager *metrics.Manager) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if manager.Enabled() {
		mux.Handle("GET /metrics", manager.Handler())
	}
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/matches", handler.CreateMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("PUT /v1/matches/{matchID}/attendance", handler.SetAttendance)
	mux.HandleFunc("PUT /v1/matches/{matchID}/pins", handler.SetPins)
	mux.HandleFunc("POST /v1/matches/{matchID}/complete", handler.CompleteMatch)

	mux.HandleFunc("POST /v1/matches/{matchID}/squad", handler.BuildSquad)
	mux.HandleFunc("GET /v1/matches/{matchID}/squad", handler.GetSquad)

	mux.HandleFunc("POST /v1/matches/{matchID}/ballots", handler.SubmitBallot)
	mux.HandleFunc("GET /v1/matches/{matchID}/ballots/progress", handler.GetBallotProgress)
}
