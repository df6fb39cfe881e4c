package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// The dashboard is read-only: every route is a GET over the record set
// the last pipeline run published.
func registerDashboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/games", handler.ListPlayerGames)
	mux.HandleFunc("GET /v1/states", handler.ListStateBreakdown)
	mux.HandleFunc("GET /v1/review-queue", handler.ListReviewQueue)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
}
