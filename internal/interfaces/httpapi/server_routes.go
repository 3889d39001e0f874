package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /poll-status", handler.PollStatus)
	mux.HandleFunc("GET /live-stream", handler.LiveStream)
	mux.HandleFunc("GET /live-matches", handler.LiveMatches)
	mux.HandleFunc("GET /users/{userID}/stats", handler.GetUserStats)
}

// registerCronRoutes covers scheduler-facing and admin actions.
func registerCronRoutes(mux *http.ServeMux, handler *Handler, cronAuth CronAuthConfig) {
	mux.Handle("GET /cron-tick", RequireCronAuth(cronAuth, http.HandlerFunc(handler.CronTick)))
	mux.Handle("POST /poll-control", RequireCronAuth(cronAuth, http.HandlerFunc(handler.PollControl)))
	mux.Handle("POST /fixtures/{fixtureID}/rescore", RequireCronAuth(cronAuth, http.HandlerFunc(handler.RescoreFixture)))
}
