package server

import (
	"net/http"
	"time"

	"sysmon/internal/config"
	"sysmon/internal/logger"
	"sysmon/internal/server/middleware"
	"sysmon/internal/storage/sqlite"
)

func NewRouter(cfg *config.Config, log logger.Logger, store *SnapshotStore, hub *Hub, agents *sqlite.AgentRepository) http.Handler {
	h := NewMetricsHandler(store, hub, agents, log)

	agentStack := middleware.New()
	agentStack.Use(middleware.AgentAuth(cfg.AuthSecret, log))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.Handle("POST /agent/metrics", agentStack.ThenFunc(h.Ingest))

	mux.HandleFunc("GET /metrics/latest", h.Latest)
	mux.HandleFunc("GET /agents", h.AgentIndex)
	mux.HandleFunc("GET /ws", hub.ServeWS)

	return mux
}

func NewHTTPServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
