package server

import (
	"net/http"
	"strings"
)

// routes builds the route table. ServeMux has no method routing, so
// collection endpoints dispatch by method and the job subtree splits
// on the /cancel suffix.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	mux.HandleFunc("/api/items", s.itemsCollection)
	mux.HandleFunc("/api/items/", s.app.ItemHandler.GetHandler)

	mux.HandleFunc("/api/jobs", s.jobsCollection)
	mux.HandleFunc("/api/jobs/", s.jobSubtree)

	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusAPIHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)

	return mux
}

// itemsCollection dispatches /api/items: POST creates, GET lists.
func (s *Server) itemsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.app.ItemHandler.CreateHandler(w, r)
	case http.MethodGet:
		s.app.ItemHandler.ListHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// jobsCollection dispatches /api/jobs: POST submits, GET lists.
func (s *Server) jobsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.app.JobHandler.SubmitHandler(w, r)
	case http.MethodGet:
		s.app.JobHandler.ListHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// jobSubtree dispatches /api/jobs/{id} and /api/jobs/{id}/cancel.
func (s *Server) jobSubtree(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/cancel") {
		s.app.JobHandler.CancelHandler(w, r)
		return
	}
	s.app.JobHandler.StatusHandler(w, r)
}
